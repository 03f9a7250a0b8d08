package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/bbsplus/middleware"
	"github.com/cppla/bbsplus/services"
	"github.com/cppla/bbsplus/utils"
)

const (
	codeInvalidParams = 40000
	codeUnauthorized  = 40100
	codeNotFound      = 40400
	codeValidation    = 42200
	codeInternal      = 50000
)

// businessCodes gives each business rule its own envelope code so clients can branch on it.
var businessCodes = map[string]int{
	services.ErrAlreadyCheckedIn.Tag:   42201,
	services.ErrNoChance.Tag:           42202,
	services.ErrInsufficientPoints.Tag: 42203,
	services.ErrQuotaExceeded.Tag:      42204,
	services.ErrAlreadyCollected.Tag:   42205,
	services.ErrNotEarned.Tag:          42206,
	services.ErrMaxReached.Tag:         42207,
	services.ErrFileTooLarge.Tag:       42208,
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, v != 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

// requireUser returns the caller's id or answers 401.
func requireUser(ctx *gin.Context) (uint, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, codeUnauthorized, utils.T(ctx, "common.unauthorized"))
	}
	return userID, ok
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, codeInvalidParams, utils.T(ctx, "common.invalid_params"))
		return 0, false
	}
	return uint(id), true
}

func parsePage(pageStr string) int {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func invalidParams(ctx *gin.Context) {
	utils.Error(ctx, http.StatusBadRequest, codeInvalidParams, utils.T(ctx, "common.invalid_params"))
}

func validationFailed(ctx *gin.Context, keys ...string) {
	details := make([]string, 0, len(keys))
	for _, k := range keys {
		details = append(details, utils.T(ctx, k))
	}
	utils.ErrorWithDetails(ctx, http.StatusUnprocessableEntity, codeValidation, utils.T(ctx, "common.validation"), details)
}

// respondError maps a service error onto the envelope. Internal errors are logged here and only here.
func respondError(ctx *gin.Context, err error, action string) {
	var domainErr *services.Error
	if !errors.As(err, &domainErr) {
		utils.Logger.Error(action+" failed",
			zap.Error(err),
			zap.String(utils.RequestIDKey, ctx.GetString(utils.RequestIDKey)),
		)
		utils.Error(ctx, http.StatusInternalServerError, codeInternal, utils.T(ctx, "common.internal_error"))
		return
	}

	switch domainErr.Kind {
	case services.KindNotFound:
		utils.Error(ctx, http.StatusNotFound, codeNotFound, utils.T(ctx, "common.not_found"))
	case services.KindValidation:
		validationFailed(ctx, domainErr.Fields...)
	case services.KindBusinessRule:
		code, ok := businessCodes[domainErr.Tag]
		if !ok {
			code = codeValidation
		}
		utils.Error(ctx, http.StatusUnprocessableEntity, code, utils.T(ctx, "error."+domainErr.Tag))
	default:
		utils.Logger.Error(action+" failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, codeInternal, utils.T(ctx, "common.internal_error"))
	}
}
