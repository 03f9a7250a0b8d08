package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the envelope every endpoint answers with.
type JSONResponse struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Respond writes a JSON envelope with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Success: status < http.StatusBadRequest,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, T(ctx, "common.success"), data)
}

// SuccessMessage returns a success response carrying a localized message key.
func SuccessMessage(ctx *gin.Context, key string, data interface{}) {
	Respond(ctx, http.StatusOK, 0, T(ctx, key), data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ErrorWithDetails returns an error response with per-field messages.
func ErrorWithDetails(ctx *gin.Context, status int, code int, message string, details []string) {
	ctx.JSON(status, JSONResponse{
		Success: false,
		Code:    code,
		Message: message,
		Errors:  details,
	})
}
