package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
)

var (
	errNoToken      = errors.New("authorization header missing")
	errBadHeader    = errors.New("invalid authorization header format")
	errRevoked      = errors.New("token revoked")
	errInvalidToken = errors.New("invalid token")
)

// authenticate resolves the bearer token of the request into claims.
func authenticate(ctx *gin.Context) (*utils.Claims, error) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, errBadHeader
	}
	token := strings.TrimSpace(parts[1])
	if utils.IsTokenRevoked(ctx.Request.Context(), token) {
		return nil, errRevoked
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// AuthRequired rejects requests without a valid host token.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := authenticate(ctx)
		if err != nil {
			utils.Sugar.Debugw("auth rejected", "reason", err.Error(), utils.RequestIDKey, ctx.GetString(utils.RequestIDKey))
			utils.Error(ctx, http.StatusUnauthorized, http.StatusUnauthorized, utils.T(ctx, "common.unauthorized"))
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// AuthOptional attaches the user when a valid token is present and lets anonymous requests through.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, err := authenticate(ctx); err == nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}
