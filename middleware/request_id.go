package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/bbsplus/utils"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags each request with an id, reusing the one the proxy sent.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		ctx.Set(utils.RequestIDKey, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}
