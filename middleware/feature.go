package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/utils"
)

// RequireFeature answers 404 when the plugin or the given module is switched off.
// Flags are read per request so config.Set takes effect without a restart.
func RequireFeature(f config.Feature) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !config.Get().FeatureEnabled(f) {
			utils.Error(ctx, http.StatusNotFound, http.StatusNotFound, utils.T(ctx, "common.feature_disabled"))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
