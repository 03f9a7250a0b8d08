package utils

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/bbsplus/config"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// NewRollingFileLogger builds a logger writing only to a rolling file at path.
// It returns the global logger when path is empty.
func NewRollingFileLogger(cfg config.AppConfig, path string) *zap.Logger {
	if path == "" {
		return Logger
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		Sugar.Warnf("access log dir: %v", err)
		return Logger
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(rollingFile(cfg, path)),
		parseLevel(cfg.LogLevel),
	)
	return zap.New(core)
}

// Ginzap logs one line per request.
func Ginzap(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String(RequestIDKey, c.GetString(RequestIDKey)),
		}
		if uid, ok := c.Get("user_id"); ok {
			fields = append(fields, zap.Any("user_id", uid))
		}
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				logger.Error(e, fields...)
			}
			return
		}
		logger.Info("request", fields...)
	}
}

// RecoveryWithZap turns panics into 500 responses and logs them with a stack trace.
// Broken client connections are logged without writing a response.
func RecoveryWithZap(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			brokenPipe := false
			if ne, ok := rec.(*net.OpError); ok {
				var se *os.SyscallError
				if errors.As(ne.Err, &se) {
					msg := strings.ToLower(se.Error())
					brokenPipe = strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
				}
			}
			dump, _ := httputil.DumpRequest(c.Request, false)
			logger.Error("panic recovered",
				zap.Any("error", rec),
				zap.String("request", string(dump)),
				zap.String(RequestIDKey, c.GetString(RequestIDKey)),
				zap.ByteString("stack", debug.Stack()),
			)
			if brokenPipe {
				c.Abort()
				return
			}
			Error(c, http.StatusInternalServerError, http.StatusInternalServerError, T(c, "common.internal_error"))
			c.Abort()
		}()
		c.Next()
	}
}
