package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bbsplus/config"
	"github.com/cppla/bbsplus/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	setConfig(func(*config.AppConfig) {})
	os.Exit(m.Run())
}

func setConfig(mutate func(*config.AppConfig)) {
	cfg := config.Defaults()
	cfg.RedisDisabled = true
	cfg.JWTSecret = "test-secret"
	mutate(&cfg)
	config.Set(cfg)
}

func echoUser(c *gin.Context) {
	uid, ok := c.Get(ContextUserIDKey)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, "user %d", uid)
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthRequired(), echoUser)

	token, err := utils.GenerateToken(7, "alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if w := serve(r, http.MethodGet, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/me", "bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/me", token)
	if w.Code != http.StatusOK || w.Body.String() != "user 7" {
		t.Fatalf("valid token: %d %s", w.Code, w.Body.String())
	}
}

func TestAuthOptional(t *testing.T) {
	r := gin.New()
	r.GET("/wall", AuthOptional(), echoUser)

	if w := serve(r, http.MethodGet, "/wall", "bogus"); w.Body.String() != "anonymous" {
		t.Fatalf("bad token should pass as anonymous, got %q", w.Body.String())
	}
	token, _ := utils.GenerateToken(3, "bob", time.Hour)
	if w := serve(r, http.MethodGet, "/wall", token); w.Body.String() != "user 3" {
		t.Fatalf("got %q", w.Body.String())
	}
}

func TestRequireFeature(t *testing.T) {
	r := gin.New()
	r.GET("/todos", RequireFeature(config.FeatureTodo), echoUser)
	t.Cleanup(func() { setConfig(func(*config.AppConfig) {}) })

	if w := serve(r, http.MethodGet, "/todos", ""); w.Code != http.StatusOK {
		t.Fatalf("enabled: %d", w.Code)
	}
	setConfig(func(c *config.AppConfig) { c.TodoEnabled = false })
	if w := serve(r, http.MethodGet, "/todos", ""); w.Code != http.StatusNotFound {
		t.Fatalf("module off: %d", w.Code)
	}
	setConfig(func(c *config.AppConfig) { c.PluginEnabled = false })
	if w := serve(r, http.MethodGet, "/todos", ""); w.Code != http.StatusNotFound {
		t.Fatalf("plugin off: %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/checkin", RateLimit(2), echoUser)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodPost, "/checkin", "").Code)
	}
	if codes[0] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.RequestIDKey)) })

	w := serve(r, http.MethodGet, "/", "")
	if id := w.Header().Get("X-Request-Id"); id == "" || id != w.Body.String() {
		t.Fatalf("generated id %q, body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" {
		t.Fatalf("forwarded id not kept: %q", w.Body.String())
	}
}
