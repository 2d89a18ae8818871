package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAdminRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.POST("/admin", AuthMiddleware(cfg), AdminOnly(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	return r
}

func doRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s3cret"}}
	r := newAdminRouter(cfg)

	admin, err := utils.GenerateToken("u-1", "ops@example.com", RoleAdmin, "s3cret", time.Hour)
	require.NoError(t, err)
	viewer, err := utils.GenerateToken("u-2", "view@example.com", "viewer", "s3cret", time.Hour)
	require.NoError(t, err)
	foreign, err := utils.GenerateToken("u-3", "x@example.com", RoleAdmin, "other", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized},
		{"not admin", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			w := doRequest(r, http.MethodPost, "/admin", headers)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthMiddleware_NoSecretConfigured(t *testing.T) {
	r := newAdminRouter(&config.Config{})
	w := doRequest(r, http.MethodPost, "/admin", map[string]string{"Authorization": "Bearer x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := doRequest(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = doRequest(r, http.MethodGet, "/", map[string]string{RequestIDHeader: strings.Repeat("x", 200)})
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/", nil).Code)

	w := doRequest(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.Allow("10.0.0.1")
	require.Equal(t, 1, limiter.size())

	limiter.evictIdle(time.Now().Add(limiterIdleTTL + time.Second))
	assert.Equal(t, 0, limiter.size())
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimitMiddleware(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
