package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/middleware"
)

func newEngine(conf configs.AuthConfig, tokens *auth.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(conf, tokens))
	r.GET("/api/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/api/me", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetIdentity(c).UserID)
	})
	r.GET("/api/admin", middleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r
}

func do(r http.Handler, path, token string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestAuthMiddleware(t *testing.T) {
	conf := configs.AuthConfig{Enabled: true, JWTSecret: "s", Issuer: "test", TokenTTL: time.Hour, SkipPaths: []string{"/api/login"}}
	tokens := auth.NewManager(conf)
	r := newEngine(conf, tokens)

	userTok, _, err := tokens.Issue(&model.User{ID: "u1", Email: "u@example.org", Role: model.RoleUser})
	require.NoError(t, err)

	adminTok, _, err := tokens.Issue(&model.User{ID: "a1", Email: "a@example.org", Role: model.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(r, "/api/login", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/api/me", "garbage").Code)

	w := do(r, "/api/me", userTok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", userTok).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", adminTok).Code)
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	conf := configs.AuthConfig{Enabled: false, DevUser: "dev"}
	r := newEngine(conf, auth.NewManager(conf))

	w := do(r, "/api/me", "")
	assert.Equal(t, "dev", w.Body.String())

	w = do(r, "/api/me", "", "X-User-ID", "someone")
	assert.Equal(t, "someone", w.Body.String())

	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", "").Code)
}
