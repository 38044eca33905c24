package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	nlog "github.com/yeisme/sociojustice/pkg/log"
)

const (
	identityKey = "identity"
	bearer      = "bearer "
)

type identityCtxKey struct{}

// AuthMiddleware 校验 Authorization: Bearer 令牌并注入身份.
//   - 支持通过配置跳过某些路径（如 /metrics, /health, /api/login）
//   - 认证关闭时使用 X-User-ID 请求头或 auth.dev_user 作为管理员身份.
func AuthMiddleware(conf configs.AuthConfig, tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		if !conf.Enabled {
			uid := strings.TrimSpace(c.GetHeader("X-User-ID"))
			if uid == "" {
				uid = conf.DevUser
			}

			setIdentity(c, &auth.Identity{UserID: uid, Role: model.RoleAdmin})
			c.Next()

			return
		}

		header := c.GetHeader("Authorization")
		if len(header) <= len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := tokens.Parse(strings.TrimSpace(header[len(bearer):]))
		if err != nil {
			nlog.Logger().Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected token")
			abort(c, http.StatusUnauthorized, "invalid or expired token")

			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

func setIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(identityKey, id)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityCtxKey{}, id))
}

// GetIdentity 返回当前请求的身份，未认证时为 nil.
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}

	if id, ok := c.Request.Context().Value(identityCtxKey{}).(*auth.Identity); ok {
		return id
	}

	return nil
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
