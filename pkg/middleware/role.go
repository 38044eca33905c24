package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/internal/model"
)

// RequireRole 要求指定角色，未认证返回 401，角色不符返回 403.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		if id.Role != role && !id.IsAdmin() {
			abort(c, http.StatusForbidden, "forbidden: insufficient role")
			return
		}

		c.Next()
	}
}
