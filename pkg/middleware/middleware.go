// Package middleware 提供 gin 中间件：认证、角色、限流、熔断、指标、追踪与依赖注入.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/internal/types"
)

// abort 以统一的错误体结束请求.
func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: msg, Status: status})
}
