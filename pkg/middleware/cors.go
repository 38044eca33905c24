package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/configs"
)

// CORSMiddleware CORS中间件，前端需要读取 Content-Disposition 以获得档案文件名.
// 调试模式额外允许携带凭据的跨域请求.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AddAllowHeaders("Authorization", "X-User-ID")
	config.AddExposeHeaders("Content-Disposition", "Content-Length")
	config.AllowFiles = true

	if cfg.Debug {
		config.AllowAllOrigins = false
		config.AllowOriginFunc = func(string) bool { return true }
		config.AllowCredentials = true
	}

	return cors.New(config)
}
