package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yeisme/sociojustice/docs"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/handle"
)

// registerProbes 挂载不经过鉴权的探活路由.
func registerProbes(e *gin.Engine) {
	probes := e.Group("/health")
	probes.GET("", handle.Health)
	probes.GET("/db", handle.HealthDB)
	probes.GET("/mq", handle.HealthMQ)
	probes.GET("/files", handle.HealthFiles)
}

// registerDocs 在调试模式下提供 /swagger/index.html.
func registerDocs(e *gin.Engine, cfg *configs.AppConfig) {
	if !cfg.Server.Debug {
		return
	}

	docs.SwaggerInfo.Host = cfg.Server.Addr()
	docs.SwaggerInfo.Version = configs.AppVersion

	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// registerJobRoutes 管理员查看与手动触发定时任务.
func registerJobRoutes(admin *gin.RouterGroup) {
	admin.GET("/jobs", handle.SchedulerJobs)
	admin.POST("/jobs/:name/run", handle.SchedulerRunJob)
}
