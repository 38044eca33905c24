// Package router 管理路由配置，把路径与中间件、处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/handle"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/middleware"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

// Deps 路由需要的运行时依赖，Scheduler 可为 nil.
type Deps struct {
	Config    *configs.AppConfig
	Manager   *storage.Manager
	Upstream  judilibre.Source
	Tokens    *auth.Manager
	Scheduler *scheduler.Scheduler
}

// Register 注册全部路由.
//
//	/health, /health/db, /health/mq
//	/api/login, /api/users/register, /api/users/me
//	/api/decisions/...
//	/api/archives/...
//	/api/admin/... (admin)
func Register(e *gin.Engine, d Deps) {
	e.Use(
		middleware.StorageMiddleware(d.Manager),
		middleware.UpstreamMiddleware(d.Upstream),
		middleware.SchedulerMiddleware(d.Scheduler),
	)

	registerProbes(e)
	registerDocs(e, d.Config)

	api := e.Group("/api")
	api.Use(
		middleware.AuthMiddleware(d.Config.Auth, d.Tokens),
		middleware.RateLimitMiddleware(d.Config.RateLimit),
	)

	RegisterUserRoutes(api, d.Config.RateLimit)
	RegisterDecisionRoutes(api)
	RegisterArchiveRoutes(api)

	admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/approve", handle.Approve)
	registerJobRoutes(admin)
}

// RegisterUserRoutes 注册用户相关路由，登录与注册另有按 IP 的限流.
func RegisterUserRoutes(g *gin.RouterGroup, rl configs.RateLimitConfig) {
	login := middleware.LoginRateLimitMiddleware(rl)

	g.POST("/login", login, handle.Login)
	g.POST("/users/register", login, handle.Register)
	g.GET("/users/me", handle.Me)
}
