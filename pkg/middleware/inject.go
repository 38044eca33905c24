package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

// StorageMiddleware 将存储管理器注入到请求 context.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}

// UpstreamMiddleware 将判决来源注入到请求 context，导入服务从中获取.
func UpstreamMiddleware(src judilibre.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithUpstream(c.Request.Context(), src))
		c.Next()
	}
}

// SchedulerMiddleware 将调度器注入到请求 context，sched 为 nil 时不注入.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Request = c.Request.WithContext(context.WithScheduler(c.Request.Context(), sched))
		}

		c.Next()
	}
}
