package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/configs"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
)

const timeout = 2 * time.Second

// Health 存活检查.
//
//	@Summary	存活检查
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": configs.AppVersion})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health/db [get]
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil {
		unhealthy(c, "db", "db client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok", "driver": dbc.Dialector.Name()})
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health/mq [get]
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil || mqc.Publisher() == nil {
		unhealthy(c, "mq", "mq client not initialized")
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok", "type": mqc.Type()})
}

// HealthFiles 档案文件存储健康检查.
//
//	@Summary	档案文件存储健康检查
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/health/files [get]
func HealthFiles(c *gin.Context) {
	store := ctxPkg.GetFiles(c.Request.Context())
	if store == nil {
		unhealthy(c, "files", "uploads storage not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		unhealthy(c, "files", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "files", "status": "ok", "backend": store.Backend()})
}

func unhealthy(c *gin.Context, component, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": msg})
}
