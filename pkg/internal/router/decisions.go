package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/internal/handle"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/middleware"
)

// RegisterDecisionRoutes 注册判决相关路由，静态路径先于 /:id 匹配.
func RegisterDecisionRoutes(g *gin.RouterGroup) {
	decisions := g.Group("/decisions")
	{
		decisions.GET("", handle.ListDecisions)
		decisions.GET("/stats", handle.DecisionStats)
		decisions.GET("/juridictions", handle.ListJurisdictions)
		decisions.GET("/case-types", handle.ListCaseTypes)
		decisions.POST("/import", middleware.RequireRole(model.RoleAdmin), handle.ImportDecisions)

		decisions.GET("/:id", handle.GetDecision)
		decisions.PUT("/:id/keywords", handle.UpdateDecisionKeywords)
	}
}

// RegisterArchiveRoutes 注册档案相关路由.
func RegisterArchiveRoutes(g *gin.RouterGroup) {
	archives := g.Group("/archives")
	{
		archives.POST("", handle.CreateArchive)
		archives.GET("/:id", handle.GetArchive)
		archives.GET("/:id/file", handle.GetArchiveFile)
	}
}
