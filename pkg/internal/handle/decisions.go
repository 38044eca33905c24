package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

// ListDecisions 检索判决.
//
//	@Summary		检索判决
//	@Description	按日期、来源、管辖法院、案件类型与关键词过滤，返回一页结果与匹配总数
//	@Tags			判决
//	@Produce		json
//	@Param			date			query		string	false	"判决日期 YYYY-MM-DD"
//	@Param			start_date		query		string	false	"起始日期 YYYY-MM-DD"
//	@Param			end_date		query		string	false	"截止日期 YYYY-MM-DD"
//	@Param			source			query		[]string	false	"来源 judilibre / archive，可重复"
//	@Param			juridiction		query		string	false	"管辖法院（包含匹配，不区分大小写）"
//	@Param			type_affaire	query		string	false	"案件类型（包含匹配，不区分大小写）"
//	@Param			keyword			query		string	false	"关键词标签包含匹配（不区分大小写）"
//	@Param			sortBy			query		string	false	"date / jurisdiction / case_type"
//	@Param			order			query		string	false	"asc / desc"
//	@Param			page			query		int		false	"页码，从 1 开始"
//	@Param			limit			query		int		false	"每页数量"
//	@Success		200				{object}	types.DecisionListResponse
//	@Failure		400				{object}	types.ErrorResponse
//	@Failure		500				{object}	types.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/decisions [get]
func ListDecisions(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := service.NewDecisionService(ctx).List(ctx, c.Request.URL.Query())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetDecision 按内部 id 或上游编号读取判决.
//
//	@Summary	判决详情
//	@Tags		判决
//	@Produce	json
//	@Param		id	path		string	true	"内部 id 或上游编号"
//	@Success	200	{object}	types.Decision
//	@Failure	404	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/decisions/{id} [get]
func GetDecision(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := service.NewDecisionService(ctx).Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// UpdateDecisionKeywords 整体替换判决关键词.
//
//	@Summary	替换关键词
//	@Tags		判决
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string						true	"内部 id 或上游编号"
//	@Param		keywords	body		types.UpdateKeywordsRequest	true	"关键词数组"
//	@Success	200			{object}	types.Decision
//	@Failure	400			{object}	types.ErrorResponse
//	@Failure	404			{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/decisions/{id}/keywords [put]
func UpdateDecisionKeywords(c *gin.Context) {
	var req types.UpdateKeywordsRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	d, err := service.NewDecisionService(ctx).UpdateKeywords(ctx, c.Param("id"), req.Keywords)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// ImportDecisions 从 Judilibre 导入判决.
//
//	@Summary		导入判决
//	@Description	按日期窗口拉取上游判决并幂等写入，已存在的上游编号计为 skipped
//	@Tags			判决
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.ImportRequest	true	"导入条件"
//	@Success		200		{object}	types.ImportResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		403		{object}	types.ErrorResponse
//	@Failure		500		{object}	types.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/decisions/import [post]
func ImportDecisions(c *gin.Context) {
	var req types.ImportRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	resp, err := service.NewImportService(ctx).Import(ctx, &req, service.TriggerAPI)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DecisionStats 判决统计.
//
//	@Summary	判决统计
//	@Tags		判决
//	@Produce	json
//	@Success	200	{object}	types.DecisionStatsResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/decisions/stats [get]
func DecisionStats(c *gin.Context) {
	ctx := c.Request.Context()

	st, err := service.NewDecisionService(ctx).Stats(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}

// ListJurisdictions 去重排序的管辖法院.
//
//	@Summary	管辖法院列表
//	@Tags		判决
//	@Produce	json
//	@Success	200	{array}		string
//	@Failure	500	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/decisions/juridictions [get]
func ListJurisdictions(c *gin.Context) {
	ctx := c.Request.Context()

	vals, err := service.NewDecisionService(ctx).Jurisdictions(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, vals)
}

// ListCaseTypes 去重排序的案件类型.
//
//	@Summary	案件类型列表
//	@Tags		判决
//	@Produce	json
//	@Success	200	{array}		string
//	@Failure	500	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/decisions/case-types [get]
func ListCaseTypes(c *gin.Context) {
	ctx := c.Request.Context()

	vals, err := service.NewDecisionService(ctx).CaseTypes(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, vals)
}
