package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	"github.com/yeisme/sociojustice/pkg/middleware"
)

// Register 注册用户，需管理员审批后才能登录.
//
//	@Summary	用户注册
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.RegisterRequest	true	"邮箱与密码"
//	@Success	201		{object}	types.User
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	409		{object}	types.ErrorResponse
//	@Router		/api/users/register [post]
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	u, err := service.NewUserService(ctx).Register(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// Login 登录并获取令牌.
//
//	@Summary	用户登录
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.LoginRequest	true	"邮箱与密码"
//	@Success	200		{object}	types.LoginResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	403		{object}	types.ErrorResponse
//	@Router		/api/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	resp, err := service.NewUserService(ctx).Login(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Approve 管理员审批用户.
//
//	@Summary	审批用户
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.ApproveRequest	true	"用户邮箱"
//	@Success	200		{object}	types.User
//	@Failure	403		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/admin/approve [post]
func Approve(c *gin.Context) {
	var req types.ApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	u, err := service.NewUserService(ctx).Approve(ctx, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// Me 当前用户.
//
//	@Summary	当前用户
//	@Tags		用户
//	@Produce	json
//	@Success	200	{object}	types.User
//	@Failure	401	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/users/me [get]
func Me(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id == nil {
		writeError(c, apperr.Unauthorized("authentication required"))
		return
	}

	ctx := c.Request.Context()

	u, err := service.NewUserService(ctx).Me(ctx, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
