// Package handle 提供 HTTP 请求处理器，负责参数绑定、调用 service 与错误映射.
package handle

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	"github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/rule"
)

// writeError 把错误映射为状态码与统一错误体，调试模式附带内部原因.
func writeError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Kind.Status()

	resp := types.ErrorResponse{Error: e.Message, Status: status}
	if configs.GetConfig().Server.Debug && e.Err != nil {
		resp.Detail = e.Err.Error()
	}

	l := log.Logger()
	event := l.Warn()

	if status >= 500 {
		event = l.Error()
	}

	event.Err(e.Err).
		Str("kind", string(e.Kind)).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg(e.Message)

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON 解析 JSON 请求体并执行 rule 校验，失败时已写入 400.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		writeError(c, bindError(err))
		return false
	}

	if err := rule.ValidateStruct(obj); err != nil {
		writeError(c, apperr.New(apperr.KindBadRequest, rule.Message(err), err))
		return false
	}

	return true
}

func bindError(err error) error {
	if errors.Is(err, io.EOF) {
		return apperr.BadRequest("request body is required")
	}

	if rule.Errors(err) != nil {
		return apperr.New(apperr.KindBadRequest, rule.Message(err), err)
	}

	return apperr.New(apperr.KindBadRequest, "malformed JSON body", err)
}
