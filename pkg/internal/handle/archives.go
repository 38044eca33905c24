package handle

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	"github.com/yeisme/sociojustice/pkg/middleware"
	"github.com/yeisme/sociojustice/pkg/rule"
)

// CreateArchive 上传 PDF 档案并生成镜像判决.
//
//	@Summary		上传档案
//	@Description	multipart 表单上传 PDF，文件保存在上传根目录内，档案与镜像判决在同一事务中写入
//	@Tags			档案
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"PDF 文件"
//	@Param			title			formData	string	true	"标题"
//	@Param			content			formData	string	false	"正文"
//	@Param			date			formData	string	false	"日期 YYYY-MM-DD"
//	@Param			jurisdiction	formData	string	false	"管辖法院"
//	@Param			case_type		formData	string	false	"案件类型"
//	@Param			location		formData	string	false	"地点"
//	@Success		201				{object}	types.Archive
//	@Failure		400				{object}	types.ErrorResponse
//	@Failure		401				{object}	types.ErrorResponse
//	@Failure		500				{object}	types.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/archives [post]
func CreateArchive(c *gin.Context) {
	var form types.CreateArchiveForm
	if err := c.ShouldBind(&form); err != nil {
		writeError(c, bindError(err))
		return
	}

	if err := rule.ValidateStruct(&form); err != nil {
		writeError(c, apperr.New(apperr.KindBadRequest, rule.Message(err), err))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(c, apperr.BadRequest("file is required"))
		} else {
			writeError(c, apperr.New(apperr.KindBadRequest, "invalid multipart form", err))
		}

		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, apperr.Internal("failed to read upload", err))
		return
	}
	defer f.Close()

	var userID string
	if id := middleware.GetIdentity(c); id != nil {
		userID = id.UserID
	}

	ctx := c.Request.Context()

	a, err := service.NewArchiveService(ctx).Create(ctx, userID, &form, &service.Upload{
		FileName: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

// GetArchive 读取档案.
//
//	@Summary	档案详情
//	@Tags		档案
//	@Produce	json
//	@Param		id	path		string	true	"档案 id"
//	@Success	200	{object}	types.Archive
//	@Failure	404	{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/archives/{id} [get]
func GetArchive(c *gin.Context) {
	ctx := c.Request.Context()

	a, err := service.NewArchiveService(ctx).Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// GetArchiveFile 输出档案 PDF，download=1|true 时以附件形式下载.
//
//	@Summary	档案文件
//	@Tags		档案
//	@Produce	application/pdf
//	@Param		id			path	string	true	"档案 id"
//	@Param		download	query	string	false	"1 或 true 时作为附件下载"
//	@Success	200			{file}	binary
//	@Failure	400			{object}	types.ErrorResponse
//	@Failure	404			{object}	types.ErrorResponse
//	@Security	BearerAuth
//	@Router		/api/archives/{id}/file [get]
func GetArchiveFile(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := service.NewArchiveService(ctx).Open(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Body.Close()

	disposition := "inline"
	if dl, _ := strconv.ParseBool(c.Query("download")); dl {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, f.Size, "application/pdf", f.Body, map[string]string{
		"Content-Disposition": mime.FormatMediaType(disposition, map[string]string{"filename": f.FileName}),
	})
}
