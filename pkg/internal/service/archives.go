package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/query"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	nlog "github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/metrics"
	"github.com/yeisme/sociojustice/pkg/queue"
)

var pdfMagic = []byte("%PDF-")

// Upload 上传的文件.
type Upload struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// ArchiveFile 打开的档案文件，调用方负责关闭 Body.
type ArchiveFile struct {
	Body     io.ReadCloser
	Size     int64
	FileName string
}

// ArchiveService 档案上传与读取.
type ArchiveService struct {
	archives repository.ArchiveRepository
	files    files.Store
	events   *queue.Events
	maxBytes int64
	namer    func(time.Time) string
	now      func() time.Time
}

// ArchiveOption 配置 ArchiveService.
type ArchiveOption func(*ArchiveService)

// WithMaxBytes 单个文件的最大字节数，0 表示不限制.
func WithMaxBytes(n int64) ArchiveOption {
	return func(s *ArchiveService) { s.maxBytes = n }
}

// WithFileNamer 替换存储路径生成函数.
func WithFileNamer(namer func(time.Time) string) ArchiveOption {
	return func(s *ArchiveService) { s.namer = namer }
}

// NewArchiveService 从 context 获取依赖实例.
func NewArchiveService(ctx context.Context) *ArchiveService {
	mgr := managerFrom(ctx)
	uploads := configs.GetConfig().Uploads

	return NewArchiveServiceWith(mgr.Repositories().Archives, mgr.Files, eventsFrom(mgr), WithMaxBytes(uploads.MaxBytes()))
}

// NewArchiveServiceWith 直接注入依赖，events 可为 nil.
func NewArchiveServiceWith(archives repository.ArchiveRepository, store files.Store, events *queue.Events, opts ...ArchiveOption) *ArchiveService {
	s := &ArchiveService{archives: archives, files: store, events: events, namer: files.NewName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create 保存 PDF，并在一个事务中写入档案与镜像判决.
// 数据库写入失败时删除已保存的文件.
func (s *ArchiveService) Create(ctx context.Context, userID string, form *types.CreateArchiveForm, up *Upload) (*types.Archive, error) {
	view, err := s.create(ctx, userID, form, up)

	switch {
	case err == nil:
		metrics.ArchiveUploads.WithLabelValues("created").Inc()
		metrics.ArchiveBytes.Observe(float64(view.Size))
	case apperr.KindOf(err) == apperr.KindInternal:
		metrics.ArchiveUploads.WithLabelValues("failed").Inc()
	default:
		metrics.ArchiveUploads.WithLabelValues("rejected").Inc()
	}

	return view, err
}

func (s *ArchiveService) create(ctx context.Context, userID string, form *types.CreateArchiveForm, up *Upload) (*types.Archive, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Unauthorized("authentication required")
	}

	if form == nil || strings.TrimSpace(form.Title) == "" {
		return nil, apperr.BadRequest("title is required")
	}

	if up == nil || up.Body == nil {
		return nil, apperr.BadRequest("file is required")
	}

	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return nil, apperr.BadRequest("file too large")
	}

	var date *time.Time

	if form.Date != "" {
		d, err := query.ParseDate(form.Date)
		if err != nil {
			return nil, apperr.BadRequest("date must be YYYY-MM-DD")
		}

		date = &d
	}

	body := bufio.NewReader(up.Body)
	if head, _ := body.Peek(len(pdfMagic)); !bytes.Equal(head, pdfMagic) {
		return nil, apperr.BadRequest("only PDF files are accepted")
	}

	rel := s.namer(s.now())
	if err := s.files.Save(ctx, rel, body, up.Size); err != nil {
		if errors.Is(err, files.ErrOutsideRoot) {
			return nil, apperr.BadRequest("file path outside uploads root")
		}

		return nil, apperr.Internal("failed to store file", err)
	}

	archive := &model.Archive{
		Title:        strings.TrimSpace(form.Title),
		Content:      form.Content,
		Date:         date,
		Jurisdiction: strings.TrimSpace(form.Jurisdiction),
		CaseType:     strings.TrimSpace(form.CaseType),
		Location:     strings.TrimSpace(form.Location),
		UserID:       userID,
		FilePath:     rel,
		FileName:     filepath.Base(up.FileName),
		Size:         up.Size,
	}
	mirror := &model.Decision{
		Title:        archive.Title,
		Content:      archive.Content,
		Date:         date,
		Jurisdiction: archive.Jurisdiction,
		CaseType:     archive.CaseType,
		Public:       true,
	}

	if err := s.archives.CreateWithDecision(ctx, archive, mirror); err != nil {
		if rmErr := s.files.Remove(ctx, rel); rmErr != nil {
			nlog.Logger().Warn().Err(rmErr).Str("path", rel).Msg("remove orphan upload failed")
		}

		return nil, apperr.Internal("failed to create archive", err)
	}

	s.events.ArchiveCreated(ctx, queue.ArchiveCreatedPayload{
		ArchiveID:  archive.ID,
		DecisionID: mirror.ID,
		UserID:     userID,
		Title:      archive.Title,
		FilePath:   rel,
		Size:       archive.Size,
	})

	view := toArchive(archive, mirror.ID)

	return &view, nil
}

// Get 读取档案视图.
func (s *ArchiveService) Get(ctx context.Context, id string) (*types.Archive, error) {
	a, err := s.archives.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "archive not found", "failed to load archive")
	}

	decisionID, err := s.archives.MirrorDecisionID(ctx, a.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to load archive", err)
	}

	view := toArchive(a, decisionID)

	return &view, nil
}

// Open 打开档案 PDF，路径重新经过根目录校验.
func (s *ArchiveService) Open(ctx context.Context, id string) (*ArchiveFile, error) {
	a, err := s.archives.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "archive not found", "failed to load archive")
	}

	rc, size, err := s.files.Open(ctx, a.FilePath)

	switch {
	case errors.Is(err, files.ErrOutsideRoot):
		return nil, apperr.BadRequest("file path outside uploads root")
	case errors.Is(err, files.ErrNotFound):
		return nil, apperr.NotFound("archive file not found")
	case err != nil:
		return nil, apperr.Internal("failed to open archive file", err)
	}

	name := a.FileName
	if name == "" {
		name = filepath.Base(a.FilePath)
	}

	return &ArchiveFile{Body: rc, Size: size, FileName: name}, nil
}

func toArchive(a *model.Archive, decisionID string) types.Archive {
	base := "/api/archives/" + a.ID + "/file"

	return types.Archive{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content,
		Date:         formatDate(a.Date),
		Jurisdiction: a.Jurisdiction,
		CaseType:     a.CaseType,
		Location:     a.Location,
		UserID:       a.UserID,
		FileName:     a.FileName,
		Size:         a.Size,
		CreatedAt:    a.CreatedAt,
		DecisionID:   decisionID,
		IsPDF:        true,
		FileURL:      base,
		DownloadURL:  base + "?download=1",
	}
}
