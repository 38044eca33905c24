// Package files 保存档案上传的 PDF.
// 所有路径都是相对上传根目录（或 bucket）的 "/" 分隔路径，解析后必须仍在根内.
package files

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"

	"github.com/yeisme/sociojustice/pkg/configs"
	s3c "github.com/yeisme/sociojustice/pkg/internal/storage/s3"
)

var (
	// ErrOutsideRoot 路径解析后不在上传根目录内.
	ErrOutsideRoot = errors.New("path escapes uploads root")
	// ErrNotFound 文件不存在.
	ErrNotFound = errors.New("file not found")
)

// Store 档案文件存储.
type Store interface {
	// Save 写入 rel 指向的文件.
	Save(ctx context.Context, rel string, r io.Reader, size int64) error
	// Open 打开文件，返回内容与大小，调用方负责关闭.
	Open(ctx context.Context, rel string) (io.ReadCloser, int64, error)
	// Remove 删除文件，不存在时不报错.
	Remove(ctx context.Context, rel string) error
	// Backend 返回实现名称（local / s3）.
	Backend() string
	// Ping 确认存储可写入.
	Ping(ctx context.Context) error
}

// New 按 uploads.backend 创建存储.
func New(ctx context.Context, cfg *configs.AppConfig) (Store, error) { //nolint:ireturn
	switch cfg.Uploads.Backend {
	case "", configs.UploadsBackendLocal:
		return NewLocal(cfg.Uploads.Root)
	case configs.UploadsBackendS3:
		cli, err := s3c.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}

		return NewS3(cli), nil
	default:
		return nil, fmt.Errorf("unsupported uploads backend: %s", cfg.Uploads.Backend)
	}
}

// CleanRel 校验并规范化相对路径.
// 绝对路径、空路径以及经 ".." 越出根目录的路径返回 ErrOutsideRoot.
func CleanRel(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if rel == "" || strings.HasPrefix(rel, "/") || strings.ContainsRune(rel, 0) {
		return "", ErrOutsideRoot
	}

	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrOutsideRoot
	}

	return cleaned, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewName 生成存储名 YYYY/MM/<ulid>.pdf.
func NewName(now time.Time) string {
	now = now.UTC()

	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()

	return fmt.Sprintf("%04d/%02d/%s.pdf", now.Year(), int(now.Month()), strings.ToLower(id.String()))
}
