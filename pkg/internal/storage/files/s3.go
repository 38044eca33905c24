package files

import (
	"context"
	"fmt"
	"io"
	"net/http"

	minio "github.com/minio/minio-go/v7"

	s3c "github.com/yeisme/sociojustice/pkg/internal/storage/s3"
)

// S3 把文件写入 MinIO bucket，对象键即相对路径.
type S3 struct {
	cli *s3c.Client
}

// NewS3 创建 S3 存储.
func NewS3(cli *s3c.Client) *S3 {
	return &S3{cli: cli}
}

func (s *S3) Backend() string { return "s3" }

func (s *S3) Ping(ctx context.Context) error { return s.cli.Ping(ctx) }

func (s *S3) Save(ctx context.Context, rel string, r io.Reader, size int64) error {
	key, err := CleanRel(rel)
	if err != nil {
		return err
	}

	_, err = s.cli.PutObject(ctx, s.cli.Bucket(), key, r, size, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (s *S3) Open(ctx context.Context, rel string) (io.ReadCloser, int64, error) {
	key, err := CleanRel(rel)
	if err != nil {
		return nil, 0, err
	}

	info, err := s.cli.StatObject(ctx, s.cli.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			return nil, 0, ErrNotFound
		}

		return nil, 0, fmt.Errorf("stat object %s: %w", key, err)
	}

	obj, err := s.cli.GetObject(ctx, s.cli.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %s: %w", key, err)
	}

	return obj, info.Size, nil
}

func (s *S3) Remove(ctx context.Context, rel string) error {
	key, err := CleanRel(rel)
	if err != nil {
		return err
	}

	return s.cli.RemoveObject(ctx, s.cli.Bucket(), key, minio.RemoveObjectOptions{})
}
