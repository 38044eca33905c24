// Package s3 连接 MinIO 或兼容 S3 的对象存储，所有操作绑定到一个 bucket.
package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/sociojustice/pkg/configs"
	nlog "github.com/yeisme/sociojustice/pkg/log"
)

// Client 绑定 bucket 的 MinIO 客户端.
type Client struct {
	*minio.Client
	bucket string
}

// splitEndpoint 去掉 endpoint 中的 scheme，https 视为开启 TLS.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, useSSL
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint, useSSL
	}

	return u.Host, useSSL || u.Scheme == "https"
}

// New 连接对象存储，bucket 不存在时创建.
func New(ctx context.Context, cfg configs.S3Config) (*Client, error) {
	host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)

	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", host, err)
	}

	mc.SetAppInfo("sociojustice", configs.AppVersion)

	c := &Client{Client: mc, bucket: cfg.Bucket}
	if err := c.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	nlog.Component("s3").Info().Str("endpoint", host).Bool("tls", secure).Str("bucket", cfg.Bucket).Msg("object storage ready")

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	ok, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", c.bucket, err)
	}

	if ok {
		return nil
	}

	if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		// 多实例同时启动时可能已被其他实例创建.
		if resp := minio.ToErrorResponse(err); resp.Code == "BucketAlreadyOwnedByYou" {
			return nil
		}

		return fmt.Errorf("make bucket %s: %w", c.bucket, err)
	}

	return nil
}

// Bucket 返回绑定的 bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// Ping 确认 bucket 仍可访问.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.bucket)
	return err
}
