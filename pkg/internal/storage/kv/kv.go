// Package kv 键值存储，目前用于在多实例间共享 Judilibre access token.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeisme/sociojustice/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.
var ErrKeyNotFound = errors.New("kv: key not found")

// KVStore 键值存储.ttl<=0 表示永不过期.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Scan 返回匹配 glob 模式的键，模式为空时返回全部.
	Scan(ctx context.Context, match string) ([]string, error)
	Close() error
}

// Client 包装配置选定的 KVStore.
type Client struct {
	KVStore
	Type string
}

// 支持的后端.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Types 返回支持的后端名.
func Types() []string {
	return []string{TypeMemory, TypeRedis}
}

// Open 按配置打开 KV 存储.
func Open(ctx context.Context, cfg configs.KVConfig) (*Client, error) {
	var (
		store KVStore
		err   error
	)

	switch cfg.Type {
	case "", TypeMemory:
		store = NewMemory()
	case TypeRedis:
		store, err = NewRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported kv type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store, Type: cfg.Type}, nil
}

// NewKVClient 使用全局配置打开 KV 存储.
func NewKVClient(ctx context.Context) (*Client, error) {
	return Open(ctx, configs.GetConfig().KV)
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}
