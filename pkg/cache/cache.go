// Package cache 在键值存储之上提供带命名空间的泛型缓存.
//
// 键统一写成 "<namespace>:<xxhash(key)>"，原始键（例如 client id）不会出现在存储里.
// Load 在未命中时调用加载函数，同一个键的并发加载只执行一次，加载函数同时决定有效期.
//
// 基本用法:
//
//	c := cache.New(store, "sj:judilibre:token")
//	tok, err := cache.Load(ctx, c, clientID, func(ctx context.Context) (string, time.Duration, error) {
//		t, err := fetch(ctx)
//		return t.AccessToken, time.Until(t.Expiry), err
//	})
//
// 缓存读写失败只会降级为直接加载，不会让调用方失败.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/sociojustice/pkg/internal/storage/kv"
	"github.com/yeisme/sociojustice/pkg/log"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache: miss")

// Cache 命名空间内的缓存.
type Cache struct {
	store     kv.KVStore
	namespace string
	group     singleflight.Group
}

// New 创建缓存，namespace 作为键前缀.
func New(store kv.KVStore, namespace string) *Cache {
	return &Cache{store: store, namespace: namespace}
}

// Key 返回 key 在存储中的实际键名.
func (c *Cache) Key(key string) string {
	return c.namespace + ":" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// Get 读取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.store.Get(ctx, c.Key(key))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return zero, ErrMiss
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 写入缓存值，ttl <= 0 时不写.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.store.Set(ctx, c.Key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.Key(key))
}

// Load 先查缓存，未命中时调用 load 并按其返回的有效期写回.
func Load[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, time.Duration, error)) (T, error) {
	if v, err := Get[T](ctx, c, key); err == nil {
		return v, nil
	} else if !errors.Is(err, ErrMiss) {
		log.Logger().Warn().Err(err).Str("namespace", c.namespace).Msg("cache read failed")
	}

	v, err, _ := c.group.Do(c.Key(key), func() (any, error) {
		value, ttl, err := load(ctx)
		if err != nil {
			return value, err
		}

		if err := Set(ctx, c, key, value, ttl); err != nil {
			log.Logger().Warn().Err(err).Str("namespace", c.namespace).Msg("cache write failed")
		}

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
