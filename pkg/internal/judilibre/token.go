package judilibre

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/yeisme/sociojustice/pkg/cache"
	"github.com/yeisme/sociojustice/pkg/internal/storage/kv"
)

// tokenSkew 令牌在真正过期前提前失效的时间.
const tokenSkew = 30 * time.Second

// TokenStore 令牌缓存.
type TokenStore interface {
	Token(ctx context.Context, key string, fetch func(context.Context) (*oauth2.Token, error)) (string, error)
}

// KVTokenStore 把令牌缓存在 KV 中，同一 key 的并发获取只请求一次.
type KVTokenStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewKVTokenStore 创建基于 KV 的令牌缓存，ttl 为上限，实际取令牌剩余有效期.
func NewKVTokenStore(store kv.KVStore, ttl time.Duration) *KVTokenStore {
	return &KVTokenStore{cache: cache.New(store, "sj:judilibre:token"), ttl: ttl}
}

// Token 先查缓存，未命中时调用 fetch 并写回.
func (s *KVTokenStore) Token(ctx context.Context, key string, fetch func(context.Context) (*oauth2.Token, error)) (string, error) {
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (string, time.Duration, error) {
		tok, err := fetch(ctx)
		if err != nil {
			return "", 0, err
		}

		ttl := s.ttl
		if !tok.Expiry.IsZero() {
			ttl = min(ttl, time.Until(tok.Expiry)-tokenSkew)
		}

		return tok.AccessToken, ttl, nil
	})
}
