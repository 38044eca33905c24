package kv_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/storage/kv"
)

// stores 返回待测后端，设置 REDIS_ADDR 时包含 Redis.
func stores(t *testing.T) map[string]kv.KVStore {
	t.Helper()

	out := map[string]kv.KVStore{"memory": kv.NewMemory()}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		r, err := kv.NewRedis(context.Background(), configs.RedisKVConfig{Addr: addr, DB: 15})
		if err != nil {
			t.Logf("redis unavailable: %v", err)
		} else {
			out["redis"] = r
		}
	}

	for _, s := range out {
		t.Cleanup(func() { _ = s.Close() })
	}

	return out
}

func TestStoreContract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "sj:test:" + name

			_, err := s.Get(ctx, key)
			assert.True(t, errors.Is(err, kv.ErrKeyNotFound))

			require.NoError(t, s.Set(ctx, key, []byte("token"), time.Minute))

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "token", string(got))

			ok, err := s.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)

			keys, err := s.Scan(ctx, "sj:test:*")
			require.NoError(t, err)
			assert.Contains(t, keys, key)

			require.NoError(t, s.Delete(ctx, key))

			ok, err = s.Exists(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestOpen(t *testing.T) {
	c, err := kv.Open(context.Background(), configs.KVConfig{Type: kv.TypeMemory})
	require.NoError(t, err)
	assert.Equal(t, kv.TypeMemory, c.Type)

	_, err = kv.Open(context.Background(), configs.KVConfig{Type: "etcd"})
	assert.ErrorContains(t, err, "unsupported kv type")

	types := kv.Types()
	sort.Strings(types)
	assert.Equal(t, []string{"memory", "redis"}, types)
}

func BenchmarkMemorySetGet(b *testing.B) {
	ctx := context.Background()
	s := kv.NewMemory()
	val := make([]byte, 512)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = s.Set(ctx, "sj:bench", val, time.Minute)
			_, _ = s.Get(ctx, "sj:bench")
		}
	})
}
