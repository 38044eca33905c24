package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/sociojustice/pkg/configs"
)

// sweepEvery 每处理这么多次请求检查一次闲置 key.
const sweepEvery = 1024

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterTable 按 key 保存令牌桶，闲置超过 idle 的 key 在访问时顺带回收.
type limiterTable struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	hits    int
	now     func() time.Time
}

func newLimiterTable(rps float64, burst int, idle time.Duration) *limiterTable {
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	return &limiterTable{
		entries: map[string]*limiterEntry{},
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		idle:    idle,
		now:     time.Now,
	}
}

// reserve 返回是否放行，以及被拒绝时建议的等待时间.
func (t *limiterTable) reserve(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	t.hits++
	if t.hits%sweepEvery == 0 {
		for k, e := range t.entries {
			if now.Sub(e.lastSeen) > t.idle {
				delete(t.entries, k)
			}
		}
	}

	e, ok := t.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = e
	}

	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}

	return true, 0
}

func (t *limiterTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

func tooMany(c *gin.Context, wait time.Duration) {
	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	abort(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// RateLimitMiddleware 按配置的维度限流，未启用时直接放行.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	table := newLimiterTable(cfg.RPS, cfg.Burst, cfg.IdleTTL)
	keyOf := rateLimitKey(strings.TrimSpace(cfg.Key))

	return func(c *gin.Context) {
		if ok, wait := table.reserve(keyOf(c)); !ok {
			tooMany(c, wait)
			return
		}

		c.Next()
	}
}

// LoginRateLimitMiddleware 登录与注册按客户端 IP 单独限流.
func LoginRateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Login.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	table := newLimiterTable(cfg.Login.RPS, cfg.Login.Burst, cfg.IdleTTL)

	return func(c *gin.Context) {
		if ok, wait := table.reserve("login:" + c.ClientIP()); !ok {
			tooMany(c, wait)
			return
		}

		c.Next()
	}
}

func rateLimitKey(mode string) func(*gin.Context) string {
	switch {
	case strings.EqualFold(mode, "global"):
		return func(*gin.Context) string { return "global" }
	case strings.EqualFold(mode, "user"):
		return func(c *gin.Context) string {
			if id := GetIdentity(c); id != nil && id.UserID != "" {
				return "user:" + id.UserID
			}

			return "ip:" + c.ClientIP()
		}
	case len(mode) > len("header:") && strings.EqualFold(mode[:len("header:")], "header:"):
		header := mode[len("header:"):]

		return func(c *gin.Context) string {
			if v := c.GetHeader(header); v != "" {
				return "h:" + v
			}

			return "ip:" + c.ClientIP()
		}
	default:
		return func(c *gin.Context) string { return "ip:" + c.ClientIP() }
	}
}
