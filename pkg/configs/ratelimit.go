package configs

import (
	"time"

	"github.com/spf13/viper"
)

// RateLimitConfig 令牌桶限流，默认关闭.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gte=0"`
	Burst   int     `mapstructure:"burst" rule:"gte=0"`
	// Key 限流维度：global、ip、user（已认证用户，否则 IP）、header:<Name>
	Key string `mapstructure:"key"`
	// Login 登录与注册接口单独的按 IP 限流，防止撞库
	Login LoginRateLimitConfig `mapstructure:"login"`
	// IdleTTL 超过该时间未出现的 key 会被回收
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

// LoginRateLimitConfig 登录接口限流，RPS 为 0 时不限.
type LoginRateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"   rule:"gte=0"`
	Burst int     `mapstructure:"burst" rule:"gte=0"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.key", "ip")
	v.SetDefault("rate_limit.login.rps", 0.2)
	v.SetDefault("rate_limit.login.burst", 5)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
}
