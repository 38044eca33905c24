package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultJudilibreBaseURL  = "https://sandbox-api.piste.gouv.fr/cassation/judilibre/v1.0"
	DefaultJudilibreTokenURL = "https://sandbox-oauth.piste.gouv.fr/api/oauth/token"
	DefaultJudilibrePageSize = 50
	DefaultJudilibreMaxPages = 1
	DefaultJudilibreTimeout  = 30 * time.Second
	DefaultJudilibreTokenTTL = 50 * time.Minute
)

// JudilibreConfig 上游判决检索接口（PISTE / Judilibre）配置.
type JudilibreConfig struct {
	BaseURL      string        `mapstructure:"base_url"      rule:"required,url"`
	TokenURL     string        `mapstructure:"token_url"     rule:"required,url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Scopes       []string      `mapstructure:"scopes"`
	PageSize     int           `mapstructure:"page_size"     rule:"min=1,max=50"`
	MaxPages     int           `mapstructure:"max_pages"     rule:"min=1,max=100"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// Mock 为 true 时导入不访问网络，改用本地样例数据
	Mock        bool   `mapstructure:"mock"`
	FixturePath string `mapstructure:"fixture_path"`
	// CacheToken 为 true 时把访问令牌缓存到 KV，默认每次导入重新获取
	CacheToken bool          `mapstructure:"cache_token"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig 上游熔断：连续失败达到阈值后在 OpenTimeout 内直接拒绝请求.
type BreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// ConsecutiveFailures 连续失败多少次后打开
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures" rule:"min=1"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	// HalfOpenRequests 半开状态放行的探测请求数
	HalfOpenRequests uint32 `mapstructure:"half_open_requests" rule:"min=1"`
}

func (c *JudilibreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("judilibre.base_url", DefaultJudilibreBaseURL)
	v.SetDefault("judilibre.token_url", DefaultJudilibreTokenURL)
	v.SetDefault("judilibre.client_id", "")
	v.SetDefault("judilibre.client_secret", "")
	v.SetDefault("judilibre.scopes", []string{"openid"})
	v.SetDefault("judilibre.page_size", DefaultJudilibrePageSize)
	v.SetDefault("judilibre.max_pages", DefaultJudilibreMaxPages)
	v.SetDefault("judilibre.timeout", DefaultJudilibreTimeout)
	v.SetDefault("judilibre.mock", false)
	v.SetDefault("judilibre.fixture_path", "")
	v.SetDefault("judilibre.cache_token", false)
	v.SetDefault("judilibre.token_ttl", DefaultJudilibreTokenTTL)
	v.SetDefault("judilibre.breaker.enabled", true)
	v.SetDefault("judilibre.breaker.consecutive_failures", 5)
	v.SetDefault("judilibre.breaker.open_timeout", time.Minute)
	v.SetDefault("judilibre.breaker.half_open_requests", 1)
}
