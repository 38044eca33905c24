package configs

import (
	"time"

	"github.com/spf13/viper"
)

// AuthConfig 控制 JWT 认证.
type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`    // 开启认证校验
	JWTSecret string        `mapstructure:"jwt_secret"` // HS256 签名密钥
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	SkipPaths []string      `mapstructure:"skip_paths"` // 跳过认证的路径前缀（如 /metrics、/health）
	// DevUser 认证关闭时的默认用户 ID，可被 X-User-ID 请求头覆盖
	DevUser string `mapstructure:"dev_user"`
	// BcryptCost 密码哈希强度
	BcryptCost int `mapstructure:"bcrypt_cost" rule:"min=4,max=31"`
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.issuer", "sociojustice")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.dev_user", "00000000-0000-0000-0000-000000000001")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/health",
		"/swagger",
		"/api/login",
		"/api/users/register",
	})
}
