package configs

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// HTTP 服务默认值.
const (
	DefaultPort            = 8080
	DefaultHost            = "0.0.0.0"
	DefaultTimeout         = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// ServerConfig HTTP 服务配置.
type ServerConfig struct {
	Port int    `mapstructure:"port" rule:"min=1,max=65535"`
	Host string `mapstructure:"host" rule:"ip"`
	// ReloadConfig 配置文件变更时重新加载，仅影响可热更的字段
	ReloadConfig bool `mapstructure:"reload_config"`
	Debug        bool `mapstructure:"debug"`
	// Timeout 读取请求头的超时，上传大文件不受其限制
	Timeout         time.Duration `mapstructure:"timeout"          rule:"min=1s,max=5m"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" rule:"min=1s"`
}

// Addr 返回 host:port.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
}
