package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标，单独监听 Endpoint，不挂在业务端口上.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"  rule:"required_if=Enabled true"`
	// Namespace 业务指标名前缀，例如 sociojustice_http_requests_total
	Namespace string `mapstructure:"namespace" rule:"omitempty,alphanum"`
	// Pprof 在指标端口暴露 /debug/pprof
	Pprof bool `mapstructure:"pprof"`
	// Labels 附加到全部业务指标上的常量标签
	Labels map[string]string `mapstructure:"labels"`
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.namespace", "sociojustice")
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.labels", map[string]string{})
}
