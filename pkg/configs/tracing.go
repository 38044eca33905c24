package configs

import (
	"time"

	"github.com/spf13/viper"
)

// TracingConfig 链路追踪配置，默认关闭.
type TracingConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	ExporterType   string        `mapstructure:"exporter_type" rule:"oneof=otlp-http otlp-grpc zipkin"`
	Endpoint       string        `mapstructure:"endpoint"`
	// Insecure 仅对 otlp-grpc 生效，关闭 TLS
	Insecure     bool          `mapstructure:"insecure"`
	SampleRate   float64       `mapstructure:"sample_rate"    rule:"min=0,max=1"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxBatchSize int           `mapstructure:"max_batch_size"`
	MaxQueueSize int           `mapstructure:"max_queue_size"`
	// ResourceLabels 附加到 resource 上的属性，例如 deployment.environment
	ResourceLabels map[string]string `mapstructure:"resource_labels"`
}

func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "sociojustice")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.exporter_type", "otlp-http")
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.batch_timeout", 5*time.Second)
	v.SetDefault("tracing.max_batch_size", 512)
	v.SetDefault("tracing.max_queue_size", 2048)
	v.SetDefault("tracing.resource_labels", map[string]string{})
}
