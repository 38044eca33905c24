package configs

import "github.com/spf13/viper"

const (
	UploadsBackendLocal = "local"
	UploadsBackendS3    = "s3"

	DefaultUploadsRoot      = "uploads"
	DefaultUploadsMaxSizeMB = 20
)

// UploadsConfig 档案 PDF 的存储位置.
type UploadsConfig struct {
	Backend   string `mapstructure:"backend"     rule:"oneof=local s3"`
	Root      string `mapstructure:"root"        rule:"required"`
	MaxSizeMB int64  `mapstructure:"max_size_mb" rule:"min=1"`
}

// MaxBytes 返回单个上传文件允许的最大字节数.
func (c *UploadsConfig) MaxBytes() int64 {
	return c.MaxSizeMB << 20
}

func (c *UploadsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("uploads.backend", UploadsBackendLocal)
	v.SetDefault("uploads.root", DefaultUploadsRoot)
	v.SetDefault("uploads.max_size_mb", DefaultUploadsMaxSizeMB)
}
