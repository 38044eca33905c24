package configs

import "github.com/spf13/viper"

// S3Config MinIO/S3 连接参数，uploads.backend=s3 时档案 PDF 写入 Bucket.
// Endpoint 可以带 http:// 或 https://，带 https 时等同 use_ssl=true.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          rule:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"            rule:"required,min=3,max=63"`
	Region          string `mapstructure:"region"`
}

func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", "localhost:9000")
	v.SetDefault("s3.access_key_id", "minioadmin")
	v.SetDefault("s3.secret_access_key", "minioadmin")
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.bucket", "sociojustice")
	v.SetDefault("s3.region", "us-east-1")
}
