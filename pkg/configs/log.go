package configs

import (
	"github.com/spf13/viper"
)

// 控制台日志格式.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogConfig 日志相关配置.
type LogConfig struct {
	Level string `mapstructure:"level"  rule:"oneof=trace debug info warn error"`
	// Format 控制台输出格式，容器环境一般用 json
	Format     string `mapstructure:"format" rule:"oneof=console json"`
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatConsole)
	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/sociojustice.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
