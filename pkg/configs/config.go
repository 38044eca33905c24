// Package configs 管理应用程序配置，包括数据库、存储、上游接口和队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	dsn, err := configs.GetConfig().DB.DSN()
//
// Example accessing Judilibre config:
//
//	jcfg := configs.GetConfig().Judilibre
//	fmt.Println(jcfg.BaseURL, jcfg.Mock)
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号.
const AppVersion = "0.3.0"

// EnvPrefix 环境变量前缀，例如 SOCIOJUSTICE_DB_HOST.
const EnvPrefix = "SOCIOJUSTICE"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置，端口、调试模式等
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 指标配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 链路追踪配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值存储配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件发布开关
		S3             S3Config             `mapstructure:"s3"`              // S3Config 对象存储配置
		Uploads        UploadsConfig        `mapstructure:"uploads"`         // UploadsConfig 上传文件存储配置
		Judilibre      JudilibreConfig      `mapstructure:"judilibre"`       // JudilibreConfig 上游判决接口配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 认证配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		Scheduler      SchedulerConfig      `mapstructure:"scheduler"`       // SchedulerConfig 定时任务配置
	}
)

var (
	globalConfig atomic.Pointer[AppConfig]
	appViper     *viper.Viper

	hooksMu     sync.Mutex
	reloadHooks []func(AppConfig)
)

// candidateExts 目录模式下依次查找 config.<ext>.
var candidateExts = []string{"yaml", "yml", "json", "toml", "env"}

// InitConfig 加载配置.path 可以是配置文件，也可以是目录（查找 path 与 path/configs 下的 config.*）.
// 没有配置文件时只用默认值与 SOCIOJUSTICE_ 前缀的环境变量；工作目录下的 .env 会先载入环境变量.
func InitConfig(path string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setAllDefaults(v)

	if file := locate(path); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	appViper = v
	globalConfig.Store(&c)

	if v.ConfigFileUsed() != "" && c.Server.ReloadConfig {
		watch(v)
	}

	return nil
}

// setAllDefaults 注册各配置段的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		server    ServerConfig
		db        DBConfig
		logCfg    LogConfig
		metrics   MetricsConfig
		tracing   TracingConfig
		kv        KVConfig
		mq        MQConfig
		events    EventsConfig
		s3        S3Config
		uploads   UploadsConfig
		judilibre JudilibreConfig
		auth      AuthConfig
		rateLimit RateLimitConfig
		scheduler SchedulerConfig
	)

	server.setDefaults(v)
	db.setDefaults(v)
	logCfg.setDefaults(v)
	metrics.setDefaults(v)
	tracing.setDefaults(v)
	kv.setDefaults(v)
	mq.setDefaults(v)
	events.setDefaults(v)
	s3.setDefaults(v)
	uploads.setDefaults(v)
	judilibre.setDefaults(v)
	auth.setDefaults(v)
	rateLimit.setDefaults(v)
	scheduler.setDefaults(v)
}

// locate 返回要读取的配置文件，找不到时返回空串交给 viper 搜索.
func locate(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}

	for _, ext := range candidateExts {
		file := filepath.Join(path, "config."+ext)
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	return ""
}

// OnReload 注册配置文件变更后的回调，回调收到新配置.
func OnReload(fn func(AppConfig)) {
	hooksMu.Lock()
	reloadHooks = append(reloadHooks, fn)
	hooksMu.Unlock()
}

// watch 监听配置文件.解析失败时保留旧配置.
// 监听地址、数据库等启动时已使用的字段改动后需重启才生效.
func watch(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			fmt.Fprintf(os.Stderr, "config reload %s: %v\n", e.Name, err)
			return
		}

		globalConfig.Store(&next)

		hooksMu.Lock()
		hooks := slices.Clone(reloadHooks)
		hooksMu.Unlock()

		for _, fn := range hooks {
			fn(next)
		}
	})
	v.WatchConfig()
}

func init() {
	globalConfig.Store(&AppConfig{})
}

// GetConfig 返回当前配置.热重载会整体替换实例，调用方不要长期持有.
func GetConfig() *AppConfig {
	return globalConfig.Load()
}

// GetViper 返回全局 Viper 实例，InitConfig 之前为 nil.
func GetViper() *viper.Viper {
	return appViper
}

// Defaults 返回只包含默认值的配置，测试与命令行工具使用.
func Defaults() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var c AppConfig
	_ = v.Unmarshal(&c)

	return c
}

const redacted = "******"

// Redacted 返回隐去密钥与口令的副本，用于打印.
func (c AppConfig) Redacted() AppConfig {
	mask := func(s *string) {
		if *s != "" {
			*s = redacted
		}
	}

	mask(&c.DB.Password)
	mask(&c.KV.Redis.Password)
	mask(&c.MQ.Common.Password)
	mask(&c.S3.SecretAccessKey)
	mask(&c.Judilibre.ClientSecret)
	mask(&c.Auth.JWTSecret)

	return c
}
