// Package log 提供基于 zerolog 的全局日志.
//
// 控制台输出支持 console（人类可读）与 json 两种格式，可选再写一份到 lumberjack 轮转文件.
// 各模块通过 Component 取带 component 字段的子 logger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/sociojustice/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 按全局配置初始化 logger，只生效一次.
func Init() {
	initOnce.Do(func() {
		logger = New(configs.GetConfig().Log, configs.GetConfig().Server.Debug)
		log.Logger = logger

		configs.OnReload(func(c configs.AppConfig) {
			if lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err == nil && c.Log.Level != "" {
				zerolog.SetGlobalLevel(lvl)
				logger.Info().Str("level", lvl.String()).Msg("log level reloaded")
			}
		})

		if configs.GetConfig().Server.Debug {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	})
}

// New 根据配置构造 logger，不修改全局状态.
func New(cfg configs.LogConfig, debug bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Level)

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var console io.Writer = os.Stderr
	if cfg.Format != configs.LogFormatJSON {
		console = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.DateTime
		})
	}

	writers := []io.Writer{console}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Str("service", "sociojustice")
	if debug {
		ctx = ctx.Caller()
	}

	return ctx.Logger()
}

// Logger 返回全局 logger，首次使用时初始化.
func Logger() *zerolog.Logger {
	Init()

	return &logger
}

// Component 返回带 component 字段的子 logger.
func Component(name string) *zerolog.Logger {
	l := Logger().With().Str("component", name).Logger()

	return &l
}

// GinWriter 把 gin 自身输出的文本行转成 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 创建 GinWriter，level 为默认级别.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

// Write 去掉 [GIN-debug] 等前缀，带 [WARNING] 的行按 warn 记录.
func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	level := w.level

	for _, prefix := range []string{"[GIN-debug]", "[GIN]"} {
		msg = strings.TrimSpace(strings.TrimPrefix(msg, prefix))
	}

	if rest, ok := strings.CutPrefix(msg, "[WARNING]"); ok {
		msg = strings.TrimSpace(rest)

		if level < zerolog.WarnLevel {
			level = zerolog.WarnLevel
		}
	}

	w.logger.WithLevel(level).Str("component", "gin").Msg(msg)

	return len(p), nil
}
