// Package db 打开 GORM 连接，驱动按 db.type 选择.
package db

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	nlog "github.com/yeisme/sociojustice/pkg/log"
)

// dialects 驱动族到 dialector 构造函数，由各驱动文件在 init 中登记，
// 可以用 no_mysql 等 build tag 裁掉不需要的驱动.
var dialects = map[string]func(dsn string) gorm.Dialector{}

func register(family string, open func(dsn string) gorm.Dialector) {
	dialects[family] = open
}

// Families 返回当前二进制包含的驱动族.
func Families() []string {
	out := make([]string, 0, len(dialects))
	for f := range dialects {
		out = append(out, f)
	}

	slices.Sort(out)

	return out
}

// metricsRefreshSeconds GORM 连接池指标的刷新间隔.
const metricsRefreshSeconds = 15

// Client 包装 *gorm.DB.
type Client struct {
	*gorm.DB
}

// New 按全局配置打开数据库.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig()
	return Open(ctx, cfg.DB, cfg.Server.Debug, cfg.Metrics.Enabled)
}

// Open 打开连接、设置连接池并 ping 一次；auto_migrate 开启时同步表结构.
func Open(ctx context.Context, cfg configs.DBConfig, debug, withMetrics bool) (*Client, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	family := cfg.Type.Family()

	open, ok := dialects[family]
	if !ok {
		return nil, fmt.Errorf("database driver %q not compiled in", family)
	}

	gdb, err := gorm.Open(open(dsn), &gorm.Config{
		Logger:         gormLogger(cfg, debug),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", family, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	// sqlite 只允许一个写者；:memory: 库随最后一个连接关闭而消失，连接必须常驻.
	if family == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", family, err)
	}

	if withMetrics {
		err := gdb.Use(gormPrometheus.New(gormPrometheus.Config{
			DBName:          cfg.Database,
			RefreshInterval: metricsRefreshSeconds,
		}))
		if err != nil {
			return nil, fmt.Errorf("gorm prometheus plugin: %w", err)
		}
	}

	if cfg.AutoMigrate {
		if err := model.Migrate(gdb.WithContext(ctx)); err != nil {
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
	}

	nlog.Component("db").Info().
		Str("driver", family).
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Bool("migrated", cfg.AutoMigrate).
		Msg("database ready")

	return &Client{DB: gdb}, nil
}

// Wrap 用已有的 *gorm.DB 构造 Client，测试中配合内存 SQLite 使用.
func Wrap(gdb *gorm.DB) *Client {
	return &Client{DB: gdb}
}

// Ping 检查数据库连通性.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// gormLogger 把 SQL 日志写到 zerolog，调试模式记录每条语句.
func gormLogger(cfg configs.DBConfig, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return logger.New(nlog.Component("gorm"), logger.Config{
		SlowThreshold:             cfg.SlowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
