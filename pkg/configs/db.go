package configs

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DBType db.type 的取值，postgres 与 mysql 各有别名.
type DBType string

const (
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgres"
	Pg         DBType = "pg"
	MySQL      DBType = "mysql"
	MariaDB    DBType = "mariadb"
	SQLite     DBType = "sqlite"
)

// Family 把别名归并为驱动族：postgres、mysql 或 sqlite，未知类型返回空串.
func (t DBType) Family() string {
	switch t {
	case PostgreSQL, Postgres, Pg:
		return "postgres"
	case MySQL, MariaDB:
		return "mysql"
	case SQLite:
		return "sqlite"
	default:
		return ""
	}
}

// DBConfig 判决、档案与用户表所在的关系数据库.
type DBConfig struct {
	Type     DBType `mapstructure:"type"     rule:"oneof=postgresql postgres pg mysql mariadb sqlite"`
	Host     string `mapstructure:"host"     rule:"omitempty,hostname|ip"`
	Port     int    `mapstructure:"port"     rule:"min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Database 对 sqlite 是文件名（不含 .db），":memory:" 表示内存库
	Database string `mapstructure:"database" rule:"required"`
	SSLMode  string `mapstructure:"sslmode"  rule:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"    rule:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    rule:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// DSN 生成驱动所需的连接串.
func (c *DBConfig) DSN() (string, error) {
	switch c.Type.Family() {
	case "postgres":
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:     "/" + c.Database,
			RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
		}

		return u.String(), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Database), nil
	case "sqlite":
		if c.Database == ":memory:" {
			return "file::memory:?cache=shared", nil
		}

		name := c.Database
		if !strings.HasSuffix(name, ".db") {
			name += ".db"
		}

		return "file:" + name + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported database type: %q", c.Type)
	}
}

func (c *DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", PostgreSQL)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", "sociojustice")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 0)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.slow_threshold", 200*time.Millisecond)
}
