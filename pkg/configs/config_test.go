package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/rule"
)

func TestDefaults(t *testing.T) {
	c := configs.Defaults()

	assert.Equal(t, configs.DefaultPort, c.Server.Port)
	assert.Equal(t, configs.DefaultJudilibreTimeout, c.Judilibre.Timeout)
	assert.Equal(t, 50, c.Judilibre.PageSize)
	assert.Equal(t, 1, c.Judilibre.MaxPages)
	assert.False(t, c.Judilibre.CacheToken)
	assert.Equal(t, configs.UploadsBackendLocal, c.Uploads.Backend)
	assert.EqualValues(t, 20<<20, c.Uploads.MaxBytes())
	assert.True(t, c.Auth.Enabled)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.Contains(t, c.Auth.SkipPaths, "/api/login")
	assert.False(t, c.Scheduler.Import.Enabled)
}

func TestInitConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9000
  reload_config: false
judilibre:
  page_size: 20
uploads:
  max_size_mb: 5
`), 0o600))

	t.Setenv("SOCIOJUSTICE_JUDILIBRE_MAX_PAGES", "3")

	require.NoError(t, configs.InitConfig(dir))

	c := configs.GetConfig()
	assert.Equal(t, 9000, c.Server.Port)
	assert.Equal(t, 20, c.Judilibre.PageSize)
	assert.Equal(t, 3, c.Judilibre.MaxPages)
	assert.EqualValues(t, 5<<20, c.Uploads.MaxBytes())
	assert.Equal(t, configs.DefaultHost, c.Server.Host)
	assert.Equal(t, file, configs.GetViper().ConfigFileUsed())
}

func TestInitConfigWithoutFile(t *testing.T) {
	require.NoError(t, configs.InitConfig(t.TempDir()))
	c := configs.GetConfig()
	assert.Equal(t, configs.DefaultPort, c.Server.Port)
	assert.Equal(t, configs.DefaultJudilibrePageSize, c.Judilibre.PageSize)
	assert.Contains(t, c.Auth.SkipPaths, "/api/login")
	assert.NotEmpty(t, c.DB.Type)
}

func TestDefaultsPassValidation(t *testing.T) {
	c := configs.Defaults()
	require.NoError(t, rule.ValidateStruct(&c))

	c.Judilibre.PageSize = 500
	assert.Error(t, rule.ValidateStruct(&c))
}

func TestRedacted(t *testing.T) {
	c := configs.Defaults()
	c.Judilibre.ClientSecret = "s3cr3t"
	c.DB.Password = ""

	r := c.Redacted()
	assert.Equal(t, "******", r.Judilibre.ClientSecret)
	assert.Equal(t, "******", r.Auth.JWTSecret)
	assert.Empty(t, r.DB.Password)
	assert.Equal(t, "s3cr3t", c.Judilibre.ClientSecret)
}

func TestDBDSN(t *testing.T) {
	c := configs.DBConfig{Type: configs.Pg, Host: "db", Port: 5432, User: "sj", Password: "p@ss", Database: "cases", SSLMode: "disable"}
	dsn, err := c.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://sj:p%40ss@db:5432/cases?sslmode=disable", dsn)

	c.Type = configs.MariaDB
	dsn, err = c.DSN()
	require.NoError(t, err)
	assert.Equal(t, "sj:p@ss@tcp(db:5432)/cases?charset=utf8mb4&parseTime=True&loc=UTC", dsn)

	c.Type = configs.SQLite
	dsn, err = c.DSN()
	require.NoError(t, err)
	assert.Equal(t, "file:cases.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)

	c.Type = "oracle"
	_, err = c.DSN()
	assert.Error(t, err)
	assert.Empty(t, configs.DBType("oracle").Family())
}

func TestReloadHook(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: info\n"), 0o600))
	require.NoError(t, configs.InitConfig(dir))
	before := configs.GetConfig()

	got := make(chan string, 1)
	configs.OnReload(func(c configs.AppConfig) {
		select {
		case got <- c.Log.Level:
		default:
		}
	})

	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: debug\n"), 0o600))

	select {
	case lvl := <-got:
		assert.Equal(t, "debug", lvl)
		assert.Eventually(t, func() bool { return configs.GetConfig().Log.Level == "debug" }, time.Second, 10*time.Millisecond)
		// 旧实例不被改写，读者拿到的始终是完整快照.
		assert.Equal(t, "info", before.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
