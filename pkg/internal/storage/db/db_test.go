package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/storage/db"
)

func TestFamiliesIncludeDefaults(t *testing.T) {
	assert.Equal(t, []string{"mysql", "postgres", "sqlite"}, db.Families())
}

func TestOpenSQLiteMigrates(t *testing.T) {
	client, err := db.Open(context.Background(), configs.DBConfig{
		Type:            configs.SQLite,
		Database:        ":memory:",
		AutoMigrate:     true,
		MaxIdleConns:    0,
		ConnMaxLifetime: time.Nanosecond,
	}, false, false)
	require.NoError(t, err)

	sqlDB, err := client.DB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Ping(context.Background()))

	for _, m := range model.All() {
		assert.True(t, client.Migrator().HasTable(m))
	}

	// 连接空闲后内存库仍在.
	assert.Equal(t, 1, sqlDB.Stats().Idle)

	require.NoError(t, client.Create(&model.Tag{Label: "bail"}).Error)

	var n int64
	require.NoError(t, client.Model(&model.Tag{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOpenUnknownType(t *testing.T) {
	_, err := db.Open(context.Background(), configs.DBConfig{Type: "oracle", Database: "x"}, false, false)
	assert.ErrorContains(t, err, "unsupported database type")
}
