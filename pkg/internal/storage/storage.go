// Package storage 聚合数据库、键值存储、消息队列与档案文件存储.
//
// Example:
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	repos := mgr.Repositories()
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	dbc "github.com/yeisme/sociojustice/pkg/internal/storage/db"
	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
	kvc "github.com/yeisme/sociojustice/pkg/internal/storage/kv"
	mqc "github.com/yeisme/sociojustice/pkg/internal/storage/mq"
	nlog "github.com/yeisme/sociojustice/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB    *dbc.Client
	KV    *kvc.Client
	MQ    *mqc.Client
	Files files.Store
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = open(ctx)
		if mgrErr == nil {
			nlog.Logger().Info().Str("files", mgr.Files.Backend()).Msg("storage manager initialized")
		}
	})

	return mgr, mgrErr
}

func open(ctx context.Context) (*Manager, error) {
	cfg := configs.GetConfig()
	m := &Manager{}

	var err error

	if m.DB, err = dbc.New(ctx); err != nil {
		return nil, err
	}

	if m.KV, err = kvc.NewKVClient(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init kv: %w", err)
	}

	if m.MQ, err = mqc.New(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}

	if m.Files, err = files.New(ctx, cfg); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init uploads storage: %w", err)
	}

	return m, nil
}

// Repositories 基于当前数据库连接构造仓储.
func (m *Manager) Repositories() *repository.Repositories {
	return repository.NewGorm(m.DB.DB)
}

// Close 释放所有连接.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		if sqlDB, err := m.DB.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}

	return errors.Join(errs...)
}
