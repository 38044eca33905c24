// Package context 在请求 context 中携带存储、上游来源与调度器，
// handler 和 service 通过这里取用，而不是依赖全局变量.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	dbc "github.com/yeisme/sociojustice/pkg/internal/storage/db"
	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
	kvc "github.com/yeisme/sociojustice/pkg/internal/storage/kv"
	mqc "github.com/yeisme/sociojustice/pkg/internal/storage/mq"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

type key int

const (
	managerKey key = iota
	upstreamKey
	schedulerKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// WithStorageManager 携带存储管理器.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey, mgr)
}

// GetManager 取存储管理器，未设置时为 nil.
func GetManager(ctx context.Context) *storage.Manager {
	return value[*storage.Manager](ctx, managerKey)
}

// GetDBClient 取数据库客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.DB
	}

	return nil
}

// GetMQClient 取消息队列客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.MQ
	}

	return nil
}

// GetKVClient 取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.KV
	}

	return nil
}

// GetFiles 取档案文件存储.
func GetFiles(ctx context.Context) files.Store { //nolint:ireturn
	if mgr := GetManager(ctx); mgr != nil && mgr.Files != nil {
		return mgr.Files
	}

	return nil
}

// WithUpstream 携带判决来源.
func WithUpstream(ctx context.Context, src judilibre.Source) context.Context {
	return context.WithValue(ctx, upstreamKey, src)
}

// GetUpstream 取判决来源.
func GetUpstream(ctx context.Context) judilibre.Source { //nolint:ireturn
	return value[judilibre.Source](ctx, upstreamKey)
}

// WithScheduler 携带调度器.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, schedulerKey, sched)
}

// GetScheduler 取调度器，未运行时为 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	return value[*scheduler.Scheduler](ctx, schedulerKey)
}

// WithTraceContext 给 logger 加上当前 span 的 trace_id 与 span_id.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
