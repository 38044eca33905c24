// Package app 提供应用程序的初始化、装配与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/jobs"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/router"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/metrics"
	"github.com/yeisme/sociojustice/pkg/middleware"
	"github.com/yeisme/sociojustice/pkg/rule"
	"github.com/yeisme/sociojustice/pkg/scheduler"
	"github.com/yeisme/sociojustice/pkg/tracing"
)


// App 持有 HTTP 引擎与需要在退出时释放的资源.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
	metrics   *http.Server
}

// Bootstrap 初始化日志、校验器、追踪、指标与存储，供 serve 与一次性命令共用.
// 调用前需要先执行 configs.InitConfig.
func Bootstrap(ctx context.Context) (*storage.Manager, error) {
	config := configs.GetConfig()

	log.Init()
	// 先于任何请求绑定，把 rule 标签装入 gin 的校验引擎
	rule.Engine()

	if err := rule.ValidateStruct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return manager, nil
}

// NewUpstream 按配置构造判决来源，启用令牌缓存时使用 KV 存储令牌.
func NewUpstream(config *configs.AppConfig, manager *storage.Manager) (judilibre.Source, error) {
	opts := []judilibre.Option{judilibre.WithCircuitBreaker(config.Judilibre.Breaker)}

	if config.Judilibre.CacheToken && manager != nil && manager.KV != nil {
		opts = append(opts, judilibre.WithTokenStore(judilibre.NewKVTokenStore(manager.KV, config.Judilibre.TokenTTL)))
	}

	return judilibre.NewSource(config.Judilibre, opts...)
}

// NewApp 装配完整的 HTTP 服务.
func NewApp(ctx context.Context) (*App, error) {
	manager, err := Bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	config := configs.GetConfig()
	l := log.Logger()

	upstream, err := NewUpstream(config, manager)
	if err != nil {
		return nil, fmt.Errorf("init upstream: %w", err)
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, manager, upstream, config.Scheduler); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	metricsSrv, err := metrics.StartMetricsServer(config.Metrics)
	if err != nil {
		return nil, err
	}

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		// PDF 已压缩，文件下载不再 gzip
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/archives/[^/]+/file$`})),
	)

	router.Register(engine, router.Deps{
		Config:    config,
		Manager:   manager,
		Upstream:  upstream,
		Tokens:    auth.NewManager(config.Auth),
		Scheduler: sched,
	})

	return &App{
		Engine:    engine,
		config:    config,
		manager:   manager,
		scheduler: sched,
		metrics:   metricsSrv,
	}, nil
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := log.Logger()
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.Timeout,
	}

	a.scheduler.Start()

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("addr", srv.Addr).Str("version", configs.AppVersion).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	errs := []error{runErr, srv.Shutdown(shutdownCtx), a.scheduler.Shutdown()}

	if a.metrics != nil {
		errs = append(errs, a.metrics.Shutdown(shutdownCtx))
	}

	errs = append(errs, a.manager.Close(), tracing.ShutdownTracer(shutdownCtx))

	return errors.Join(errs...)
}
