// Package metrics 定义业务 Prometheus 指标，并在独立端口提供 /metrics.
//
// 指标变量在包加载时即可使用，InitMetrics 之前的记录不会丢失，只是不会被导出.
// /metrics 同时汇总默认注册表，GORM 插件与 Go 运行时指标都注册在那里.
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		return err
//	}
//	srv, err := metrics.StartMetricsServer(cfg.Metrics)
package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof" // 注册 /debug/pprof 到 DefaultServeMux
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/log"
)

var (
	// RequestCounter HTTP 请求数，endpoint 为路由模板.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP 请求耗时.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// InFlightRequests 正在处理的请求数.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests being served",
		},
	)

	// UpstreamRequests Judilibre 调用次数，按操作与结果区分.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judilibre_requests_total",
			Help: "Total number of requests sent to the Judilibre API",
		},
		[]string{"operation", "status"},
	)

	// UpstreamDuration Judilibre 调用耗时.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "judilibre_request_duration_seconds",
			Help:    "Judilibre API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// ImportRecords 导入的判决条目数，outcome 为 inserted/skipped/failed.
	ImportRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decision_import_records_total",
			Help: "Decisions processed by the import writer",
		},
		[]string{"outcome"},
	)

	// ArchiveUploads 档案上传次数，outcome 为 created/rejected/failed.
	ArchiveUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_uploads_total",
			Help: "Archive uploads by outcome",
		},
		[]string{"outcome"},
	)

	// ArchiveBytes 成功上传的 PDF 大小.
	ArchiveBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "archive_upload_bytes",
			Help:    "Size of stored archive PDFs in bytes",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 7),
		},
	)

	// JobRuns 定时任务执行次数，outcome 为 ok/error.
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job executions by outcome",
		},
		[]string{"job", "outcome"},
	)

	registry     = prometheus.NewRegistry()
	registerOnce sync.Once
	registerErr  error
)

const readHeaderTimeout = 5 * time.Second

// InitMetrics 把业务指标注册到私有注册表，带上命名空间与常量标签.重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	registerOnce.Do(func() {
		var reg prometheus.Registerer = registry
		if len(config.Labels) > 0 {
			reg = prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), reg)
		}

		if config.Namespace != "" {
			reg = prometheus.WrapRegistererWithPrefix(config.Namespace+"_", reg)
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, InFlightRequests,
			UpstreamRequests, UpstreamDuration, ImportRecords,
			ArchiveUploads, ArchiveBytes, JobRuns,
		} {
			if err := reg.Register(c); err != nil {
				registerErr = fmt.Errorf("register collector: %w", err)
				return
			}
		}
	})

	return registerErr
}

// Handler 返回 /metrics 处理器，汇总私有注册表与默认注册表.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}

	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{Registry: registry})
}

// StartMetricsServer 在独立端口启动 /metrics（可选 pprof），未启用时返回 nil.
func StartMetricsServer(config configs.MetricsConfig) (*http.Server, error) {
	if !config.Enabled {
		return nil, nil
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/metrics", gin.WrapH(Handler()))

	if config.Pprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	ln, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint %s: %w", config.Endpoint, err)
	}

	srv := &http.Server{Handler: engine, ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		log.Component("metrics").Info().Str("addr", ln.Addr().String()).Msg("metrics server listening")

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Component("metrics").Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return srv, nil
}

// GetRegistry 返回私有注册表，watermill 等组件把指标注册到这里.
func GetRegistry() *prometheus.Registry {
	return registry
}
