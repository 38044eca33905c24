// Package scheduler 包装 gocron/v2，按名称管理任务并记录每个任务最近一次的运行结果.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/metrics"
)

// ErrJobNotFound 任务名不存在.
var ErrJobNotFound = errors.New("job not found")

// JobStatus 任务当前状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobFunc 任务体.返回错误或 panic 都会把任务标记为 error，下次成功后恢复.
type JobFunc func(ctx context.Context) error

// JobInfo 管理接口展示的任务快照.
type JobInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	CronExpr     string        `json:"cron_expr"`
	NextRun      time.Time     `json:"next_run"`
	LastRun      time.Time     `json:"last_run"`
	LastSuccess  time.Time     `json:"last_success,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	Runs         int           `json:"runs"`
	Status       JobStatus     `json:"status"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

type entry struct {
	job  gocron.Job
	info JobInfo
}

// Scheduler 按名称登记的 cron 任务集合.
type Scheduler struct {
	cron   gocron.Scheduler
	mu     sync.RWMutex
	byName map[string]*entry
	logger *zerolog.Logger
}

// NewScheduler 创建调度器，需调用 Start 后才开始按 cron 触发.
func NewScheduler(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		cron:   cron,
		byName: make(map[string]*entry),
		logger: log.Component("scheduler"),
	}, nil
}

// AddCron 登记一个 5 段 cron 任务.同一任务上一轮未结束时，本轮顺延.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byName[name]; dup {
		return fmt.Errorf("job %s already registered", name)
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(s.run, ctx, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	s.byName[name] = &entry{job: job, info: JobInfo{
		ID:        job.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
	}}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("job registered")

	return nil
}

// run 执行任务体并记录结果.
func (s *Scheduler) run(ctx context.Context, name string, fn JobFunc) {
	start := time.Now()
	s.update(name, func(i *JobInfo) {
		i.Status = StatusRunning
		i.LastRun = start
	})

	err := safeCall(ctx, fn)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"

		s.logger.Error().Err(err).Str("job", name).Dur("took", elapsed).Msg("job failed")
	}

	metrics.JobRuns.WithLabelValues(name, outcome).Inc()

	s.update(name, func(i *JobInfo) {
		i.Runs++
		i.LastDuration = elapsed

		if err != nil {
			i.Status, i.Error = StatusError, err.Error()
			return
		}

		i.Status, i.Error, i.LastSuccess = StatusScheduled, "", time.Now()
	})
}

func safeCall(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job: %v", r)
		}
	}()

	return fn(ctx)
}

func (s *Scheduler) update(name string, fn func(*JobInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byName[name]; ok {
		fn(&e.info)
	}
}

func (s *Scheduler) lookup(name string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return e, nil
}

// RunNow 立即触发一次，不改变 cron 计划.
func (s *Scheduler) RunNow(name string) error {
	e, err := s.lookup(name)
	if err != nil {
		return err
	}

	return e.job.RunNow()
}

// RemoveJobByName 注销任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	e, err := s.lookup(name)
	if err != nil {
		return err
	}

	if err := s.cron.RemoveJob(e.job.ID()); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.byName, name)
	s.mu.Unlock()

	return nil
}

// snapshot 复制任务信息并填入下次运行时间.
func snapshot(e *entry) JobInfo {
	info := e.info
	if next, err := e.job.NextRun(); err == nil {
		info.NextRun = next
	}

	return info
}

// GetJobInfoByName 返回单个任务的快照.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return JobInfo{}, false
	}

	return snapshot(e), true
}

// GetJobInfos 返回全部任务快照，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.byName))
	for _, e := range s.byName {
		out = append(out, snapshot(e))
	}

	slices.SortFunc(out, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })

	return out
}

// Start 开始按计划触发任务.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Shutdown 停止触发并等待运行中的任务返回.
func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}
