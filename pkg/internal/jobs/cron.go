// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/sociojustice/pkg/configs"
	ctxPkg "github.com/yeisme/sociojustice/pkg/context"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/service"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/internal/types"
	"github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

// RegisterCronJobs 按配置注册定时导入，未启用时不注册任何任务.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, src judilibre.Source, cfg configs.SchedulerConfig) error {
	if !cfg.Import.Enabled {
		return nil
	}

	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil || src == nil {
		return errors.New("storage manager and upstream source are required")
	}

	// service 从 context 中获取存储管理器与上游来源
	baseCtx := ctxPkg.WithUpstream(ctxPkg.WithStorageManager(context.Background(), mgr), src)

	return sched.AddCron(baseCtx, JobScheduledImport, cfg.Import.Cron, func(ctx context.Context) error {
		return runScheduledImport(ctx, cfg.Import, time.Now())
	})
}

// runScheduledImport 导入最近 LookbackDays 天的判决.
func runScheduledImport(ctx context.Context, cfg configs.ScheduledImportConfig, now time.Time) error {
	l := log.Logger().With().Str("job", JobScheduledImport).Logger()

	req := ImportWindow(now, cfg.LookbackDays)
	req.Jurisdiction = cfg.Jurisdiction

	resp, err := service.NewImportService(ctx).Import(ctx, req, service.TriggerScheduler)
	if err != nil {
		l.Error().Err(err).Str("from", req.DateDecisionMin).Str("to", req.DateDecisionMax).Msg("scheduled import failed")
		return err
	}

	l.Info().
		Str("from", req.DateDecisionMin).
		Str("to", req.DateDecisionMax).
		Int("fetched", resp.Fetched).
		Int("imported", resp.Imported).
		Msg("scheduled import done")

	return nil
}

// ImportWindow 返回以 now 所在 UTC 日期为终点、向前 days 天的导入窗口.
func ImportWindow(now time.Time, days int) *types.ImportRequest {
	days = max(days, 1)
	end := now.UTC()

	return &types.ImportRequest{
		DateDecisionMin: end.AddDate(0, 0, -days).Format(types.DateLayout),
		DateDecisionMax: end.Format(types.DateLayout),
	}
}
