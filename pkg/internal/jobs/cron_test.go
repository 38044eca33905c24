package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/judilibre"
	"github.com/yeisme/sociojustice/pkg/internal/storage"
	"github.com/yeisme/sociojustice/pkg/scheduler"
)

func TestImportWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("CET", 3600))

	req := ImportWindow(now, 1)
	assert.Equal(t, "2024-02-29", req.DateDecisionMin)
	assert.Equal(t, "2024-03-01", req.DateDecisionMax)

	req = ImportWindow(now, 0)
	assert.Equal(t, "2024-02-29", req.DateDecisionMin)

	req = ImportWindow(now, 7)
	assert.Equal(t, "2024-02-23", req.DateDecisionMin)
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sched.Shutdown() })

	disabled := configs.SchedulerConfig{}
	require.NoError(t, RegisterCronJobs(nil, nil, nil, disabled))

	enabled := configs.SchedulerConfig{Import: configs.ScheduledImportConfig{Enabled: true, Cron: "30 3 * * *", LookbackDays: 1}}
	require.Error(t, RegisterCronJobs(sched, nil, nil, enabled))

	require.NoError(t, RegisterCronJobs(sched, &storage.Manager{}, judilibre.NewFixtureFromResults(), enabled))

	info, ok := sched.GetJobInfoByName(JobScheduledImport)
	require.True(t, ok)
	assert.Equal(t, "30 3 * * *", info.CronExpr)
}
