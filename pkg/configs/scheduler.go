package configs

import "github.com/spf13/viper"

const (
	DefaultImportCron         = "30 3 * * *"
	DefaultImportLookbackDays = 1
)

// SchedulerConfig 定时任务配置.
type SchedulerConfig struct {
	Import ScheduledImportConfig `mapstructure:"import"`
}

// ScheduledImportConfig 定时从上游导入最近的判决.
type ScheduledImportConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Cron         string `mapstructure:"cron"`
	LookbackDays int    `mapstructure:"lookback_days" rule:"min=1,max=366"`
	Jurisdiction string `mapstructure:"jurisdiction"`
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.import.enabled", false)
	v.SetDefault("scheduler.import.cron", DefaultImportCron)
	v.SetDefault("scheduler.import.lookback_days", DefaultImportLookbackDays)
	v.SetDefault("scheduler.import.jurisdiction", "")
}
