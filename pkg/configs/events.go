package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Decision DecisionEventsConfig `mapstructure:"decision"`
	Archive  ArchiveEventsConfig  `mapstructure:"archive"`
}

// DecisionEventsConfig 判决领域的事件开关。
type DecisionEventsConfig struct {
	Imported        bool `mapstructure:"imported"`
	KeywordsUpdated bool `mapstructure:"keywords_updated"`
}

// ArchiveEventsConfig 档案领域的事件开关。
type ArchiveEventsConfig struct {
	Created bool `mapstructure:"created"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认关闭，部署消息队列后再开启
	v.SetDefault("events.enabled", false)

	v.SetDefault("events.decision.imported", true)
	v.SetDefault("events.decision.keywords_updated", true)
	v.SetDefault("events.archive.created", true)
}
