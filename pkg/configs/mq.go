package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS   MQType = "nats"
	MQTypeMemory MQType = "memory"

	DefaultMQURL         = "localhost:4222"
	DefaultMQUser        = ""
	DefaultMQPassword    = ""
	DefaultMaxReconnects = 5                  // 默认最大重连次数.
	DefaultReconnectWait = 5                  // 默认重连等待时间（秒）.
	DefaultMQClientID    = "sociojustice-api" // 默认客户端ID

	DefaultMemoryBuffer = 64 // 内存队列每个订阅的缓冲区大小
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type   MQType         `mapstructure:"type"   rule:"oneof=nats memory"`
	Common MQCommonConfig `mapstructure:"common"`
	NATS   MQNATSConfig   `mapstructure:"nats"`
	Memory MQMemoryConfig `mapstructure:"memory"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"            rule:"omitempty,url"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	SubjectPrefix          string `mapstructure:"subject_prefix"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	QueueGroupPrefix       string `mapstructure:"queue_group_prefix"`
	SubscribersCount       int    `mapstructure:"subscribers_count" rule:"min=0"`
}

// MQMemoryConfig 进程内队列配置，基于 watermill gochannel.
type MQMemoryConfig struct {
	Buffer int64 `mapstructure:"buffer" rule:"min=0"`
	// Persistent 为 true 时晚到的订阅者也能收到历史消息
	Persistent bool `mapstructure:"persistent"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeMemory)

	// Common 默认值
	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", DefaultMQUser)
	v.SetDefault("mq.common.password", DefaultMQPassword)
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)

	// NATS 默认值
	v.SetDefault("mq.nats.jetstream_enabled", false)
	v.SetDefault("mq.nats.subject_prefix", "")
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "sociojustice-durable")
	v.SetDefault("mq.nats.queue_group_prefix", "")
	v.SetDefault("mq.nats.subscribers_count", 1)

	// Memory 默认值
	v.SetDefault("mq.memory.buffer", DefaultMemoryBuffer)
	v.SetDefault("mq.memory.persistent", false)
}
