// Package mq 的 NATS 实现.
// 配置从 configs.MQConfig 读取：mq.common 为连接参数，mq.nats 为 JetStream 与主题前缀.
package mq

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/sociojustice/pkg/configs"
)

const (
	DefaultDrainTimeout   = 30 * time.Second
	DefaultFlusherTimeout = 10 * time.Second
)

// init 注册 NATS 工厂.
func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.Common.ClientID),
		nc.MaxReconnects(cfg.Common.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.Common.ReconnectWait) * time.Second),
		nc.DrainTimeout(DefaultDrainTimeout),
		nc.FlusherTimeout(DefaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.Common.User != "" {
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg *configs.MQConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	js := cfg.NATS
	jsCfg := nats.JetStreamConfig{
		Disabled: !js.JetStreamEnabled,
	}

	if js.JetStreamEnabled {
		jsCfg.AutoProvision = js.JetStreamAutoProvision
		jsCfg.TrackMsgId = js.JetStreamTrackMsgID
		jsCfg.AckAsync = js.JetStreamAckAsync
		jsCfg.DurablePrefix = js.JetStreamDurablePrefix

		logger.Info("JetStream enabled", watermill.LogFields{
			"auto_provision": js.JetStreamAutoProvision,
			"track_msg_id":   js.JetStreamTrackMsgID,
			"ack_async":      js.JetStreamAckAsync,
			"durable_prefix": js.JetStreamDurablePrefix,
		})
	}

	return jsCfg
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(cfg)
	jsCfg := buildJetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.Common.URL,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.Common.URL,
		QueueGroupPrefix: cfg.NATS.QueueGroupPrefix,
		SubscribersCount: cfg.NATS.SubscribersCount,
		NatsOptions:      opts,
		JetStream:        jsCfg,
		Unmarshaler:      marshaler,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	if prefix := cfg.NATS.SubjectPrefix; prefix != "" {
		return &prefixedPublisher{Publisher: pub, prefix: prefix},
			&prefixedSubscriber{Subscriber: sub, prefix: prefix}, nil
	}

	return pub, sub, nil
}

// prefixedPublisher 给主题加上部署前缀，多个环境可共用一个 NATS 集群.
type prefixedPublisher struct {
	message.Publisher
	prefix string
}

func (p *prefixedPublisher) Publish(topic string, msgs ...*message.Message) error {
	return p.Publisher.Publish(p.prefix+topic, msgs...)
}

type prefixedSubscriber struct {
	message.Subscriber
	prefix string
}

func (s *prefixedSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.Subscriber.Subscribe(ctx, s.prefix+topic)
}
