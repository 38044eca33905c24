// Package mq 提供基于 Watermill 的统一消息队列接口，判决导入、关键词更新、档案创建等事件经由这里发布.
//
// 支持的 MQ 类型：
//   - memory：进程内 gochannel，默认值，适合单实例部署与测试
//   - nats：NATS（可选 JetStream 持久化）
//
// 使用示例：
//
//	client, err := mq.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), []byte("hello"))
//	err = client.Publish(ctx, queue.TopicDecisionImported, msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/sociojustice/pkg/configs"
	nlog "github.com/yeisme/sociojustice/pkg/log"
	appmetrics "github.com/yeisme/sociojustice/pkg/metrics"
)

// ErrNotInitialized 客户端未初始化.
var ErrNotInitialized = errors.New("mq client not initialized")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factories = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的消息队列类型，按名称排序.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	kind       configs.MQType
}

// Type 返回底层实现类型.
func (c *Client) Type() configs.MQType {
	return c.kind
}

// Publisher 返回底层 Publisher，供 queue 包的事件函数使用.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return ErrNotInitialized
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, ErrNotInitialized
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭资源.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 按全局配置初始化消息队列（单例）.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig()
		mqInst, mqErr = Open(ctx, &cfg.MQ, cfg.Metrics.Enabled)
	})

	return mqInst, mqErr
}

// Open 按给定配置创建客户端，withMetrics 为 true 时把收发指标挂到应用的 Prometheus 注册表.
func Open(ctx context.Context, cfg *configs.MQConfig, withMetrics bool) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := newWatermillLogger()

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if withMetrics {
		builder := metrics.NewPrometheusMetricsBuilder(appmetrics.GetRegistry(), "sociojustice", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Bool("metrics", withMetrics).Msg("mq client initialized")

	return &Client{publisher: pub, subscriber: sub, kind: cfg.Type}, nil
}
