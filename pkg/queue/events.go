package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/sociojustice/pkg/configs"
	nlog "github.com/yeisme/sociojustice/pkg/log"
)

// Producer 事件头中的生产者名.
const Producer = "sociojustice"

// Events 按 events 配置发布领域事件.
// nil 或未启用时各方法为空操作；发布失败只记日志，不影响调用方.
type Events struct {
	pub message.Publisher
	cfg configs.EventsConfig
}

// NewEvents 创建事件发布器，pub 为 nil 时等同于关闭.
func NewEvents(pub message.Publisher, cfg configs.EventsConfig) *Events {
	return &Events{pub: pub, cfg: cfg}
}

// enabled 在读取配置前先判空，nil 接收者安全.
func (e *Events) enabled(topic func(configs.EventsConfig) bool) bool {
	return e != nil && e.pub != nil && e.cfg.Enabled && topic(e.cfg)
}

// DecisionImported 发布 sj.decision.imported.
func (e *Events) DecisionImported(ctx context.Context, payload DecisionImportedPayload) {
	if e.enabled(func(c configs.EventsConfig) bool { return c.Decision.Imported }) {
		publish(ctx, e.pub, TopicDecisionImported, payload)
	}
}

// KeywordsUpdated 发布 sj.decision.keywords_updated.
func (e *Events) KeywordsUpdated(ctx context.Context, payload KeywordsUpdatedPayload) {
	if e.enabled(func(c configs.EventsConfig) bool { return c.Decision.KeywordsUpdated }) {
		publish(ctx, e.pub, TopicDecisionKeywordsUpdated, payload)
	}
}

// ArchiveCreated 发布 sj.archive.created.
func (e *Events) ArchiveCreated(ctx context.Context, payload ArchiveCreatedPayload) {
	if e.enabled(func(c configs.EventsConfig) bool { return c.Archive.Created }) {
		publish(ctx, e.pub, TopicArchiveCreated, payload)
	}
}

func publish[T any](ctx context.Context, pub message.Publisher, topic string, payload T) {
	opts := []HeaderOption{WithProducer(Producer)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, WithTraceID(sc.TraceID().String()))
	}

	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err == nil {
		msg.SetContext(ctx)
		err = pub.Publish(topic, msg)
	}

	if err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}
