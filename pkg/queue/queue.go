// Package queue 定义领域事件的消息封装与主题.
//
// 概览
//   - 统一的消息封装：Message[Payload] = Header + Payload
//   - 主题常量见 topics.go，负载结构体见 payloads.go，发布入口见 events.go
//   - JSON 编解码（bytedance/sonic），跨语言易解析
//
// 消息信封 JSON 结构
//
//	{
//	  "header": {
//	    "topic": "sj.decision.imported",
//	    "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
//	    "producer": "sociojustice",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 订阅示例
//
//	ch, _ := client.Subscribe(ctx, queue.TopicDecisionImported)
//	for m := range ch {
//		env, _ := queue.ParseWatermillMessage[queue.DecisionImportedPayload](m)
//		m.Ack()
//	}
package queue

import (
	"errors"
	"fmt"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// PayloadVersionV1 当前负载版本.
const PayloadVersionV1 = "v1"

// ErrUnsupportedVersion 消息负载版本不被当前代码理解.
var ErrUnsupportedVersion = errors.New("queue: unsupported payload version")

// HeaderOption 修改事件头.
type HeaderOption func(*EventHeader)

// WithTraceID 记录发布时所在的 trace.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 记录生产者服务名.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// NewEventHeader 以当前 UTC 时间和 v1 版本构造事件头.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	h := EventHeader{Topic: topic, OccurredAt: time.Now().UTC(), Version: PayloadVersionV1}
	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// Encode 序列化消息信封.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 反序列化消息信封，版本为空按 v1 处理.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]
	if err := sonic.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode event: %w", err)
	}

	switch m.Header.Version {
	case "", PayloadVersionV1:
		return m, nil
	default:
		return m, fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Header.Version)
	}
}

// NewWatermillMessage 把负载装进信封，并把头部字段复制到 watermill 元数据，
// 订阅方不解包也能按 topic、trace_id 过滤.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	env := Message[T]{Header: NewEventHeader(topic, opts...), Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewULID(), data)

	for k, v := range map[string]string{
		"topic":       env.Header.Topic,
		"trace_id":    env.Header.TraceID,
		"producer":    env.Header.Producer,
		"occurred_at": env.Header.OccurredAt.Format(time.RFC3339Nano),
		"version":     env.Header.Version,
	} {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出信封与泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
