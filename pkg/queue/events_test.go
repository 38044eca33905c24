package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/queue"
)

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()

	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })

	return ps
}

func enabledEvents() configs.EventsConfig {
	cfg := configs.Defaults().Events
	cfg.Enabled = true

	return cfg
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()

	select {
	case m := <-ch:
		m.Ack()
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestEventsDecisionImported(t *testing.T) {
	ps := newPubSub(t)
	ch, err := ps.Subscribe(context.Background(), queue.TopicDecisionImported)
	require.NoError(t, err)

	ev := queue.NewEvents(ps, enabledEvents())
	ev.DecisionImported(context.Background(), queue.DecisionImportedPayload{
		Trigger:     "api",
		Fetched:     3,
		Imported:    2,
		Skipped:     1,
		ExternalIDs: []string{"A", "B"},
	})

	env, err := queue.ParseWatermillMessage[queue.DecisionImportedPayload](receive(t, ch))
	require.NoError(t, err)
	assert.Equal(t, queue.TopicDecisionImported, env.Header.Topic)
	assert.Equal(t, queue.Producer, env.Header.Producer)
	assert.Equal(t, queue.PayloadVersionV1, env.Header.Version)
	assert.Equal(t, 2, env.Payload.Imported)
	assert.Equal(t, []string{"A", "B"}, env.Payload.ExternalIDs)
}

func TestEventsDisabled(t *testing.T) {
	ps := newPubSub(t)
	ch, err := ps.Subscribe(context.Background(), queue.TopicArchiveCreated)
	require.NoError(t, err)

	cfg := enabledEvents()
	cfg.Archive.Created = false

	queue.NewEvents(ps, cfg).ArchiveCreated(context.Background(), queue.ArchiveCreatedPayload{ArchiveID: "x"})
	queue.NewEvents(ps, configs.EventsConfig{}).ArchiveCreated(context.Background(), queue.ArchiveCreatedPayload{ArchiveID: "y"})

	var nilEvents *queue.Events
	nilEvents.ArchiveCreated(context.Background(), queue.ArchiveCreatedPayload{ArchiveID: "z"})

	select {
	case m := <-ch:
		t.Fatalf("unexpected message %s", m.UUID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNilEventsIsNoop(t *testing.T) {
	var ev *queue.Events

	ctx := context.Background()

	assert.NotPanics(t, func() {
		ev.DecisionImported(ctx, queue.DecisionImportedPayload{Trigger: "cron"})
		ev.KeywordsUpdated(ctx, queue.KeywordsUpdatedPayload{DecisionID: "d1", Keywords: []string{"a"}})
		ev.ArchiveCreated(ctx, queue.ArchiveCreatedPayload{ArchiveID: "a1"})
	})

	assert.NotPanics(t, func() {
		queue.NewEvents(nil, enabledEvents()).KeywordsUpdated(ctx, queue.KeywordsUpdatedPayload{DecisionID: "d1"})
	})
}

func TestEncodeDecode(t *testing.T) {
	msg := queue.Message[queue.KeywordsUpdatedPayload]{
		Header:  queue.NewEventHeader(queue.TopicDecisionKeywordsUpdated, queue.WithTraceID("abc")),
		Payload: queue.KeywordsUpdatedPayload{DecisionID: "d1", Keywords: []string{"bail", "travail"}},
	}

	b, err := queue.Encode(msg)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"topic":"sj.decision.keywords_updated"`)

	got, err := queue.Decode[queue.KeywordsUpdatedPayload](b)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Header.TraceID)
	assert.Equal(t, msg.Payload, got.Payload)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := queue.Decode[queue.ArchiveCreatedPayload]([]byte(`{"header":{"topic":"sj.archive.created","version":"v9"},"payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnsupportedVersion)

	got, err := queue.Decode[queue.ArchiveCreatedPayload]([]byte(`{"header":{"topic":"sj.archive.created"},"payload":{"title":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, "x", got.Payload.Title)
}

func TestWatermillMetadata(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicArchiveCreated, queue.ArchiveCreatedPayload{}, queue.WithProducer("cli"))
	require.NoError(t, err)

	assert.Equal(t, queue.TopicArchiveCreated, msg.Metadata.Get("topic"))
	assert.Equal(t, "cli", msg.Metadata.Get("producer"))
	assert.Equal(t, queue.PayloadVersionV1, msg.Metadata.Get("version"))
	assert.Empty(t, msg.Metadata.Get("trace_id"))
}
