package mq_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/storage/mq"
)

func TestRegisteredTypes(t *testing.T) {
	assert.Equal(t, []configs.MQType{configs.MQTypeMemory, configs.MQTypeNATS}, mq.GetRegisteredMQTypes())
}

func TestOpenUnsupported(t *testing.T) {
	_, err := mq.Open(context.Background(), &configs.MQConfig{Type: "kafka"}, false)
	require.Error(t, err)
}

func TestMemoryRoundTrip(t *testing.T) {
	cfg := configs.Defaults().MQ
	require.Equal(t, configs.MQTypeMemory, cfg.Type)

	client, err := mq.Open(context.Background(), &cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.Subscribe(ctx, "sj.test")
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "sj.test", message.NewMessage(watermill.NewUUID(), []byte("hello"))))

	select {
	case m := <-ch:
		assert.Equal(t, "hello", string(m.Payload))
		m.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestNilClient(t *testing.T) {
	var c *mq.Client
	assert.ErrorIs(t, c.Publish(context.Background(), "x"), mq.ErrNotInitialized)
	assert.NoError(t, c.Close())
}
