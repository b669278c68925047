package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan VersionEvent) VersionEvent {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return VersionEvent{}
}

func TestLocalBroker(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()

	ch, cancel, err := b.Subscribe(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, VersionEvent{Type: VersionCreated, ProjectID: "p2"}))
	require.NoError(t, b.Publish(ctx, VersionEvent{Type: VersionActivated, ProjectID: "p1", VersionID: "v2"}))

	evt := receive(t, ch)
	assert.Equal(t, VersionActivated, evt.Type)
	assert.Equal(t, "v2", evt.VersionID)

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	// publishing with no subscribers is fine
	require.NoError(t, b.Publish(ctx, VersionEvent{Type: VersionUpdated, ProjectID: "p1"}))
}

func TestLocalBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()

	_, cancel, err := b.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			_ = b.Publish(ctx, VersionEvent{Type: VersionUpdated, ProjectID: "p1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestRedisBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	b := NewRedisBroker(client, nil)

	ch, cancel, err := b.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(ctx, VersionEvent{
		Type: VersionUpdated, ProjectID: "p1", VersionID: "v1", VersionNumber: 1, Status: "completed",
	}))

	evt := receive(t, ch)
	assert.Equal(t, VersionUpdated, evt.Type)
	assert.Equal(t, "v1", evt.VersionID)
	assert.Equal(t, 1, evt.VersionNumber)
	assert.Equal(t, "completed", evt.Status)
}
