package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const eventChannelPrefix = "site:events:" // Pub/Sub channel per project: site:events:{project_id}

// RedisBroker shares events between API replicas over Redis Pub/Sub.
type RedisBroker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBroker(client *redis.Client, log *zap.Logger) *RedisBroker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) channel(projectID string) string {
	return eventChannelPrefix + projectID
}

func (b *RedisBroker) Publish(ctx context.Context, evt VersionEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel(evt.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, projectID string) (<-chan VersionEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel(projectID))
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	msgs := pubsub.Channel()
	out := make(chan VersionEvent, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt VersionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.log.Warn("dropping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- evt:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}
