package services

import (
	"context"
	"encoding/json"
	"log"

	"mentorbot/internal/models"
)

// EventChannel is the shared pub/sub channel name.
const EventChannel = "events"

// EventBus decouples reply completion from progress bookkeeping.
// Delivery is at-most-once: events published with no active subscriber
// are lost by design.
type EventBus interface {
	Publish(ctx context.Context, event models.Event) error
	// Subscribe returns a channel of decoded events. The channel closes
	// when ctx is cancelled. Malformed payloads are logged and skipped.
	Subscribe(ctx context.Context) (<-chan models.Event, error)
}

// RedisEventBus publishes and consumes JSON-encoded events on a Redis channel.
type RedisEventBus struct {
	redis *RedisCache
}

// NewRedisEventBus creates an event bus on the shared Redis connection.
func NewRedisEventBus(redis *RedisCache) *RedisEventBus {
	return &RedisEventBus{redis: redis}
}

// Publish sends one event to the shared channel.
func (b *RedisEventBus) Publish(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Client().Publish(ctx, EventChannel, data).Err()
}

// Subscribe starts a subscription and decodes incoming payloads.
func (b *RedisEventBus) Subscribe(ctx context.Context) (<-chan models.Event, error) {
	pubsub := b.redis.Client().Subscribe(ctx, EventChannel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.Event)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("⚠️ [PUBSUB] Failed to unmarshal event: %v", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	log.Printf("📡 [PUBSUB] Subscribed to channel: %s", EventChannel)
	return out, nil
}

// LocalEventBus is an in-process bus for redis-less runs and tests.
// The buffer is bounded; publishing to a full buffer drops the event,
// matching the at-most-once contract.
type LocalEventBus struct {
	ch chan models.Event
}

// NewLocalEventBus creates an in-process event bus.
func NewLocalEventBus(buffer int) *LocalEventBus {
	return &LocalEventBus{ch: make(chan models.Event, buffer)}
}

func (b *LocalEventBus) Publish(_ context.Context, event models.Event) error {
	select {
	case b.ch <- event:
	default:
		log.Printf("⚠️ [PUBSUB] Local bus full, event dropped (type=%s user=%s)", event.Type, event.UserID)
	}
	return nil
}

func (b *LocalEventBus) Subscribe(ctx context.Context) (<-chan models.Event, error) {
	out := make(chan models.Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-b.ch:
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
