package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/gommon/log"
)

const redisChannel = "wemakedo:realtime"

// RedisBroker relays events through Redis pub/sub so that every instance's
// Hub sees changes made on any instance.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisBroker(redisURL string, hub *Hub) *RedisBroker {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// Bare host:port.
		opts = &redis.Options{Addr: redisURL}
	}
	return &RedisBroker{client: redis.NewClient(opts), hub: hub}
}

func (r *RedisBroker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return r.client.Publish(ctx, redisChannel, payload).Err()
}

// Run forwards Redis messages into the local hub until ctx is done.
func (r *RedisBroker) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", redisChannel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warnf("realtime: discarding malformed redis payload: %v", err)
				continue
			}
			_ = r.hub.Publish(ctx, event)
		}
	}
}

func (r *RedisBroker) Close() error {
	return r.client.Close()
}
