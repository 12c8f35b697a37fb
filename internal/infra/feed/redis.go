package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and checks it with a ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("feed: ping: %w", err)
	}
	return client, nil
}

// Redis fans change signals out over pub/sub so every process sharing the
// store sees them.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "kiosk"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) channel(topic Topic) string {
	return r.prefix + ":" + string(topic)
}

func (r *Redis) Publish(ctx context.Context, topic Topic) error {
	return r.client.Publish(ctx, r.channel(topic), time.Now().UTC().Format(time.RFC3339Nano)).Err()
}

func (r *Redis) Subscribe(ctx context.Context, topic Topic) (<-chan struct{}, error) {
	pubsub := r.client.Subscribe(ctx, r.channel(topic))
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("feed: subscribe %s: %w", topic, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
