package pubsub

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Publisher sends punishment events to the fleet. Publishing is fire and
// forget: there is no acknowledgment and no retry.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber delivers fleet punishment events to a handler.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Event)) error
}

// RedisChannel carries punishment events over a single Redis pub/sub
// channel shared by every node.
type RedisChannel struct {
	client *redis.Client
}

func NewRedisChannel(ctx context.Context, addr, password string, db int) (*RedisChannel, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisChannel{client: client}, nil
}

func (c *RedisChannel) Close() error {
	return c.client.Close()
}

func (c *RedisChannel) Publish(ctx context.Context, e Event) error {
	data, err := EncodeEvent(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := c.client.Publish(ctx, ChannelName, data).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe blocks delivering events to handler until ctx is cancelled or
// the subscription drops. Undecodable payloads are logged and skipped; one
// bad publisher must not wedge the node.
func (c *RedisChannel) Subscribe(ctx context.Context, handler func(Event)) error {
	sub := c.client.Subscribe(ctx, ChannelName)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			e, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				log.Printf("[pubsub] dropping bad event: %v", err)
				continue
			}
			handler(e)
		}
	}
}
