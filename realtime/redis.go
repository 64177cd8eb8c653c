package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

type RedisHub struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisHub(logger logger.Logger, addr string) (*RedisHub, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("could not reach redis", "addr", addr, "err", err.Error())
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisHub{client: client, logger: logger}, nil
}

func (h *RedisHub) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := h.client.Publish(ctx, channelName(change.Kind), payload).Err(); err != nil {
		h.logger.Error("failed to publish change", "kind", change.Kind, "id", change.ID, "err", err.Error())
		return fmt.Errorf("failed to publish change: %w", err)
	}

	return nil
}

func (h *RedisHub) Subscribe(ctx context.Context, kind db.Kind) (<-chan Change, func(), error) {
	pubsub := h.client.Subscribe(ctx, channelName(kind))
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", kind, err)
	}

	out := make(chan Change, subscriberBuffer)
	done := make(chan struct{})
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					h.logger.Warn("dropping malformed change", "channel", msg.Channel, "err", err.Error())
					continue
				}
				select {
				case out <- change:
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
			if err := pubsub.Close(); err != nil {
				h.logger.Warn("failed to close subscription", "kind", kind, "err", err.Error())
			}
		})
	}

	return out, cancel, nil
}

func (h *RedisHub) Close() error {
	return h.client.Close()
}
