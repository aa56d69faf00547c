package broker

import (
	"context"
	"fmt"

	"github.com/oggyb/muzz-chat/internal/config"
	"github.com/redis/go-redis/v9"
)

// RedisBroker carries row-insert events between clients over Redis pub/sub.
type RedisBroker struct {
	Client *redis.Client
}

// NewRedisBroker initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisBroker(cfg *config.Config) *RedisBroker {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisBroker{Client: redis.NewClient(opts)}
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.Client.Ping(ctx).Err()
}

// Publish sends payload to every current subscriber of channel.
func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.Client.Publish(ctx, channel, payload).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so anything
// published afterwards is delivered to the returned PubSub.
func (b *RedisBroker) Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	ps := b.Client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}
	return ps, nil
}

func (b *RedisBroker) Close() error {
	return b.Client.Close()
}
