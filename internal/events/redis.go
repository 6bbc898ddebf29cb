package events

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dhabalabs/pos-server/internal/domain/order"
)

// Channel is the pub/sub channel all order events are published to. Display
// clients subscribe to it and resync over HTTP when they miss messages.
const Channel = "pos.orders"

// RedisPublisher broadcasts order events over Redis pub/sub. Delivery is
// best effort: a failed publish is logged and dropped.
type RedisPublisher struct {
	client *redis.Client
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to Redis and verifies the connection with a ping.
func NewRedisPublisher(ctx context.Context, addr, password string, db int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, events ...order.Event) {
	for _, ev := range events {
		payload := encodeEvent(ev)
		if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
			zctx.From(ctx).Warn("Publish event",
				zap.String("type", string(ev.Type)),
				zap.String("order_id", ev.OrderID),
				zap.Error(err),
			)
		}
	}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
