package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.EventPublisher = (*RedisPublisher)(nil)

// RedisClient subconjunto de *redis.Client usado para publicar.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publica cada evento como JSON en un canal Redis (PUBLISH) para consumidores externos.
type RedisPublisher struct {
	client  RedisClient
	channel string
}

// NewRedisPublisher construye el publicador sobre un cliente existente.
func NewRedisPublisher(client RedisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Publish serializa y publica los eventos; se detiene en el primer error.
func (p *RedisPublisher) Publish(ctx context.Context, events ...inventory.ChangeEvent) error {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("serializar evento: %w", err)
		}
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			return fmt.Errorf("publicar en %s: %w", p.channel, err)
		}
	}
	return nil
}
