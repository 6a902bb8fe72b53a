package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisPersister struct {
	client redisKVClient
	key    string
}

// NewRedisPersister comparte la sesion entre procesos via Redis.
func NewRedisPersister(client *redis.Client) Persister {
	if client == nil {
		return nil
	}
	return &redisPersister{
		client: client,
		key:    "allowance:session:" + StorageKey,
	}
}

func (p *redisPersister) Load(ctx context.Context) ([]byte, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save no pone TTL: los tokens son opacos y no se revisa expiracion.
func (p *redisPersister) Save(ctx context.Context, data []byte) error {
	return p.client.Set(ctx, p.key, data, 0).Err()
}

func (p *redisPersister) Delete(ctx context.Context) error {
	return p.client.Del(ctx, p.key).Err()
}
