package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// RedisCache guarda o último settlement e uma lista limitada de recentes
// Client: cliente Redis
// TTL: tempo de expiração do último settlement
// Keep: tamanho máximo da lista de recentes
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
	Keep   int64
}

// NewRedisCache cria uma instância de cache Redis do feed de settlements
func NewRedisCache(c *redis.Client, ttl time.Duration, keep int64) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl, Keep: keep}
}

const (
	keyLatest = "bets:settled:latest"
	keyRecent = "bets:settled:recent"
)

// SetLatest armazena o último settlement liquidado com TTL definido
func (r *RedisCache) SetLatest(ctx context.Context, e events.BetSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, keyLatest, b, r.TTL).Err()
}

// PushRecent empilha o settlement na lista de recentes e apara no limite
func (r *RedisCache) PushRecent(ctx context.Context, e events.BetSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := r.Client.LPush(ctx, keyRecent, b).Err(); err != nil {
		return err
	}
	return r.Client.LTrim(ctx, keyRecent, 0, r.Keep-1).Err()
}
