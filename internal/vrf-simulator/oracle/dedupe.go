package oracle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dedupe é o guard de entrega única por request token: Once retorna true
// apenas na primeira chamada para um token; Release devolve o token quando
// o fulfillment não chegou a ser publicado.
type Dedupe interface {
	Once(ctx context.Context, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, token string) error
}

// RedisDedupe implementa o guard com SETNX + TTL
type RedisDedupe struct {
	Client *redis.Client
}

func (d RedisDedupe) Once(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	return d.Client.SetNX(ctx, dedupeKey(token), 1, ttl).Result()
}

func (d RedisDedupe) Release(ctx context.Context, token string) error {
	return d.Client.Del(ctx, dedupeKey(token)).Err()
}

// dedupeKey gera a chave Redis do guard de um request token
func dedupeKey(token string) string { return "vrf:fulfilled:" + token }
