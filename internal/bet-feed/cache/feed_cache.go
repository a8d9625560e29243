package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// Cache lê o feed de settlements escrito pelo settlement-feed-worker
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

const (
	keyLatest = "bets:settled:latest"
	keyRecent = "bets:settled:recent"
)

// GetLatest busca o último settlement; ok=false quando ainda não há nenhum
func (c *Cache) GetLatest(ctx context.Context, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyLatest).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

// Recent retorna até limit settlements, do mais novo para o mais velho
func (c *Cache) Recent(ctx context.Context, limit int64) ([]events.BetSettled, error) {
	vals, err := c.R.LRange(ctx, keyRecent, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]events.BetSettled, 0, len(vals))
	for _, v := range vals {
		var e events.BetSettled
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue // entrada corrompida não derruba o feed
		}
		out = append(out, e)
	}
	return out, nil
}
