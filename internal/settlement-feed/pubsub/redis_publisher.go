package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelBetSettlements = "bet_settlements_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão para o WS do bet-feed-service
type WSUpdate struct {
	Owner   string      `json:"owner"`
	Payload interface{} `json:"payload"`
}
