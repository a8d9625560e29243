package producer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// KafkaPublisher publica as notificações de ciclo de vida das apostas, um
// writer por tópico. A chave é o betId, preservando a ordem por aposta.
type KafkaPublisher struct {
	Placed   *kafka.Writer
	Settled  *kafka.Writer
	Refunded *kafka.Writer
}

func NewKafkaPublisher(placed, settled, refunded *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Placed: placed, Settled: settled, Refunded: refunded}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	b, _ := json.Marshal(e)
	return p.Placed.WriteMessages(ctx, kafka.Message{Key: betKey(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)
	return p.Settled.WriteMessages(ctx, kafka.Message{Key: betKey(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishBetRefunded(ctx context.Context, e events.BetRefunded) error {
	b, _ := json.Marshal(e)
	return p.Refunded.WriteMessages(ctx, kafka.Message{Key: betKey(e.BetID), Value: b})
}

func betKey(id int64) []byte { return []byte(strconv.FormatInt(id, 10)) }
