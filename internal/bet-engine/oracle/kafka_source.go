package oracle

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// KafkaSource publica pedidos de sorteio no tópico vrf_requests.
// O token gerado aqui é a chave de correlação: o fulfillment volta com ele
// no tópico vrf_fulfilled, consumido pelo mesmo serviço.
type KafkaSource struct {
	Writer *kafka.Writer
}

func NewKafkaSource(w *kafka.Writer) *KafkaSource {
	return &KafkaSource{Writer: w}
}

func (s *KafkaSource) Request(ctx context.Context, seed []byte) (string, error) {
	token := uuid.New().String()
	b, _ := json.Marshal(events.VRFRequested{
		RequestToken: token,
		SeedHex:      hex.EncodeToString(seed),
		TsUnixMs:     time.Now().UnixMilli(),
	})
	if err := s.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(token), Value: b}); err != nil {
		return "", err
	}
	return token, nil
}
