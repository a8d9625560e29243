package consumer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/engine"
	sharedkafka "github.com/chaindice/dice-bet-platform-poc/internal/shared/kafka"
	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

const settleRetries = 3

// Settler liquida uma aposta a partir do fulfillment do oráculo.
type Settler interface {
	Settle(ctx context.Context, requestToken string, randomness []byte) (engine.Bet, error)
}

// Processor consome fulfillments do tópico vrf_fulfilled e aplica cada um
// no motor. Callbacks de métricas podem ser usadas para monitorar as etapas.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Engine Settler
	DLQ    *kafka.Writer // opcional

	OnConsumed func()         // métricas (counter++)
	OnSettled  func(win bool) // métricas por desfecho
	OnError    func(string)   // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.reportError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.VRFFulfilled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid fulfillment", zap.Error(err))
			p.reportError("decode")
			continue
		}
		randomness, err := hex.DecodeString(ev.RandomnessHex)
		if err != nil || len(randomness) == 0 {
			p.Log.Warn("invalid randomness hex", zap.String("requestToken", ev.RequestToken), zap.Error(err))
			p.reportError("decode")
			continue
		}

		if err := p.settleOne(ctx, ev.RequestToken, randomness, m.Value); err != nil {
			p.Log.Error("settle failed", zap.String("requestToken", ev.RequestToken), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// settleOne aplica um fulfillment no motor:
// 1. Rejeições terminais (replay, token alheio) são registradas e descartadas
// 2. Falha transitória (ex.: treasury fora do ar) tenta de novo com backoff
// 3. Esgotados os retries, a mensagem crua vai para a DLQ
func (p *Processor) settleOne(ctx context.Context, token string, randomness, raw []byte) error {
	var bet engine.Bet
	var err error
	for attempt := 0; ; attempt++ {
		bet, err = p.Engine.Settle(ctx, token, randomness)
		if err == nil {
			break
		}
		if errors.Is(err, engine.ErrAlreadySettled) || errors.Is(err, engine.ErrUnknownBet) {
			p.Log.Warn("fulfillment dropped", zap.String("requestToken", token), zap.Error(err))
			p.reportError("rejected")
			return nil
		}
		if attempt == settleRetries {
			if p.DLQ != nil {
				_ = sharedkafka.WriteJSON(ctx, p.DLQ, token, raw)
			}
			p.reportError("settle")
			return err
		}
		time.Sleep(time.Duration(300*(attempt+1)) * time.Millisecond)
	}

	if p.OnSettled != nil {
		p.OnSettled(bet.WinAmount > 0)
	}
	return nil
}

func (p *Processor) reportError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
