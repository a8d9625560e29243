package oracle

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// dedupeTTL limita a janela de memória do guard de entrega única
const dedupeTTL = 24 * time.Hour

// FulfillmentSink publica o fulfillment de um pedido de aleatoriedade
type FulfillmentSink interface {
	Publish(ctx context.Context, e events.VRFFulfilled) error
}

// Oracle consome pedidos de aleatoriedade e publica exatamente um fulfillment
// por request token. Callbacks de métricas podem ser usadas para monitoramento
// de cada etapa.
type Oracle struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Guard  Dedupe
	Sink   FulfillmentSink
	Secret []byte
	Delay  time.Duration // simula a latência do round-trip do oráculo

	OnConsumed  func()       // métricas (counter++)
	OnFulfilled func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo dos pedidos de VRF
func (o *Oracle) Run(ctx context.Context) error {
	for {
		m, err := o.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			o.Log.Warn("kafka read failed", zap.Error(err))
			o.reportError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if o.OnConsumed != nil {
			o.OnConsumed() // callback de métrica: pedido consumido
		}

		var req events.VRFRequested
		if err := json.Unmarshal(m.Value, &req); err != nil {
			o.Log.Warn("invalid message", zap.Error(err))
			o.reportError("decode")
			continue
		}
		if req.RequestToken == "" {
			o.Log.Warn("request without token")
			o.reportError("decode")
			continue
		}

		if err := o.Fulfill(ctx, req); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.Log.Error("fulfill failed", zap.String("request_token", req.RequestToken), zap.Error(err))
			o.reportError("fulfill")
		}
	}
}

// Fulfill entrega a aleatoriedade de um pedido, no máximo uma vez por token.
// O guard absorve redeliveries do Kafka: quem não ganhar o Once não publica
// de novo. Falha antes de publicar devolve o guard para a próxima tentativa.
func (o *Oracle) Fulfill(ctx context.Context, req events.VRFRequested) error {
	won, err := o.Guard.Once(ctx, req.RequestToken, dedupeTTL)
	if err != nil {
		return err
	}
	if !won {
		o.Log.Warn("request already fulfilled", zap.String("request_token", req.RequestToken))
		return nil
	}

	// 1) Espera simulando o intervalo entre pedido e callback do oráculo
	if o.Delay > 0 {
		select {
		case <-ctx.Done():
			o.release(req.RequestToken)
			return ctx.Err()
		case <-time.After(o.Delay):
		}
	}

	// 2) Sorteio determinístico por token+seed
	randomness := Draw(o.Secret, req.RequestToken, req.SeedHex)

	// 3) Publica o fulfillment; em falha, devolve o guard p/ redelivery
	out := events.VRFFulfilled{
		RequestToken:  req.RequestToken,
		RandomnessHex: hex.EncodeToString(randomness),
		TsUnixMs:      time.Now().UnixMilli(),
	}
	if err := o.Sink.Publish(ctx, out); err != nil {
		o.release(req.RequestToken)
		return err
	}

	if o.OnFulfilled != nil {
		o.OnFulfilled()
	}
	o.Log.Info("randomness delivered", zap.String("request_token", req.RequestToken))
	return nil
}

// release devolve o guard de um token cujo fulfillment não foi publicado
func (o *Oracle) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.Guard.Release(ctx, token); err != nil {
		o.Log.Error("failed to release dedupe guard", zap.String("request_token", token), zap.Error(err))
	}
}

func (o *Oracle) reportError(stage string) {
	if o.OnError != nil {
		o.OnError(stage)
	}
}
