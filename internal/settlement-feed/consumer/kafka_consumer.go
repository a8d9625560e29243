package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/settlement-feed/pubsub"
	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// Cache guarda settlements para leitura do feed
type Cache interface {
	SetLatest(ctx context.Context, e events.BetSettled) error
	PushRecent(ctx context.Context, e events.BetSettled) error
}

// Broadcaster publica payloads no canal de fanout do WebSocket
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome settlements do Kafka, atualiza o cache do feed e repassa
// para o canal de broadcast
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Cache       Cache
	Broadcaster Broadcaster
	Channel     string

	OnConsumed  func()       // métricas (counter++)
	OnCached    func()       // métricas
	OnBroadcast func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
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
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.BetSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			p.reportError("decode")
			continue
		}

		p.process(ctx, ev)
	}
}

// process atualiza o cache do feed e faz o broadcast de um settlement
func (p *Processor) process(ctx context.Context, ev events.BetSettled) {
	// Atualiza o último settlement e a lista de recentes no Redis
	if err := p.Cache.SetLatest(ctx, ev); err != nil {
		p.Log.Warn("redis set failed", zap.Error(err))
		p.reportError("cache")
		// não bloqueia o broadcast se falhar o cache
	} else if err := p.Cache.PushRecent(ctx, ev); err != nil {
		p.Log.Warn("redis push failed", zap.Error(err))
		p.reportError("cache")
	} else if p.OnCached != nil {
		p.OnCached() // callback de métrica: cache atualizado
	}

	// Broadcast para o fanout WebSocket
	upd := pubsub.WSUpdate{Owner: ev.Owner, Payload: ev}
	b, err := json.Marshal(upd)
	if err != nil {
		p.reportError("encode")
		return
	}
	if err := p.Broadcaster.Publish(ctx, p.Channel, b); err != nil {
		p.Log.Warn("broadcast failed", zap.Error(err))
		p.reportError("broadcast")
		return
	}
	if p.OnBroadcast != nil {
		p.OnBroadcast() // callback de métrica: broadcast publicado
	}
}

func (p *Processor) reportError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
