package clock

import (
	"context"
	"sync/atomic"
	"time"
)

// Ticker simula a altura de bloco da cadeia: parte de uma base e avança uma
// unidade por intervalo. O gate de devolução do motor conta blocos, não
// tempo de parede, então a cadência fica configurável (BLOCK_TIME_MS).
type Ticker struct {
	height atomic.Int64
}

func NewTicker(base int64) *Ticker {
	t := &Ticker{}
	t.height.Store(base)
	return t
}

// Height retorna a altura corrente.
func (t *Ticker) Height() int64 { return t.height.Load() }

// Run avança a altura até o contexto encerrar. Roda numa goroutine do main.
func (t *Ticker) Run(ctx context.Context, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.height.Add(1)
		}
	}
}
