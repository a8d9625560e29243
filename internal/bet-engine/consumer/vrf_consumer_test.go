package consumer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/engine"
)

// scriptedSettler devolve os erros na ordem em que foram agendados e
// depois passa a liquidar com sucesso.
type scriptedSettler struct {
	errs  []error
	calls int
	bet   engine.Bet
}

func (s *scriptedSettler) Settle(context.Context, string, []byte) (engine.Bet, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return engine.Bet{}, err
		}
	}
	return s.bet, nil
}

func TestSettleOneSuccess(t *testing.T) {
	settler := &scriptedSettler{bet: engine.Bet{ID: 1, WinAmount: 500}}
	var wins, errStages []string

	p := &Processor{
		Log:    zap.NewNop(),
		Engine: settler,
		OnSettled: func(win bool) {
			wins = append(wins, fmt.Sprint(win))
		},
		OnError: func(stage string) { errStages = append(errStages, stage) },
	}

	err := p.settleOne(context.Background(), "tok-1", []byte{0x02}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, settler.calls)
	assert.Equal(t, []string{"true"}, wins)
	assert.Empty(t, errStages)
}

func TestSettleOneDropsTerminalRejections(t *testing.T) {
	for _, terminal := range []error{engine.ErrAlreadySettled, engine.ErrUnknownBet} {
		settler := &scriptedSettler{errs: []error{fmt.Errorf("%w: id 1", terminal)}}
		var stages []string

		p := &Processor{
			Log:     zap.NewNop(),
			Engine:  settler,
			OnError: func(stage string) { stages = append(stages, stage) },
		}

		// replay e token alheio não voltam para a fila nem para a DLQ
		err := p.settleOne(context.Background(), "tok-1", []byte{0x02}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, settler.calls)
		assert.Equal(t, []string{"rejected"}, stages)
	}
}

func TestSettleOneRetriesTransientFailures(t *testing.T) {
	transient := fmt.Errorf("%w: payout: treasury down", engine.ErrTransfer)
	settler := &scriptedSettler{
		errs: []error{transient, transient},
		bet:  engine.Bet{ID: 2, WinAmount: 0},
	}
	var wins []bool

	p := &Processor{
		Log:       zap.NewNop(),
		Engine:    settler,
		OnSettled: func(win bool) { wins = append(wins, win) },
	}

	err := p.settleOne(context.Background(), "tok-2", []byte{0x01}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, settler.calls, "two failures then success")
	assert.Equal(t, []bool{false}, wins)
}

func TestSettleOneGivesUpAfterRetries(t *testing.T) {
	transient := errors.New("treasury down")
	settler := &scriptedSettler{
		errs: []error{transient, transient, transient, transient, transient},
	}
	var stages []string

	p := &Processor{
		Log:     zap.NewNop(),
		Engine:  settler,
		OnError: func(stage string) { stages = append(stages, stage) },
	}

	err := p.settleOne(context.Background(), "tok-3", []byte{0x01}, []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, settleRetries+1, settler.calls)
	assert.Equal(t, []string{"settle"}, stages)
}
