package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAppendAssignsDenseIDs(t *testing.T) {
	l := NewLedger()

	for i := int64(0); i < 5; i++ {
		assert.Equal(t, i, l.NextID())
		id := l.Append(Bet{Owner: "alice", Amount: 100, PossibleWin: 190})
		assert.Equal(t, i, id)
	}

	assert.Equal(t, int64(5), l.Len())
	assert.Equal(t, int64(5*190), l.LockedInBets())
	assert.Equal(t, int64(5), l.Totals().OpenBetCount)

	got, err := l.Get(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
	assert.False(t, got.Settled)
}

func TestLedgerGetUnknown(t *testing.T) {
	l := NewLedger()
	l.Append(Bet{Amount: 100, PossibleWin: 190})

	_, err := l.Get(-1)
	assert.ErrorIs(t, err, ErrUnknownBet)

	_, err = l.Get(1)
	assert.ErrorIs(t, err, ErrUnknownBet)
}

func TestLedgerMarkSettledWin(t *testing.T) {
	l := NewLedger()
	id := l.Append(Bet{Owner: "alice", Amount: 100, PossibleWin: 190})

	seed := []byte{0xca, 0xfe}
	require.NoError(t, l.MarkSettled(id, 3, 190, seed))

	got, err := l.Get(id)
	require.NoError(t, err)
	assert.True(t, got.Settled)
	assert.Equal(t, 3, got.Outcome)
	assert.Equal(t, int64(190), got.WinAmount)
	assert.Equal(t, seed, got.RandomSeed)

	totals := l.Totals()
	assert.Zero(t, totals.LockedInBets, "reserved payout released in full")
	assert.Equal(t, int64(190-100), totals.SumWinAmount)
	assert.Zero(t, totals.SumLossAmount)
	assert.Zero(t, totals.OpenBetCount)
	assert.Equal(t, int64(1), totals.BetCount)
}

func TestLedgerMarkSettledLoss(t *testing.T) {
	l := NewLedger()
	id := l.Append(Bet{Owner: "alice", Amount: 100, PossibleWin: 190})

	require.NoError(t, l.MarkSettled(id, 1, 0, []byte{0x01}))

	totals := l.Totals()
	assert.Zero(t, totals.LockedInBets)
	assert.Zero(t, totals.SumWinAmount)
	assert.Equal(t, int64(100), totals.SumLossAmount)
	assert.Zero(t, totals.OpenBetCount)
}

func TestLedgerMarkSettledTwice(t *testing.T) {
	l := NewLedger()
	id := l.Append(Bet{Owner: "alice", Amount: 100, PossibleWin: 190})

	require.NoError(t, l.MarkSettled(id, 0, 190, nil))
	before := l.Totals()

	err := l.MarkSettled(id, 0, 190, nil)
	assert.ErrorIs(t, err, ErrAlreadySettled)
	assert.Equal(t, before, l.Totals(), "replay must not move the counters")

	err = l.MarkSettled(99, 0, 0, nil)
	assert.ErrorIs(t, err, ErrUnknownBet)
}

func TestLedgerTotalsMatchPerBetSums(t *testing.T) {
	l := NewLedger()

	// três apostas: vitória, derrota e uma ainda aberta
	win := l.Append(Bet{Owner: "alice", Amount: 1_000, PossibleWin: 1_980})
	loss := l.Append(Bet{Owner: "bob", Amount: 500, PossibleWin: 990})
	l.Append(Bet{Owner: "carol", Amount: 200, PossibleWin: 396})

	require.NoError(t, l.MarkSettled(win, 0, 1_980, nil))
	require.NoError(t, l.MarkSettled(loss, 1, 0, nil))

	var locked, sumWin, sumLoss, open int64
	for id := int64(0); id < l.Len(); id++ {
		b, err := l.Get(id)
		require.NoError(t, err)
		if !b.Settled {
			locked += b.PossibleWin
			open++
			continue
		}
		if b.WinAmount > 0 {
			sumWin += b.WinAmount - b.Amount
		} else {
			sumLoss += b.Amount
		}
	}

	totals := l.Totals()
	assert.Equal(t, locked, totals.LockedInBets)
	assert.Equal(t, sumWin, totals.SumWinAmount)
	assert.Equal(t, sumLoss, totals.SumLossAmount)
	assert.Equal(t, open, totals.OpenBetCount)
	assert.Equal(t, l.Len(), totals.BetCount)
}
