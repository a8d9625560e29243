package engine

import "fmt"

// Totals agrega os contadores de risco mantidos pelo ledger.
// Cada campo é sempre igual à soma da grandeza por aposta que o define.
type Totals struct {
	LockedInBets  int64 `json:"lockedInBets"`  // soma dos payouts reservados das apostas abertas
	SumWinAmount  int64 `json:"sumWinAmount"`  // acumulado de winAmount - amount nas vitórias
	SumLossAmount int64 `json:"sumLossAmount"` // acumulado de amount nas derrotas
	OpenBetCount  int64 `json:"openBetCount"`
	BetCount      int64 `json:"betCount"`
}

// Ledger guarda as apostas em memória, em ordem de inserção, e mantém os
// agregados de risco de forma incremental. Append-only: identificadores são
// densos, crescentes e nunca reutilizados.
type Ledger struct {
	bets []Bet

	lockedInBets  int64
	sumWinAmount  int64
	sumLossAmount int64
	openBetCount  int64
}

func NewLedger() *Ledger { return &Ledger{} }

// NextID retorna o identificador que a próxima aposta vai receber.
func (l *Ledger) NextID() int64 { return int64(len(l.bets)) }

// Append insere a aposta, atribui o próximo id sequencial e reserva o
// passivo dela em lockedInBets.
func (l *Ledger) Append(b Bet) int64 {
	b.ID = int64(len(l.bets))
	l.bets = append(l.bets, b)
	l.lockedInBets += b.PossibleWin
	l.openBetCount++
	return b.ID
}

// Get retorna uma cópia da aposta pelo id.
func (l *Ledger) Get(id int64) (Bet, error) {
	if id < 0 || id >= int64(len(l.bets)) {
		return Bet{}, fmt.Errorf("%w: id %d", ErrUnknownBet, id)
	}
	return l.bets[id], nil
}

// MarkSettled grava os campos de liquidação uma única vez e atualiza os
// agregados: libera o passivo reservado — integral, independente do
// resultado — e acumula o ganho ou a perda do apostador.
func (l *Ledger) MarkSettled(id int64, outcome int, winAmount int64, randomSeed []byte) error {
	if id < 0 || id >= int64(len(l.bets)) {
		return fmt.Errorf("%w: id %d", ErrUnknownBet, id)
	}
	b := &l.bets[id]
	if b.Settled {
		return fmt.Errorf("%w: id %d", ErrAlreadySettled, id)
	}

	b.Settled = true
	b.Outcome = outcome
	b.WinAmount = winAmount
	b.RandomSeed = append([]byte(nil), randomSeed...)

	l.lockedInBets -= b.PossibleWin
	if winAmount > 0 {
		l.sumWinAmount += winAmount - b.Amount
	} else {
		l.sumLossAmount += b.Amount
	}
	l.openBetCount--
	return nil
}

// LockedInBets retorna o passivo total reservado das apostas abertas.
func (l *Ledger) LockedInBets() int64 { return l.lockedInBets }

// Len retorna o total de apostas já inseridas.
func (l *Ledger) Len() int64 { return int64(len(l.bets)) }

// Totals retorna um snapshot dos agregados.
func (l *Ledger) Totals() Totals {
	return Totals{
		LockedInBets:  l.lockedInBets,
		SumWinAmount:  l.sumWinAmount,
		SumLossAmount: l.sumLossAmount,
		OpenBetCount:  l.openBetCount,
		BetCount:      int64(len(l.bets)),
	}
}
