package events

import "time"

// Evento emitido quando uma aposta expirada é devolvida ao apostador.
type BetRefunded struct {
	BetID  int64     `json:"betId"`
	Owner  string    `json:"owner"`
	Amount int64     `json:"amount"`
	Ts     time.Time `json:"ts"`
}
