package events

import "time"

// Evento emitido pelo bet-engine-service após o callback do oráculo VRF.
type BetSettled struct {
	BetID      int64     `json:"betId"`
	Owner      string    `json:"owner"`
	Amount     int64     `json:"amount"`
	Modulo     int       `json:"modulo"`
	RollUnder  int       `json:"rollUnder"`
	Mask       uint64    `json:"mask,omitempty"`
	Outcome    int       `json:"outcome"`
	WinAmount  int64     `json:"winAmount"` // 0 quando a aposta perde
	RandomSeed string    `json:"randomSeed"`
	Ts         time.Time `json:"ts"`
}
