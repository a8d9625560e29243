package dto

type PlaceBetResponse struct {
	BetID        int64  `json:"betId"`
	Status       string `json:"status"` // AWAITING_RANDOMNESS
	PossibleWin  int64  `json:"possible_win"`
	RequestToken string `json:"request_token"`
}

type BetResponse struct {
	BetID           int64  `json:"betId"`
	Owner           string `json:"owner"`
	Amount          int64  `json:"amount"`
	Modulo          int    `json:"modulo"`
	RollUnder       int    `json:"roll_under"`
	Mask            uint64 `json:"mask,omitempty"`
	PossibleWin     int64  `json:"possible_win"`
	PlacementHeight int64  `json:"placement_height"`
	Status          string `json:"status"` // AWAITING_RANDOMNESS | SETTLED | REFUNDED
	Outcome         *int   `json:"outcome,omitempty"`
	WinAmount       *int64 `json:"win_amount,omitempty"`
	RandomSeed      string `json:"random_seed,omitempty"`
}

type StatsResponse struct {
	Balance       int64 `json:"balance"` // saldo custodiado em CHIP
	LockedInBets  int64 `json:"lockedInBets"`
	SumWinAmount  int64 `json:"sumWinAmount"`
	SumLossAmount int64 `json:"sumLossAmount"`
	OpenBetCount  int64 `json:"openBetCount"`
	BetCount      int64 `json:"betCount"`
}

type SweepResponse struct {
	Swept int64 `json:"swept"`
}
