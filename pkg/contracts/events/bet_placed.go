package events

type BetPlaced struct {
	BetID        int64  `json:"bet_id"`
	Owner        string `json:"owner"`
	Amount       int64  `json:"amount"`
	Modulo       int    `json:"modulo"`
	RollUnder    int    `json:"roll_under"`
	Mask         uint64 `json:"mask"`
	PossibleWin  int64  `json:"possible_win"`
	RequestToken string `json:"request_token"` // token de correlação com o oráculo VRF
	PlacedHeight int64  `json:"placed_height"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
