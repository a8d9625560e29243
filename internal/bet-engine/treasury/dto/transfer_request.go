package dto

type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Asset  string `json:"asset"`
	Amount int64  `json:"amount"`
	Ref    string `json:"ref"` // idempotência no treasury
}
