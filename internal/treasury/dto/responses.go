package dto

type BalanceResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance int64  `json:"balance"`
}

type TransferResponse struct {
	Status string `json:"status"`
}
