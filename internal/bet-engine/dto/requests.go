package dto

type PlaceBetRequest struct {
	Owner  string `json:"owner"`
	Amount int64  `json:"amount"` // stake em unidades mínimas de CHIP
	Modulo int    `json:"modulo"`
	// Máscara de resultados vencedores quando modulo <= 40; limiar
	// (vence se outcome < bet_mask) quando modulo > 40.
	BetMask uint64 `json:"bet_mask"`
}

type WithdrawRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type SweepRequest struct {
	To string `json:"to"`
}

type SetParamRequest struct {
	Value int64 `json:"value"`
}
