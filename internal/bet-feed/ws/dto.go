package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Owner: conta apostadora; "*" assina o firehose com todos os settlements
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	Owner string `json:"owner"` // requerido em subscribe/unsubscribe
}

// SettlementUpdate representa um settlement enviado para clientes WebSocket
type SettlementUpdate struct {
	Owner   string      `json:"owner"`
	Payload interface{} `json:"payload"`
}
