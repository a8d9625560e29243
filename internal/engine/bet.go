package engine

// Bet é o registro de uma aposta no ledger.
// Imutável após a inserção, exceto os campos de liquidação, que transitam
// exatamente uma vez de zerados para preenchidos.
type Bet struct {
	ID              int64
	Owner           string
	Amount          int64  // stake em unidades mínimas do ativo
	Modulo          int    // tamanho do espaço de resultados (2..100)
	RollUnder       int    // quantidade de resultados vencedores
	Mask            uint64 // bitmask dos resultados vencedores; 0 no tier de faixa
	PossibleWin     int64  // payout reservado na colocação
	PlacementHeight int64  // altura de bloco usada no gate de devolução
	RequestToken    string // token de correlação com o oráculo VRF

	// Campos de liquidação
	Settled    bool
	Outcome    int
	WinAmount  int64 // 0 em derrota; igual ao stake em devolução
	RandomSeed []byte
}

// MaskTier indica se a aposta enumera os resultados vencedores por bitmask.
func (b Bet) MaskTier() bool { return b.Modulo <= MaxMaskModulo }
