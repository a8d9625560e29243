package engine

// Correlation associa o token de cada pedido ao oráculo com a aposta que
// ele resolve, um para um. Entradas não são removidas depois da liquidação:
// o flag Settled da aposta é o guarda contra replay do callback, e manter a
// entrada distingue replay (AlreadySettled) de token desconhecido.
type Correlation struct {
	byToken map[string]int64
}

func NewCorrelation() *Correlation {
	return &Correlation{byToken: make(map[string]int64)}
}

func (c *Correlation) Register(token string, betID int64) {
	c.byToken[token] = betID
}

func (c *Correlation) Resolve(token string) (int64, bool) {
	id, ok := c.byToken[token]
	return id, ok
}

func (c *Correlation) Len() int { return len(c.byToken) }
