package engine

import (
	"fmt"
	"math/big"
)

// Basis points: 1 bp = 0,01%.
const bpDenominator = 10_000

// Pricing congela a política de preço: taxa fixa da casa mais o imposto
// progressivo que cresce por degrau de stake, sem teto.
type Pricing struct {
	HouseEdgeBP        int64
	WealthTaxBP        int64
	WealthTaxThreshold int64 // degrau em unidades do ativo; 0 desliga o imposto
}

// WinAmount calcula o payout de uma aposta, líquido de taxas:
//
//	fee       = amount * (houseEdgeBP + wealthTax(amount)) / 10000
//	wealthTax = floor(amount / threshold) * wealthTaxBP
//	winAmount = floor((amount - fee) * modulo / rollUnder)
//
// Aritmética inteira exata, sempre arredondando para baixo. Chamada na
// colocação (reserva do passivo) e na liquidação (pagamento) — o resultado
// precisa bater bit a bit nas duas.
func (p Pricing) WinAmount(amount int64, modulo, rollUnder int) (int64, error) {
	// 1) Pré-condição: 0 < rollUnder <= modulo
	if rollUnder <= 0 || rollUnder > modulo {
		return 0, fmt.Errorf("%w: roll under %d out of range (modulo %d)", ErrInvalidBet, rollUnder, modulo)
	}

	// 2) Taxa total em bp; o imposto progressivo cresce sem teto com o stake,
	//    então o produto vai para big.Int antes de qualquer multiplicação
	totalBP := big.NewInt(p.HouseEdgeBP)
	if p.WealthTaxThreshold > 0 {
		steps := big.NewInt(amount / p.WealthTaxThreshold)
		totalBP.Add(totalBP, steps.Mul(steps, big.NewInt(p.WealthTaxBP)))
	}

	stake := big.NewInt(amount)
	fee := new(big.Int).Mul(stake, totalBP)
	fee.Quo(fee, big.NewInt(bpDenominator))

	// 3) Stake que não cobre as próprias taxas não é precificável
	if fee.Cmp(stake) >= 0 {
		return 0, fmt.Errorf("%w: fee %s exceeds stake %d", ErrInvalidBet, fee.String(), amount)
	}

	// 4) Payout proporcional à probabilidade de vitória
	win := new(big.Int).Sub(stake, fee)
	win.Mul(win, big.NewInt(int64(modulo)))
	win.Quo(win, big.NewInt(int64(rollUnder)))

	if !win.IsInt64() {
		return 0, fmt.Errorf("%w: payout overflows int64", ErrInsufficientLiquidity)
	}
	return win.Int64(), nil
}
