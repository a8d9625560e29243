package engine

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Limites do espaço de resultados de uma aposta.
const (
	MinModulo     = 2
	MaxModulo     = 100
	MaxMaskModulo = 40 // até aqui os resultados vencedores são enumerados por bitmask
)

// maxMask é o primeiro valor inválido de máscara (2^40).
const maxMask = uint64(1) << MaxMaskModulo

// winningOutcomes valida a codificação da aposta e deriva rollUnder.
// Tier de máscara: popcount dos bits ligados; tier de faixa: o próprio
// valor, validado contra o modulo.
func winningOutcomes(modulo int, betMask uint64) (rollUnder int, mask uint64, err error) {
	if modulo <= MaxMaskModulo {
		if betMask == 0 || betMask >= maxMask {
			return 0, 0, fmt.Errorf("%w: mask %d out of range", ErrInvalidBet, betMask)
		}
		return bits.OnesCount64(betMask), betMask, nil
	}
	if betMask == 0 || betMask > uint64(modulo) {
		return 0, 0, fmt.Errorf("%w: threshold %d out of range (modulo %d)", ErrInvalidBet, betMask, modulo)
	}
	return int(betMask), 0, nil
}

// Decode reduz o sorteio ao espaço da aposta e decide vitória.
// Tier de máscara: vence se o bit `outcome` está ligado; tier de faixa:
// vence se outcome < rollUnder. Determinístico e sem estado interno.
func Decode(random *big.Int, modulo, rollUnder int, mask uint64) (outcome int, win bool) {
	out := new(big.Int).Mod(random, big.NewInt(int64(modulo)))
	outcome = int(out.Int64())
	if modulo <= MaxMaskModulo {
		return outcome, mask&(1<<uint(outcome)) != 0
	}
	return outcome, outcome < rollUnder
}
