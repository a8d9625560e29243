package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinAmount(t *testing.T) {
	tests := []struct {
		name      string
		pricing   Pricing
		amount    int64
		modulo    int
		rollUnder int
		want      int64
	}{
		{
			name:      "half odds with 10bp edge",
			pricing:   Pricing{HouseEdgeBP: 10},
			amount:    10_000,
			modulo:    100,
			rollUnder: 50,
			// fee = 10000*10/10000 = 10; win = (10000-10)*100/50 = 19980
			want: 19_980,
		},
		{
			name:      "fee floors to zero on small stake",
			pricing:   Pricing{HouseEdgeBP: 10},
			amount:    100,
			modulo:    100,
			rollUnder: 50,
			want:      200,
		},
		{
			name:      "payout floors down",
			pricing:   Pricing{HouseEdgeBP: 10},
			amount:    999,
			modulo:    3,
			rollUnder: 2,
			// fee = 0; win = floor(999*3/2) = 1498
			want: 1_498,
		},
		{
			name:      "die with two winning faces",
			pricing:   Pricing{HouseEdgeBP: 150},
			amount:    1_000,
			modulo:    6,
			rollUnder: 2,
			// fee = 15; win = 985*6/2 = 2955
			want: 2_955,
		},
		{
			name:      "wealth tax adds one step per full threshold",
			pricing:   Pricing{HouseEdgeBP: 100, WealthTaxBP: 10, WealthTaxThreshold: 200_000_000},
			amount:    400_000_000,
			modulo:    2,
			rollUnder: 1,
			// steps = 2 -> 120bp; fee = 4_800_000; win = 395_200_000*2
			want: 790_400_000,
		},
		{
			name:      "wealth tax ignores partial steps",
			pricing:   Pricing{HouseEdgeBP: 100, WealthTaxBP: 10, WealthTaxThreshold: 200_000_000},
			amount:    399_999_999,
			modulo:    100,
			rollUnder: 50,
			// steps = 1 -> 110bp; fee = 4_399_999; win = 395_600_000*2
			want: 791_200_000,
		},
		{
			name:      "zero threshold disables wealth tax",
			pricing:   Pricing{HouseEdgeBP: 10, WealthTaxBP: 500},
			amount:    10_000,
			modulo:    100,
			rollUnder: 50,
			want:      19_980,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pricing.WinAmount(tt.amount, tt.modulo, tt.rollUnder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// determinística: reserva e liquidação precisam bater bit a bit
			again, err := tt.pricing.WinAmount(tt.amount, tt.modulo, tt.rollUnder)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestWinAmountRejects(t *testing.T) {
	p := Pricing{HouseEdgeBP: 100}

	_, err := p.WinAmount(10_000, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidBet, "rollUnder zero")

	_, err = p.WinAmount(10_000, 100, 101)
	assert.ErrorIs(t, err, ErrInvalidBet, "rollUnder above modulo")

	// taxa total igual ao stake não deixa nada para pagar
	_, err = Pricing{HouseEdgeBP: 10_000}.WinAmount(10_000, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidBet)

	// imposto progressivo sem teto pode passar do próprio stake
	_, err = Pricing{HouseEdgeBP: 100, WealthTaxBP: 10_000, WealthTaxThreshold: 1}.WinAmount(100, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidBet)
}

func TestWinAmountOverflow(t *testing.T) {
	p := Pricing{}
	_, err := p.WinAmount(math.MaxInt64/2, 100, 1)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}
