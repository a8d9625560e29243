package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Setters administrativos. O gate de autorização fica na borda do serviço;
// aqui só validamos faixas e aplicamos sob o mesmo lock das apostas, para
// que nenhuma colocação veja parâmetros pela metade.

func (e *Engine) SetOracleFee(v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: oracle fee %d", ErrInvalidParam, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.OracleFee = v
	e.log.Info("oracle fee updated", zap.Int64("fee", v))
	return nil
}

func (e *Engine) SetHouseEdgeBP(v int64) error {
	if v < 0 || v > bpDenominator {
		return fmt.Errorf("%w: house edge %d bp", ErrInvalidParam, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.HouseEdgeBP = v
	e.log.Info("house edge updated", zap.Int64("bp", v))
	return nil
}

func (e *Engine) SetWealthTaxBP(v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: wealth tax %d bp", ErrInvalidParam, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.WealthTaxBP = v
	e.log.Info("wealth tax updated", zap.Int64("bp", v))
	return nil
}

func (e *Engine) SetWealthTaxThreshold(v int64) error {
	if v <= 0 {
		return fmt.Errorf("%w: wealth tax threshold %d", ErrInvalidParam, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.WealthTaxThreshold = v
	e.log.Info("wealth tax threshold updated", zap.Int64("threshold", v))
	return nil
}

func (e *Engine) SetMinBet(v int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v <= 0 || v > e.params.MaxBet {
		return fmt.Errorf("%w: min bet %d", ErrInvalidParam, v)
	}
	e.params.MinBet = v
	e.log.Info("min bet updated", zap.Int64("minBet", v))
	return nil
}

func (e *Engine) SetMaxBet(v int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v < e.params.MinBet {
		return fmt.Errorf("%w: max bet %d below min bet %d", ErrInvalidParam, v, e.params.MinBet)
	}
	e.params.MaxBet = v
	e.log.Info("max bet updated", zap.Int64("maxBet", v))
	return nil
}

func (e *Engine) SetMaxProfit(v int64) error {
	if v < 0 {
		return fmt.Errorf("%w: max profit %d", ErrInvalidParam, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.MaxProfit = v
	e.log.Info("max profit updated", zap.Int64("maxProfit", v))
	return nil
}

// Withdraw saca lucro da casa, limitado ao que não está reservado para
// apostas abertas: amount <= balance - lockedInBets.
func (e *Engine) Withdraw(ctx context.Context, to string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if to == "" || amount <= 0 {
		return fmt.Errorf("%w: withdraw %d to %q", ErrInvalidParam, amount, to)
	}
	balance, err := e.stake.BalanceOf(ctx, e.params.EngineAccount)
	if err != nil {
		return fmt.Errorf("custody balance: %w", err)
	}
	if amount > balance-e.ledger.LockedInBets() {
		return fmt.Errorf("%w: withdraw %d exceeds free balance %d", ErrInsufficientLiquidity,
			amount, balance-e.ledger.LockedInBets())
	}
	if err := e.stake.Transfer(ctx, to, amount); err != nil {
		return fmt.Errorf("%w: withdraw: %v", ErrTransfer, err)
	}

	e.log.Info("house withdraw", zap.String("to", to), zap.Int64("amount", amount))
	return nil
}

// SweepFeeToken move todo o saldo restante do ativo de taxa para a conta
// indicada e retorna o valor varrido.
func (e *Engine) SweepFeeToken(ctx context.Context, to string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if to == "" {
		return 0, fmt.Errorf("%w: sweep destination required", ErrInvalidParam)
	}
	balance, err := e.fee.BalanceOf(ctx, e.params.EngineAccount)
	if err != nil {
		return 0, fmt.Errorf("oracle fee balance: %w", err)
	}
	if balance == 0 {
		return 0, nil
	}
	if err := e.fee.Transfer(ctx, to, balance); err != nil {
		return 0, fmt.Errorf("%w: sweep fee token: %v", ErrTransfer, err)
	}

	e.log.Info("fee token swept", zap.String("to", to), zap.Int64("amount", balance))
	return balance, nil
}
