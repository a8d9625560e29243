package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// TokenLedger é a superfície consumida do ledger de custódia (treasury),
// já vinculada a um ativo. Transferências partem da conta do motor; toda
// falha aborta a operação chamadora por inteiro.
type TokenLedger interface {
	TransferFrom(ctx context.Context, from, to string, amount int64) error
	Transfer(ctx context.Context, to string, amount int64) error
	BalanceOf(ctx context.Context, account string) (int64, error)
}

// RandomnessSource pede um sorteio ao oráculo. O fulfillment chega depois,
// por fora, via Settle — exatamente uma vez por token.
type RandomnessSource interface {
	Request(ctx context.Context, seed []byte) (token string, err error)
}

// BlockClock expõe a altura corrente, usada no gate de devolução.
type BlockClock interface {
	Height() int64
}

// Events publica as notificações de ciclo de vida para observadores externos.
type Events interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
	PublishBetRefunded(ctx context.Context, e events.BetRefunded) error
}

// Params agrupa os parâmetros operacionais do motor. Mutáveis apenas pelos
// setters administrativos, sob o mesmo lock das operações de aposta.
type Params struct {
	Pricing

	MinBet    int64
	MaxBet    int64
	MaxProfit int64 // teto de lucro por aposta: possibleWin <= amount + MaxProfit

	OracleFee         int64 // taxa por sorteio, no ativo de taxa
	RefundDelayBlocks int64 // blocos até o oráculo ser considerado em atraso

	EngineAccount string // conta custodiante no treasury
	OracleAccount string // conta que recebe as taxas do oráculo
}

// Deps são os colaboradores externos injetados no motor.
type Deps struct {
	Stake  TokenLedger // ativo das apostas (escrow e pagamentos)
	Fee    TokenLedger // ativo das taxas do oráculo
	VRF    RandomnessSource
	Clock  BlockClock
	Events Events
}

// Engine orquestra o ciclo de vida das apostas: place, settle e refund.
// Um único mutex serializa toda operação mutante — semântica de transação
// serializada, sem interleaving nem reentrância entre operações.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger

	params Params

	ledger      *Ledger
	correlation *Correlation

	stake  TokenLedger
	fee    TokenLedger
	vrf    RandomnessSource
	clock  BlockClock
	events Events
}

func New(log *zap.Logger, params Params, deps Deps) (*Engine, error) {
	if deps.Stake == nil || deps.Fee == nil || deps.VRF == nil || deps.Clock == nil || deps.Events == nil {
		return nil, errors.New("engine: missing dependency")
	}
	return &Engine{
		log:         log,
		params:      params,
		ledger:      NewLedger(),
		correlation: NewCorrelation(),
		stake:       deps.Stake,
		fee:         deps.Fee,
		vrf:         deps.VRF,
		clock:       deps.Clock,
		events:      deps.Events,
	}, nil
}

// PlaceBet valida a aposta, faz o escrow do stake, reserva o passivo e pede
// o sorteio ao oráculo. Retorna a aposta já registrada.
func (e *Engine) PlaceBet(ctx context.Context, owner string, amount int64, modulo int, betMask uint64) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1) Validações de entrada — nenhum estado muda antes de passar por todas
	if owner == "" {
		return Bet{}, fmt.Errorf("%w: owner required", ErrInvalidBet)
	}
	if modulo < MinModulo || modulo > MaxModulo {
		return Bet{}, fmt.Errorf("%w: modulo %d out of range [%d,%d]", ErrInvalidBet, modulo, MinModulo, MaxModulo)
	}
	if amount < e.params.MinBet || amount > e.params.MaxBet {
		return Bet{}, fmt.Errorf("%w: amount %d out of range [%d,%d]", ErrInvalidBet, amount, e.params.MinBet, e.params.MaxBet)
	}
	rollUnder, mask, err := winningOutcomes(modulo, betMask)
	if err != nil {
		return Bet{}, err
	}

	// 2) A reserva de taxa do oráculo precisa existir antes de qualquer escrow
	feeBal, err := e.fee.BalanceOf(ctx, e.params.EngineAccount)
	if err != nil {
		return Bet{}, fmt.Errorf("oracle fee balance: %w", err)
	}
	if feeBal < e.params.OracleFee {
		return Bet{}, fmt.Errorf("%w: oracle fee reserve %d below %d", ErrInsufficientLiquidity, feeBal, e.params.OracleFee)
	}

	// 3) Payout reservado e tetos de lucro e solvência
	possibleWin, err := e.params.Pricing.WinAmount(amount, modulo, rollUnder)
	if err != nil {
		return Bet{}, err
	}
	if possibleWin > amount+e.params.MaxProfit {
		return Bet{}, fmt.Errorf("%w: possible win %d exceeds profit cap %d", ErrInsufficientLiquidity, possibleWin, amount+e.params.MaxProfit)
	}
	balance, err := e.stake.BalanceOf(ctx, e.params.EngineAccount)
	if err != nil {
		return Bet{}, fmt.Errorf("custody balance: %w", err)
	}
	// o saldo custodiado passa a incluir o stake assim que o escrow entra
	if e.ledger.LockedInBets()+possibleWin > balance+amount {
		return Bet{}, fmt.Errorf("%w: locked %d + win %d exceeds custody %d", ErrInsufficientLiquidity,
			e.ledger.LockedInBets(), possibleWin, balance+amount)
	}

	// 4) Escrow do stake — falha aqui aborta a operação sem efeitos
	if err := e.stake.TransferFrom(ctx, owner, e.params.EngineAccount, amount); err != nil {
		return Bet{}, fmt.Errorf("%w: escrow stake: %v", ErrTransfer, err)
	}

	// 5) Paga a taxa e pede o sorteio; falha depois do escrow devolve o stake
	if err := e.fee.Transfer(ctx, e.params.OracleAccount, e.params.OracleFee); err != nil {
		e.compensate(ctx, owner, amount)
		return Bet{}, fmt.Errorf("%w: oracle fee: %v", ErrTransfer, err)
	}
	id := e.ledger.NextID()
	height := e.clock.Height()
	token, err := e.vrf.Request(ctx, betSeed(id, owner, height))
	if err != nil {
		// a taxa já saiu; devolvemos só o stake
		e.compensate(ctx, owner, amount)
		return Bet{}, fmt.Errorf("request randomness: %w", err)
	}

	// 6) Efeitos locais: registro, passivo e correlação token -> aposta
	bet := Bet{
		Owner:           owner,
		Amount:          amount,
		Modulo:          modulo,
		RollUnder:       rollUnder,
		Mask:            mask,
		PossibleWin:     possibleWin,
		PlacementHeight: height,
		RequestToken:    token,
	}
	bet.ID = e.ledger.Append(bet)
	e.correlation.Register(token, bet.ID)

	// 7) Notificação de colocação
	if err := e.events.PublishBetPlaced(ctx, events.BetPlaced{
		BetID:        bet.ID,
		Owner:        owner,
		Amount:       amount,
		Modulo:       modulo,
		RollUnder:    rollUnder,
		Mask:         mask,
		PossibleWin:  possibleWin,
		RequestToken: token,
		PlacedHeight: height,
		TsUnixMs:     time.Now().UnixMilli(),
	}); err != nil {
		e.log.Warn("publish bet_placed", zap.Int64("betId", bet.ID), zap.Error(err))
	}

	e.log.Info("bet placed",
		zap.Int64("betId", bet.ID),
		zap.String("owner", owner),
		zap.Int64("amount", amount),
		zap.Int64("possibleWin", possibleWin),
		zap.String("requestToken", token))
	return bet, nil
}

// Settle é o callback do oráculo: resolve a aposta pelo token, decide o
// resultado, libera o passivo e paga o vencedor. Exatamente uma liquidação
// por aposta; replay cai em ErrAlreadySettled, token alheio em ErrUnknownBet.
func (e *Engine) Settle(ctx context.Context, requestToken string, randomness []byte) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1) Resolve a aposta pelo token de correlação
	id, ok := e.correlation.Resolve(requestToken)
	if !ok {
		return Bet{}, fmt.Errorf("%w: token %q", ErrUnknownBet, requestToken)
	}
	bet, err := e.ledger.Get(id)
	if err != nil {
		return Bet{}, err
	}
	if bet.Settled {
		return Bet{}, fmt.Errorf("%w: id %d", ErrAlreadySettled, id)
	}

	// 2) Reconfere o payout; divergência indica parâmetro alterado em voo.
	//    O valor reservado na colocação governa liberação e pagamento.
	if recomputed, perr := e.params.Pricing.WinAmount(bet.Amount, bet.Modulo, bet.RollUnder); perr != nil || recomputed != bet.PossibleWin {
		e.log.Warn("reserved payout drift",
			zap.Int64("betId", id),
			zap.Int64("reserved", bet.PossibleWin),
			zap.Int64("recomputed", recomputed),
			zap.Error(perr))
	}

	// 3) Decodifica o resultado do sorteio
	outcome, win := Decode(new(big.Int).SetBytes(randomness), bet.Modulo, bet.RollUnder, bet.Mask)
	var winAmount int64
	if win {
		winAmount = bet.PossibleWin
	}

	// 4) Paga antes de mutar: falha de transferência deixa tudo como estava
	if winAmount > 0 {
		if err := e.stake.Transfer(ctx, bet.Owner, winAmount); err != nil {
			return Bet{}, fmt.Errorf("%w: payout: %v", ErrTransfer, err)
		}
	}

	// 5) Libera o passivo reservado e grava os campos de liquidação
	if err := e.ledger.MarkSettled(id, outcome, winAmount, randomness); err != nil {
		return Bet{}, err
	}
	settled, _ := e.ledger.Get(id)

	// 6) Notificação de liquidação com contexto completo
	if err := e.events.PublishBetSettled(ctx, events.BetSettled{
		BetID:      settled.ID,
		Owner:      settled.Owner,
		Amount:     settled.Amount,
		Modulo:     settled.Modulo,
		RollUnder:  settled.RollUnder,
		Mask:       settled.Mask,
		Outcome:    settled.Outcome,
		WinAmount:  settled.WinAmount,
		RandomSeed: hex.EncodeToString(settled.RandomSeed),
		Ts:         time.Now(),
	}); err != nil {
		e.log.Warn("publish bet_settled", zap.Int64("betId", id), zap.Error(err))
	}

	e.log.Info("bet settled",
		zap.Int64("betId", id),
		zap.Int("outcome", settled.Outcome),
		zap.Bool("win", win),
		zap.Int64("winAmount", settled.WinAmount))
	return settled, nil
}

// Refund devolve o stake de uma aposta cujo oráculo nunca respondeu.
// Qualquer chamador pode acionar depois do prazo; o valor volta sempre ao
// dono original da aposta.
func (e *Engine) Refund(ctx context.Context, id int64) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 1) A aposta precisa existir e ainda estar aberta
	bet, err := e.ledger.Get(id)
	if err != nil {
		return Bet{}, err
	}
	if bet.Settled {
		return Bet{}, fmt.Errorf("%w: id %d", ErrAlreadySettled, id)
	}

	// 2) Gate de altura: só depois de RefundDelayBlocks o oráculo é atraso
	elapsed := e.clock.Height() - bet.PlacementHeight
	if elapsed <= e.params.RefundDelayBlocks {
		return Bet{}, fmt.Errorf("%w: %d blocks elapsed, need more than %d", ErrRefundTooEarly, elapsed, e.params.RefundDelayBlocks)
	}

	// 3) Devolve o stake ao dono antes de mutar
	if err := e.stake.Transfer(ctx, bet.Owner, bet.Amount); err != nil {
		return Bet{}, fmt.Errorf("%w: refund stake: %v", ErrTransfer, err)
	}

	// 4) Libera o passivo reservado e marca liquidada com winAmount = amount
	if err := e.ledger.MarkSettled(id, 0, bet.Amount, nil); err != nil {
		return Bet{}, err
	}
	refunded, _ := e.ledger.Get(id)

	// 5) Notificação de devolução
	if err := e.events.PublishBetRefunded(ctx, events.BetRefunded{
		BetID:  refunded.ID,
		Owner:  refunded.Owner,
		Amount: refunded.Amount,
		Ts:     time.Now(),
	}); err != nil {
		e.log.Warn("publish bet_refunded", zap.Int64("betId", id), zap.Error(err))
	}

	e.log.Info("bet refunded",
		zap.Int64("betId", id),
		zap.String("owner", refunded.Owner),
		zap.Int64("amount", refunded.Amount))
	return refunded, nil
}

// GetBet retorna uma cópia da aposta pelo id.
func (e *Engine) GetBet(id int64) (Bet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Get(id)
}

// Totals retorna um snapshot dos agregados de risco.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Totals()
}

// Balance retorna o saldo custodiado corrente no ativo das apostas.
func (e *Engine) Balance(ctx context.Context) (int64, error) {
	return e.stake.BalanceOf(ctx, e.params.EngineAccount)
}

// Params retorna uma cópia dos parâmetros correntes.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// compensate devolve o stake ao apostador quando a colocação falha depois
// do escrow. Falha aqui só pode ser logada: não há mais o que desfazer.
func (e *Engine) compensate(ctx context.Context, owner string, amount int64) {
	if err := e.stake.Transfer(ctx, owner, amount); err != nil {
		e.log.Error("compensating transfer failed",
			zap.String("owner", owner),
			zap.Int64("amount", amount),
			zap.Error(err))
	}
}

// betSeed deriva o material de semente enviado ao oráculo junto do pedido.
func betSeed(id int64, owner string, height int64) []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%d", id, owner, height)))
	return sum[:]
}
