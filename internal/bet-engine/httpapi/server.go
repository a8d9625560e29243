package httpapi

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/dto"
	"github.com/chaindice/dice-bet-platform-poc/internal/engine"
)

// Engine define as operações do motor usadas pelo handler HTTP
type Engine interface {
	PlaceBet(ctx context.Context, owner string, amount int64, modulo int, betMask uint64) (engine.Bet, error)
	Refund(ctx context.Context, id int64) (engine.Bet, error)
	GetBet(id int64) (engine.Bet, error)
	Totals() engine.Totals
	Balance(ctx context.Context) (int64, error)

	SetOracleFee(v int64) error
	SetHouseEdgeBP(v int64) error
	SetWealthTaxBP(v int64) error
	SetWealthTaxThreshold(v int64) error
	SetMinBet(v int64) error
	SetMaxBet(v int64) error
	SetMaxProfit(v int64) error
	Withdraw(ctx context.Context, to string, amount int64) error
	SweepFeeToken(ctx context.Context, to string) (int64, error)
}

// Server expõe a API REST do motor de apostas
type Server struct {
	log *zap.Logger
	eng Engine
}

func NewServer(log *zap.Logger, eng Engine) *Server {
	return &Server{log: log, eng: eng}
}

// Router retorna o roteador HTTP com os endpoints do motor
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/bets", s.placeBet)              // Coloca uma aposta
	r.Get("/v1/bets/{id}", s.getBet)            // Consulta uma aposta
	r.Post("/v1/bets/{id}/refund", s.refundBet) // Devolve uma aposta expirada
	r.Get("/v1/stats", s.getStats)              // Agregados de risco e saldo

	// Superfície administrativa; o gate de autorização fica no gateway
	r.Route("/v1/admin", func(r chi.Router) {
		r.Put("/params/{name}", s.setParam)
		r.Post("/withdraw", s.withdraw)
		r.Post("/sweep-fee", s.sweepFee)
	})
	return r
}

// placeBet valida o payload e delega a colocação ao motor
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if req.Owner == "" || req.Amount <= 0 || req.Modulo <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	bet, err := s.eng.PlaceBet(r.Context(), req.Owner, req.Amount, req.Modulo, req.BetMask)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:        bet.ID,
		Status:       "AWAITING_RANDOMNESS",
		PossibleWin:  bet.PossibleWin,
		RequestToken: bet.RequestToken,
	})
}

// getBet retorna a aposta pelo id, com o status derivado dos campos de liquidação
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}

	bet, err := s.eng.GetBet(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(bet))
}

// refundBet aciona a devolução de uma aposta cujo oráculo está em atraso
func (s *Server) refundBet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bet id"})
		return
	}

	bet, err := s.eng.Refund(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(bet))
}

// getStats retorna o saldo custodiado e os agregados do ledger
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	balance, err := s.eng.Balance(r.Context())
	if err != nil {
		s.log.Warn("custody balance", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "treasury unavailable"})
		return
	}
	totals := s.eng.Totals()
	writeJSON(w, http.StatusOK, dto.StatsResponse{
		Balance:       balance,
		LockedInBets:  totals.LockedInBets,
		SumWinAmount:  totals.SumWinAmount,
		SumLossAmount: totals.SumLossAmount,
		OpenBetCount:  totals.OpenBetCount,
		BetCount:      totals.BetCount,
	})
}

// setParam aplica um setter administrativo pelo nome do parâmetro
func (s *Server) setParam(w http.ResponseWriter, r *http.Request) {
	var req dto.SetParamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}

	var err error
	switch chi.URLParam(r, "name") {
	case "oracle-fee":
		err = s.eng.SetOracleFee(req.Value)
	case "house-edge-bp":
		err = s.eng.SetHouseEdgeBP(req.Value)
	case "wealth-tax-bp":
		err = s.eng.SetWealthTaxBP(req.Value)
	case "wealth-tax-threshold":
		err = s.eng.SetWealthTaxThreshold(req.Value)
	case "min-bet":
		err = s.eng.SetMinBet(req.Value)
	case "max-bet":
		err = s.eng.SetMaxBet(req.Value)
	case "max-profit":
		err = s.eng.SetMaxProfit(req.Value)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown parameter"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "UPDATED"})
}

// withdraw saca o saldo livre da casa (acima do passivo reservado)
func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	if err := s.eng.Withdraw(r.Context(), req.To, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "WITHDRAWN"})
}

// sweepFee varre o saldo restante do ativo de taxa do oráculo
func (s *Server) sweepFee(w http.ResponseWriter, r *http.Request) {
	var req dto.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	swept, err := s.eng.SweepFeeToken(r.Context(), req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SweepResponse{Swept: swept})
}

// toBetResponse deriva o status externo a partir dos campos de liquidação:
// devolução é liquidação sem sorteio (seed vazia, winAmount = stake)
func toBetResponse(b engine.Bet) dto.BetResponse {
	resp := dto.BetResponse{
		BetID:           b.ID,
		Owner:           b.Owner,
		Amount:          b.Amount,
		Modulo:          b.Modulo,
		RollUnder:       b.RollUnder,
		Mask:            b.Mask,
		PossibleWin:     b.PossibleWin,
		PlacementHeight: b.PlacementHeight,
		Status:          "AWAITING_RANDOMNESS",
	}
	if !b.Settled {
		return resp
	}
	if len(b.RandomSeed) == 0 {
		resp.Status = "REFUNDED"
	} else {
		resp.Status = "SETTLED"
		outcome := b.Outcome
		resp.Outcome = &outcome
	}
	winAmount := b.WinAmount
	resp.WinAmount = &winAmount
	resp.RandomSeed = hex.EncodeToString(b.RandomSeed)
	return resp
}

// statusFor mapeia os erros do motor para códigos HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidBet), errors.Is(err, engine.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownBet):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInsufficientLiquidity),
		errors.Is(err, engine.ErrAlreadySettled),
		errors.Is(err, engine.ErrRefundTooEarly):
		return http.StatusConflict
	case errors.Is(err, engine.ErrTransfer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
