package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/treasury/dto"
	"github.com/chaindice/dice-bet-platform-poc/internal/treasury/repo"
)

// Repo define a interface de operações de ledger usadas pelo handler HTTP
type Repo interface {
	Balance(ctx context.Context, account, asset string) (int64, error)
	Deposit(ctx context.Context, account, asset string, amount int64, ref string) (newBalance int64, err error)
	Transfer(ctx context.Context, from, to, asset string, amount int64, ref string) error
}

// Server expõe endpoints HTTP do ledger de ativos (treasury)
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP do treasury
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API do treasury
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/treasury/transfer", s.transfer) // POST
	mux.HandleFunc("/treasury/deposit", s.deposit)   // POST
	mux.HandleFunc("/treasury/balance/", s.balance)  // GET /treasury/balance/{account}?asset=...
	return mux
}

// transfer move um ativo entre contas, idempotente por ref
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.From == "" || req.To == "" || req.Asset == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Transfer(r.Context(), req.From, req.To, req.Asset, req.Amount, req.Ref); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, repo.ErrInsufficientFunds) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		s.log.Error("transfer failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TransferResponse{Status: "APPLIED"})
}

// deposit credita (emite) um ativo na conta — faucet de fundos do ambiente
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Account == "" || req.Asset == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Deposit(r.Context(), req.Account, req.Asset, req.Amount, req.Ref)
	if err != nil {
		s.log.Error("deposit failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.BalanceResponse{Account: req.Account, Asset: req.Asset, Balance: bal})
}

// balance retorna o saldo de um ativo na conta
func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	account := strings.TrimPrefix(r.URL.Path, "/treasury/balance/")
	asset := r.URL.Query().Get("asset")
	if account == "" || asset == "" {
		http.Error(w, "account and asset required", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Balance(r.Context(), account, asset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.BalanceResponse{Account: account, Asset: asset, Balance: bal})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
