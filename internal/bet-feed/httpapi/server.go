package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

// Store lê o cache do feed alimentado pelo settlement-feed-worker
type Store interface {
	GetLatest(ctx context.Context, dst any) (bool, error)
	Recent(ctx context.Context, limit int64) ([]events.BetSettled, error)
}

// API expõe os endpoints REST de consulta do feed de settlements
// Utiliza apenas o cache Redis; não há leitura de banco neste serviço
type API struct {
	Cache Store
}

const defaultRecentLimit = 50

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/feed/latest", a.getLatest)  // Último settlement liquidado
	r.Get("/v1/feed/recent", a.listRecent) // Settlements recentes
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getLatest retorna o último settlement liquidado
func (a *API) getLatest(w http.ResponseWriter, r *http.Request) {
	var latest events.BetSettled
	ok, err := a.Cache.GetLatest(r.Context(), &latest)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// listRecent retorna os settlements mais recentes, do mais novo para o mais velho
func (a *API) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultRecentLimit)
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.ParseInt(q, 10, 64)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	out, err := a.Cache.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}
