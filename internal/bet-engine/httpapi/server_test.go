package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chaindice/dice-bet-platform-poc/internal/bet-engine/dto"
	"github.com/chaindice/dice-bet-platform-poc/internal/engine"
)

// fakeEngine devolve respostas fixas para exercitar o mapeamento HTTP.
type fakeEngine struct {
	bet      engine.Bet
	totals   engine.Totals
	balance  int64
	err      error
	paramErr error
	swept    int64
}

func (f *fakeEngine) PlaceBet(context.Context, string, int64, int, uint64) (engine.Bet, error) {
	return f.bet, f.err
}
func (f *fakeEngine) Refund(context.Context, int64) (engine.Bet, error) { return f.bet, f.err }
func (f *fakeEngine) GetBet(int64) (engine.Bet, error)                  { return f.bet, f.err }
func (f *fakeEngine) Totals() engine.Totals                             { return f.totals }
func (f *fakeEngine) Balance(context.Context) (int64, error)            { return f.balance, f.err }
func (f *fakeEngine) SetOracleFee(int64) error                          { return f.paramErr }
func (f *fakeEngine) SetHouseEdgeBP(int64) error                        { return f.paramErr }
func (f *fakeEngine) SetWealthTaxBP(int64) error                        { return f.paramErr }
func (f *fakeEngine) SetWealthTaxThreshold(int64) error                 { return f.paramErr }
func (f *fakeEngine) SetMinBet(int64) error                             { return f.paramErr }
func (f *fakeEngine) SetMaxBet(int64) error                             { return f.paramErr }
func (f *fakeEngine) SetMaxProfit(int64) error                          { return f.paramErr }
func (f *fakeEngine) Withdraw(context.Context, string, int64) error     { return f.err }
func (f *fakeEngine) SweepFeeToken(context.Context, string) (int64, error) {
	return f.swept, f.err
}

func doRequest(t *testing.T, eng Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	NewServer(zap.NewNop(), eng).Router().ServeHTTP(rec, req)
	return rec
}

func TestPlaceBetEndpoint(t *testing.T) {
	eng := &fakeEngine{bet: engine.Bet{
		ID:           7,
		Owner:        "alice",
		Amount:       10_000,
		Modulo:       2,
		RollUnder:    1,
		Mask:         0b01,
		PossibleWin:  19_800,
		RequestToken: "tok-7",
	}}

	rec := doRequest(t, eng, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
		Owner: "alice", Amount: 10_000, Modulo: 2, BetMask: 0b01,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.PlaceBetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.BetID)
	assert.Equal(t, "AWAITING_RANDOMNESS", resp.Status)
	assert.Equal(t, int64(19_800), resp.PossibleWin)
	assert.Equal(t, "tok-7", resp.RequestToken)
}

func TestPlaceBetEndpointBadPayload(t *testing.T) {
	eng := &fakeEngine{}

	req := httptest.NewRequest(http.MethodPost, "/v1/bets", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	NewServer(zap.NewNop(), eng).Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, eng, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{Owner: "", Amount: 100, Modulo: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: modulo", engine.ErrInvalidBet), http.StatusBadRequest},
		{fmt.Errorf("%w: cap", engine.ErrInsufficientLiquidity), http.StatusConflict},
		{fmt.Errorf("%w: id 9", engine.ErrUnknownBet), http.StatusNotFound},
		{fmt.Errorf("%w: id 9", engine.ErrAlreadySettled), http.StatusConflict},
		{fmt.Errorf("%w: 10 blocks", engine.ErrRefundTooEarly), http.StatusConflict},
		{fmt.Errorf("%w: escrow", engine.ErrTransfer), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			eng := &fakeEngine{err: tt.err}
			rec := doRequest(t, eng, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{
				Owner: "alice", Amount: 100, Modulo: 2, BetMask: 1,
			})
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetBetEndpoint(t *testing.T) {
	eng := &fakeEngine{bet: engine.Bet{
		ID:          3,
		Owner:       "bob",
		Amount:      5_000,
		Modulo:      100,
		RollUnder:   50,
		PossibleWin: 9_900,
		Settled:     true,
		Outcome:     42,
		WinAmount:   9_900,
		RandomSeed:  []byte{0xde, 0xad},
	}}

	rec := doRequest(t, eng, http.MethodGet, "/v1/bets/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SETTLED", resp.Status)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, 42, *resp.Outcome)
	require.NotNil(t, resp.WinAmount)
	assert.Equal(t, int64(9_900), *resp.WinAmount)
	assert.Equal(t, "dead", resp.RandomSeed)

	rec = doRequest(t, eng, http.MethodGet, "/v1/bets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBetEndpointOpenAndRefunded(t *testing.T) {
	open := &fakeEngine{bet: engine.Bet{ID: 1, Owner: "bob", Amount: 500}}
	rec := doRequest(t, open, http.MethodGet, "/v1/bets/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AWAITING_RANDOMNESS", resp.Status)
	assert.Nil(t, resp.Outcome)
	assert.Nil(t, resp.WinAmount)

	// devolvida: liquidada sem sorteio, stake de volta
	refunded := &fakeEngine{bet: engine.Bet{ID: 2, Owner: "bob", Amount: 500, Settled: true, WinAmount: 500}}
	rec = doRequest(t, refunded, http.MethodGet, "/v1/bets/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REFUNDED", resp.Status)
	assert.Nil(t, resp.Outcome)
	require.NotNil(t, resp.WinAmount)
	assert.Equal(t, int64(500), *resp.WinAmount)
}

func TestRefundEndpoint(t *testing.T) {
	eng := &fakeEngine{bet: engine.Bet{ID: 4, Owner: "carol", Amount: 800, Settled: true, WinAmount: 800}}

	rec := doRequest(t, eng, http.MethodPost, "/v1/bets/4/refund", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REFUNDED", resp.Status)
}

func TestStatsEndpoint(t *testing.T) {
	eng := &fakeEngine{
		balance: 1_000_000,
		totals: engine.Totals{
			LockedInBets:  19_800,
			SumWinAmount:  500,
			SumLossAmount: 300,
			OpenBetCount:  1,
			BetCount:      5,
		},
	}

	rec := doRequest(t, eng, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1_000_000), resp.Balance)
	assert.Equal(t, int64(19_800), resp.LockedInBets)
	assert.Equal(t, int64(5), resp.BetCount)
}

func TestAdminEndpoints(t *testing.T) {
	eng := &fakeEngine{swept: 990}

	rec := doRequest(t, eng, http.MethodPut, "/v1/admin/params/house-edge-bp", dto.SetParamRequest{Value: 150})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, eng, http.MethodPut, "/v1/admin/params/nope", dto.SetParamRequest{Value: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	eng.paramErr = fmt.Errorf("%w: min bet 0", engine.ErrInvalidParam)
	rec = doRequest(t, eng, http.MethodPut, "/v1/admin/params/min-bet", dto.SetParamRequest{Value: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, eng, http.MethodPost, "/v1/admin/sweep-fee", dto.SweepRequest{To: "ops"})
	require.Equal(t, http.StatusOK, rec.Code)
	var sweep dto.SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sweep))
	assert.Equal(t, int64(990), sweep.Swept)

	eng.err = fmt.Errorf("%w: exceeds free balance", engine.ErrInsufficientLiquidity)
	rec = doRequest(t, eng, http.MethodPost, "/v1/admin/withdraw", dto.WithdrawRequest{To: "house", Amount: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
