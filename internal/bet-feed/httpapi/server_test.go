package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaindice/dice-bet-platform-poc/pkg/contracts/events"
)

type fakeStore struct {
	latest   *events.BetSettled
	recent   []events.BetSettled
	err      error
	gotLimit int64
}

func (f *fakeStore) GetLatest(_ context.Context, dst any) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.latest == nil {
		return false, nil
	}
	b, _ := json.Marshal(f.latest)
	return true, json.Unmarshal(b, dst)
}

func (f *fakeStore) Recent(_ context.Context, limit int64) ([]events.BetSettled, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotLimit = limit
	if limit < int64(len(f.recent)) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func doGet(t *testing.T, a *API, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestGetLatestReturnsSettlement(t *testing.T) {
	store := &fakeStore{latest: &events.BetSettled{BetID: 9, Owner: "alice", WinAmount: 19_800, Ts: time.Now()}}
	a := &API{Cache: store}

	rec := doGet(t, a, "/v1/feed/latest")

	require.Equal(t, http.StatusOK, rec.Code)
	var out events.BetSettled
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(9), out.BetID)
	assert.Equal(t, "alice", out.Owner)
}

func TestGetLatestWithEmptyFeed(t *testing.T) {
	a := &API{Cache: &fakeStore{}}

	rec := doGet(t, a, "/v1/feed/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRecentAppliesLimit(t *testing.T) {
	store := &fakeStore{recent: []events.BetSettled{{BetID: 3}, {BetID: 2}, {BetID: 1}}}
	a := &API{Cache: store}

	rec := doGet(t, a, "/v1/feed/recent")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(defaultRecentLimit), store.gotLimit)

	var out []events.BetSettled
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].BetID) // mais novo primeiro

	rec = doGet(t, a, "/v1/feed/recent?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 2)
}

func TestListRecentRejectsInvalidLimit(t *testing.T) {
	a := &API{Cache: &fakeStore{}}

	for _, q := range []string{"0", "-1", "abc"} {
		rec := doGet(t, a, "/v1/feed/recent?limit="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", q)
	}
}

func TestFeedEndpointsMapStoreErrors(t *testing.T) {
	a := &API{Cache: &fakeStore{err: errors.New("redis down")}}

	assert.Equal(t, http.StatusInternalServerError, doGet(t, a, "/v1/feed/latest").Code)
	assert.Equal(t, http.StatusInternalServerError, doGet(t, a, "/v1/feed/recent").Code)
}
