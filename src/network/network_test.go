package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trading-backend/src/logger"
	"trading-backend/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *NetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 2, UserAgent: "test-agent"}}
	return NewNetworkManager(cfg, logger.NewLogger(nil, "NetworkManager"))
}

func TestGet(t *testing.T) {
	var gotAgent, gotIndex string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotIndex = r.URL.Query().Get("index")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	body, err := newManager().Get(context.Background(), srv.URL, map[string]string{"index": "NIFTY BANK"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	assert.Equal(t, "test-agent", gotAgent)
	assert.Equal(t, "NIFTY BANK", gotIndex)
}

func TestGetBadStatusIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newManager().Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	nm := newManager()
	nm.MaxBodyBytes = 32
	_, err := nm.Get(context.Background(), srv.URL, nil)
	assert.ErrorContains(t, err, "exceeds 32 bytes")

	nm.MaxBodyBytes = 64
	body, err := nm.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Len(t, body, 64)
}
