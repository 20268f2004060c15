package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trading-backend/src/broker/brokertest"
	"trading-backend/src/cache"
	"trading-backend/src/credentials"
	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/market"
	"trading-backend/src/models"
	"trading-backend/src/network"
	"trading-backend/src/orders"
	"trading-backend/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	server *APIServer
	broker *brokertest.Fake
	tokens *credentials.TokenStore
}

func newTestAPI(t *testing.T, withBroker bool, token string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	universeFile := filepath.Join(dir, "nifty50.csv")
	require.NoError(t, os.WriteFile(universeFile, []byte("sr_no,underlying,symbol\n1,Reliance,RELIANCE\n2,TCS,TCS\n3,Infosys,INFY\n"), 0o600))

	cfg := &models.MConfig{
		Host:        "127.0.0.1",
		LogLevel:    "ERROR",
		CorsOrigins: []string{"http://localhost:3000"},
		Network:     models.MNetworkConfig{RequestTimeout: 1},
		Universe:    models.MUniverseConfig{BroadIndexFile: universeFile, SectorIndex: "NIFTY BANK"},
		Market:      models.MMarketConfig{DefaultPageSize: 25, MaxPageSize: 100, CandleConcurrency: 2},
	}
	log := logger.NewLogger(cfg, "API")

	fake := brokertest.New()
	fake.Token = "granted"
	fake.InstrumentSet = []models.MInstrument{
		{InstrumentToken: 738561, TradingSymbol: "RELIANCE", Name: "RELIANCE INDUSTRIES", Exchange: "NSE", InstrumentType: "EQ"},
		{InstrumentToken: 2953217, TradingSymbol: "TCS", Name: "TATA CONSULTANCY SERV LT", Exchange: "NSE", InstrumentType: "EQ"},
		{InstrumentToken: 408065, TradingSymbol: "INFY", Name: "INFOSYS", Exchange: "NSE", InstrumentType: "EQ"},
	}
	fake.Prices = map[string]float64{"NSE:RELIANCE": 2900, "NSE:TCS": 3500, "NSE:INFY": 1500}
	fake.Bars[2953217] = []models.MCandle{{Date: time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC), Open: 3490, High: 3510, Low: 3480, Close: 3500, Volume: 1200}}

	var broker interfaces.IBroker
	if withBroker {
		broker = fake
	}

	tokens := credentials.NewTokenStore(nil, "", log)
	if token != "" {
		require.NoError(t, tokens.Save(context.Background(), token))
	}

	caches := market.Caches{
		Instruments: cache.NewFamily[[]models.MInstrument]("instruments", 600*time.Second, cache.NewMemoryStore[[]models.MInstrument](), log),
		Quotes:      cache.NewFamily[models.MQuote]("quotes", 3*time.Second, cache.NewMemoryStore[models.MQuote](), log),
		Positions:   cache.NewFamily[[]models.MPosition]("positions", 5*time.Second, cache.NewMemoryStore[[]models.MPosition](), log),
		Candles:     cache.NewFamily[[]models.MCandle]("candles", 10*time.Second, cache.NewMemoryStore[[]models.MCandle](), log),
		IndexLists:  cache.NewFamily[[]string]("index_lists", time.Hour, cache.NewMemoryStore[[]string](), log),
	}
	svc := market.NewMarketService(cfg, broker, tokens, nil, network.NewNetworkManager(cfg, log), caches, utils.NewFallbackCalendar(), log)
	gw := orders.NewGateway(broker, tokens, svc, log)
	sessions := credentials.NewSessionService(broker, tokens, log)

	return &testAPI{
		server: NewAPIServer(cfg, svc, gw, sessions, log),
		broker: fake,
		tokens: tokens,
	}
}

func (a *testAPI) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	api := newTestAPI(t, true, "tok")
	rec := api.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["broker_configured"])
	assert.Equal(t, true, body["authenticated"])
	assert.Contains(t, body, "market_open")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	api := newTestAPI(t, true, "tok")
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	api.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/market/nifty50", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	api.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	api.server.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticLists(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	rec := api.do(t, http.MethodGet, "/api/v1/market/scales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}, decode[[]string](t, rec))

	rec = api.do(t, http.MethodGet, "/api/v1/market/strategies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]strategy](t, rec), 3)

	rec = api.do(t, http.MethodGet, "/api/v1/market/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[[]string](t, rec), "it")
}

func TestSegmentRows(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	rec := api.do(t, http.MethodGet, "/api/v1/market/nifty50?search=tc&include_candles=true&scale=1d", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Items []struct {
			ID              int64    `json:"id"`
			InstrumentToken int64    `json:"instrument_token"`
			TradingSymbol   string   `json:"tradingsymbol"`
			Name            string   `json:"name"`
			Price           *float64 `json:"price"`
			Position        string   `json:"position"`
			Candles         []struct {
				Date  string  `json:"date"`
				Close float64 `json:"close"`
			} `json:"candles"`
		} `json:"items"`
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 25, page.PageSize)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, "TCS", item.TradingSymbol)
	assert.Equal(t, int64(2953217), item.ID)
	require.NotNil(t, item.Price)
	assert.Equal(t, 3500.0, *item.Price)
	assert.Equal(t, "Neutral", item.Position)
	require.Len(t, item.Candles, 1)
	assert.Equal(t, "2026-01-05T09:15:00Z", item.Candles[0].Date)
}

func TestSegmentRowsRejectsBadParams(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	for _, query := range []string{
		"position=sideways",
		"sort_by=volume",
		"sort_dir=up",
		"scale=2h",
		"page=first",
		"include_candles=maybe",
	} {
		rec := api.do(t, http.MethodGet, "/api/v1/market/nifty50?"+query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["detail"])
	}
}

func TestUnknownCategoryIsEmpty(t *testing.T) {
	api := newTestAPI(t, true, "tok")
	rec := api.do(t, http.MethodGet, "/api/v1/market/nifty50?category=unknown", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(0), body["total"])
	assert.Equal(t, []interface{}{}, body["items"])
}

func TestPositionsWithoutToken(t *testing.T) {
	api := newTestAPI(t, true, "")
	rec := api.do(t, http.MethodGet, "/api/v1/market/positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, 0, api.broker.Calls("Positions"))
}

func TestHistoricalData(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	rec := api.do(t, http.MethodGet, "/api/v1/market/historical-data?instrument_token=2953217&scale=5m", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MCandle](t, rec), 1)

	rec = api.do(t, http.MethodGet, "/api/v1/market/historical-data?instrument_token=2953217&scale=1d&from_date=2025-12-01&to_date=2025-12-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/market/historical-data?scale=5m", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/market/historical-data?instrument_token=1&from_date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInstrumentsFromBroker(t *testing.T) {
	api := newTestAPI(t, true, "tok")
	rec := api.do(t, http.MethodGet, "/api/v1/market/instruments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MInstrument](t, rec), 3)
}

func TestOrders(t *testing.T) {
	api := newTestAPI(t, true, "tok")

	rec := api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"BUY"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"order_id":"order-1"}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":0,"transaction_type":"BUY"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"HOLD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, api.broker.Calls("PlaceOrder"))

	api.broker.OrderErr = &helpers.BrokerError{Type: "InputException", Message: "Insufficient funds"}
	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"BUY"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Insufficient funds"}`, rec.Body.String())

	api.broker.OrderErr = &helpers.BrokerError{Message: "timeout", Transport: true}
	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"BUY"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOrdersWithoutSession(t *testing.T) {
	api := newTestAPI(t, true, "")
	rec := api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"BUY"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnconfiguredBroker(t *testing.T) {
	api := newTestAPI(t, false, "")

	rec := api.do(t, http.MethodGet, "/api/v1/zerodha/login-url", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/market/orders", `{"tradingsymbol":"TCS","quantity":1,"transaction_type":"BUY"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/market/nifty50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"page":1,"page_size":25}`, rec.Body.String())
}

func TestZerodhaSession(t *testing.T) {
	api := newTestAPI(t, true, "")

	rec := api.do(t, http.MethodGet, "/api/v1/zerodha/login-url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["login_url"], "api_key=")

	rec = api.do(t, http.MethodPost, "/api/v1/zerodha/session", `{"request_token":"req-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	token, ok := api.tokens.Resolve(context.Background())
	require.True(t, ok)
	assert.Equal(t, "granted", token)

	rec = api.do(t, http.MethodPost, "/api/v1/zerodha/session", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
