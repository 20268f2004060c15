package orders

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"trading-backend/src/broker/brokertest"
	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Resolve(context.Context) (string, bool) {
	return string(s), s != ""
}

type staticCatalog map[string]models.MInstrument

func (c staticCatalog) EquityMap(context.Context) (map[string]models.MInstrument, error) {
	return c, nil
}

var catalog = staticCatalog{
	"TCS":  {InstrumentToken: 2953217, TradingSymbol: "TCS", Exchange: "NSE", InstrumentType: "EQ"},
	"INFY": {InstrumentToken: 408065, TradingSymbol: "INFY", Exchange: "NSE", InstrumentType: "EQ"},
}

func ptr[T any](v T) *T { return &v }

func newGateway(broker interfaces.IBroker, token string) *Gateway {
	return NewGateway(broker, staticTokens(token), catalog, logger.NewLogger(nil, "Orders"))
}

// -----------------------------------------------------------------------------

func TestValidateAppliesDefaults(t *testing.T) {
	params, err := Validate(models.MOrderRequest{TradingSymbol: "tcs", Quantity: ptr(3), TransactionType: "BUY"})
	require.NoError(t, err)
	assert.Equal(t, models.MOrderParams{
		Variety:         "regular",
		TradingSymbol:   "TCS",
		Exchange:        "NSE",
		TransactionType: "BUY",
		OrderType:       "MARKET",
		Product:         "CNC",
		Validity:        "DAY",
		Quantity:        3,
	}, params)
	assert.Nil(t, params.Price)
	assert.Nil(t, params.TriggerPrice)
	assert.Nil(t, params.Tag)
}

func TestValidateNormalizesCase(t *testing.T) {
	params, err := Validate(models.MOrderRequest{
		TradingSymbol:   "INFY",
		Quantity:        ptr(1),
		TransactionType: "SELL",
		Exchange:        ptr("bse"),
		OrderType:       ptr("limit"),
		Product:         ptr("mis"),
		Validity:        ptr("ioc"),
		Variety:         ptr("AMO"),
		Price:           ptr(1499.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "BSE", params.Exchange)
	assert.Equal(t, "LIMIT", params.OrderType)
	assert.Equal(t, "MIS", params.Product)
	assert.Equal(t, "IOC", params.Validity)
	assert.Equal(t, "amo", params.Variety)
	require.NotNil(t, params.Price)
	assert.Equal(t, 1499.5, *params.Price)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		req  models.MOrderRequest
	}{
		{"missing symbol", models.MOrderRequest{Quantity: ptr(1), TransactionType: "BUY"}},
		{"missing quantity", models.MOrderRequest{TradingSymbol: "TCS", TransactionType: "BUY"}},
		{"zero quantity", models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(0), TransactionType: "BUY"}},
		{"negative quantity", models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(-5), TransactionType: "BUY"}},
		{"hold", models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "HOLD"}},
		{"lower case side", models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "buy"}},
		{"negative disclosed", models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "BUY", DisclosedQuantity: ptr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.req)
			assert.Equal(t, http.StatusBadRequest, helpers.StatusCode(err))
		})
	}
}

func TestInvalidOrdersNeverReachBroker(t *testing.T) {
	b := brokertest.New()
	g := newGateway(b, "tok")

	for _, req := range []models.MOrderRequest{
		{TradingSymbol: "TCS", Quantity: ptr(0), TransactionType: "BUY"},
		{TradingSymbol: "TCS", Quantity: ptr(-1), TransactionType: "SELL"},
		{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "HOLD"},
		{TradingSymbol: "NOTLISTED", Quantity: ptr(1), TransactionType: "BUY"},
	} {
		_, err := g.PlaceOrder(context.Background(), req)
		assert.Equal(t, http.StatusBadRequest, helpers.StatusCode(err))
	}
	assert.Equal(t, 0, b.Calls("PlaceOrder"))
}

func TestPlaceOrder(t *testing.T) {
	b := brokertest.New()
	b.OrderID = "151220000000000"
	g := newGateway(b, "tok")

	res, err := g.PlaceOrder(context.Background(), models.MOrderRequest{TradingSymbol: "tcs", Quantity: ptr(2), TransactionType: "BUY", Tag: ptr("dash")})
	require.NoError(t, err)
	assert.Equal(t, models.MOrderResult{OrderID: "151220000000000"}, res)

	sent := b.LastOrder()
	require.NotNil(t, sent)
	assert.Equal(t, "TCS", sent.TradingSymbol)
	assert.Equal(t, "regular", sent.Variety)
	require.NotNil(t, sent.Tag)
	assert.Equal(t, "dash", *sent.Tag)
	assert.Nil(t, sent.Price)
}

func TestPlaceOrderPreconditions(t *testing.T) {
	req := models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "BUY"}

	_, err := newGateway(nil, "tok").PlaceOrder(context.Background(), req)
	assert.Equal(t, http.StatusServiceUnavailable, helpers.StatusCode(err))

	b := brokertest.New()
	_, err = newGateway(b, "").PlaceOrder(context.Background(), req)
	assert.Equal(t, http.StatusForbidden, helpers.StatusCode(err))
	assert.Equal(t, 0, b.Calls("PlaceOrder"))
}

func TestPlaceOrderBrokerFailures(t *testing.T) {
	req := models.MOrderRequest{TradingSymbol: "TCS", Quantity: ptr(1), TransactionType: "BUY"}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "rejection carries broker message",
			err:     &helpers.BrokerError{Type: "InputException", Message: "Insufficient funds. Required margin is 3500.00"},
			status:  http.StatusBadRequest,
			message: "Insufficient funds. Required margin is 3500.00",
		},
		{
			name:   "transport",
			err:    &helpers.BrokerError{Type: "NetworkException", Message: "Error when sending request", Transport: true},
			status: http.StatusBadGateway,
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusBadGateway,
		},
		{
			name:   "token rejected",
			err:    &helpers.BrokerError{Type: "TokenException", Message: "Incorrect api_key or access_token."},
			status: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := brokertest.New()
			b.OrderErr = tt.err
			_, err := newGateway(b, "tok").PlaceOrder(context.Background(), req)
			assert.Equal(t, tt.status, helpers.StatusCode(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, helpers.PublicMessage(err))
			}
		})
	}
}
