package orders

import (
	"context"
	"fmt"
	"strings"

	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/models"
)

// Gateway validates orders and forwards them to the broker. It keeps no
// order state.
type Gateway struct {
	Broker  interfaces.IBroker
	Tokens  interfaces.ITokenProvider
	Catalog interfaces.IInstrumentCatalog
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

// NewGateway wires a gateway. broker is nil when no API credentials are set.
func NewGateway(broker interfaces.IBroker, tokens interfaces.ITokenProvider, catalog interfaces.IInstrumentCatalog, log *logger.Logger) *Gateway {
	return &Gateway{
		Broker:  broker,
		Tokens:  tokens,
		Catalog: catalog,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Validate checks the request fields that need no broker and applies the
// defaults. Absent optionals stay nil.
func Validate(req models.MOrderRequest) (models.MOrderParams, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.TradingSymbol))
	if symbol == "" {
		return models.MOrderParams{}, helpers.NewBadRequest("tradingsymbol is required", nil)
	}
	if req.Quantity == nil || *req.Quantity <= 0 {
		return models.MOrderParams{}, helpers.NewBadRequest("quantity must be a positive integer", nil)
	}
	side := strings.TrimSpace(req.TransactionType)
	if side != models.TransactionBuy && side != models.TransactionSell {
		return models.MOrderParams{}, helpers.NewBadRequest(fmt.Sprintf("transaction_type must be %s or %s", models.TransactionBuy, models.TransactionSell), nil)
	}
	if req.DisclosedQuantity != nil && *req.DisclosedQuantity < 0 {
		return models.MOrderParams{}, helpers.NewBadRequest("disclosed_quantity must not be negative", nil)
	}

	return models.MOrderParams{
		Variety:           lowerOr(req.Variety, models.DefaultVariety),
		TradingSymbol:     symbol,
		Exchange:          upperOr(req.Exchange, models.DefaultOrderExchange),
		TransactionType:   side,
		OrderType:         upperOr(req.OrderType, models.DefaultOrderType),
		Product:           upperOr(req.Product, models.DefaultProduct),
		Validity:          upperOr(req.Validity, models.DefaultValidity),
		Quantity:          *req.Quantity,
		Price:             req.Price,
		TriggerPrice:      req.TriggerPrice,
		DisclosedQuantity: req.DisclosedQuantity,
		Tag:               req.Tag,
	}, nil
}

func upperOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.ToUpper(strings.TrimSpace(*v))
}

func lowerOr(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.ToLower(strings.TrimSpace(*v))
}

// -----------------------------------------------------------------------------

// PlaceOrder validates req and submits it. Nothing reaches the broker unless
// every check passes.
func (g *Gateway) PlaceOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	params, err := Validate(req)
	if err != nil {
		return models.MOrderResult{}, err
	}

	if g.Broker == nil {
		return models.MOrderResult{}, helpers.NewServiceUnavailable("broker is not configured")
	}
	token, ok := g.Tokens.Resolve(ctx)
	if !ok {
		return models.MOrderResult{}, helpers.NewUnauthenticated("broker session required: log in first")
	}

	equities, err := g.Catalog.EquityMap(ctx)
	if err != nil {
		return models.MOrderResult{}, err
	}
	if _, ok := equities[params.TradingSymbol]; !ok {
		return models.MOrderResult{}, helpers.NewBadRequest(fmt.Sprintf("unknown symbol %s", params.TradingSymbol), nil)
	}

	orderID, err := g.Broker.PlaceOrder(token, params)
	if err != nil {
		return models.MOrderResult{}, classify(err)
	}
	g.Logger.Info("Order %s placed: %s %d %s", orderID, params.TransactionType, params.Quantity, params.TradingSymbol)
	return models.MOrderResult{OrderID: orderID}, nil
}

// classify maps a failed placement: transport failures are upstream errors,
// a rejected token is unauthenticated, everything else is a rejection.
func classify(err error) error {
	be, ok := helpers.AsBrokerError(err)
	switch {
	case !ok || be.Transport:
		return helpers.NewUpstream("order placement failed", err)
	case be.TokenRejected():
		return helpers.UpstreamFailure("order placement", err)
	}
	return helpers.NewBadRequest("order rejected", err)
}
