package models

// MOrderRequest is the inbound order. Optional fields are pointers so that an
// absent value can be told apart from a zero value.
type MOrderRequest struct {
	TradingSymbol     string   `json:"tradingsymbol"`
	Quantity          *int     `json:"quantity"`
	TransactionType   string   `json:"transaction_type"`
	Exchange          *string  `json:"exchange"`
	OrderType         *string  `json:"order_type"`
	Product           *string  `json:"product"`
	Validity          *string  `json:"validity"`
	Variety           *string  `json:"variety"`
	Price             *float64 `json:"price"`
	TriggerPrice      *float64 `json:"trigger_price"`
	DisclosedQuantity *int     `json:"disclosed_quantity"`
	Tag               *string  `json:"tag"`
}

// MOrderParams is a validated order ready for the broker. Nil pointers are
// left out of the broker call.
type MOrderParams struct {
	Variety           string
	TradingSymbol     string
	Exchange          string
	TransactionType   string
	OrderType         string
	Product           string
	Validity          string
	Quantity          int
	Price             *float64
	TriggerPrice      *float64
	DisclosedQuantity *int
	Tag               *string
}

// MOrderResult carries only the broker-assigned order id.
type MOrderResult struct {
	OrderID string `json:"order_id"`
}

const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"

	DefaultOrderExchange = ExchangeNSE
	DefaultOrderType     = "MARKET"
	DefaultProduct       = "CNC"
	DefaultValidity      = "DAY"
	DefaultVariety       = "regular"
)
