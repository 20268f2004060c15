package models

import "strings"

// MPosition is a net position reported by the broker.
type MPosition struct {
	TradingSymbol   string  `json:"tradingsymbol"`
	Exchange        string  `json:"exchange"`
	InstrumentToken int64   `json:"instrument_token"`
	Product         string  `json:"product"`
	Quantity        int     `json:"quantity"`
	BuyQuantity     int     `json:"buy_quantity"`
	SellQuantity    int     `json:"sell_quantity"`
	AveragePrice    float64 `json:"average_price"`
	LastPrice       float64 `json:"last_price"`
	PnL             float64 `json:"pnl"`
}

// NetQuantity is the signed holding. Brokers that only report the buy and sell
// legs get the difference of the two.
func (p MPosition) NetQuantity() int {
	if p.Quantity == 0 && (p.BuyQuantity != 0 || p.SellQuantity != 0) {
		return p.BuyQuantity - p.SellQuantity
	}
	return p.Quantity
}

// -----------------------------------------------------------------------------

// PositionStatus is the tri-state view of a net quantity.
type PositionStatus string

const (
	PositionLong    PositionStatus = "Long"
	PositionShort   PositionStatus = "Short"
	PositionNeutral PositionStatus = "Neutral"
)

// StatusOf derives the status from a signed quantity.
func StatusOf(quantity int) PositionStatus {
	switch {
	case quantity > 0:
		return PositionLong
	case quantity < 0:
		return PositionShort
	default:
		return PositionNeutral
	}
}

// -----------------------------------------------------------------------------

// PositionFilter restricts rows by their derived position status.
type PositionFilter uint8

const (
	_position_filter_beg PositionFilter = iota
	PositionFilterLong
	PositionFilterShort
	PositionFilterNeutral
	PositionFilterOpen
	_position_filter_end

	PositionFilterNone PositionFilter = 0
)

func (f PositionFilter) IsAvailable() bool {
	return f > _position_filter_beg && f < _position_filter_end
}

// ParsePositionFilter maps a query value to a filter. Empty means no filter.
func ParsePositionFilter(s string) (PositionFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PositionFilterNone, true
	case "long":
		return PositionFilterLong, true
	case "short":
		return PositionFilterShort, true
	case "neutral":
		return PositionFilterNeutral, true
	case "open":
		return PositionFilterOpen, true
	}
	return PositionFilterNone, false
}

// Match reports whether a net quantity passes the filter.
func (f PositionFilter) Match(quantity int) bool {
	switch f {
	case PositionFilterLong:
		return quantity > 0
	case PositionFilterShort:
		return quantity < 0
	case PositionFilterNeutral:
		return quantity == 0
	case PositionFilterOpen:
		return quantity != 0
	}
	return true
}
