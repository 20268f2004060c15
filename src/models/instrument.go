package models

import "strings"

// MInstrument is one row of the broker instrument catalog.
type MInstrument struct {
	InstrumentToken int64  `json:"instrument_token" db:"instrument_token"`
	ExchangeToken   int64  `json:"exchange_token" db:"exchange_token"`
	TradingSymbol   string `json:"tradingsymbol" db:"trading_symbol"`
	Name            string `json:"name" db:"name"`
	InstrumentType  string `json:"instrument_type" db:"instrument_type"`
	Segment         string `json:"segment" db:"segment"`
	Exchange        string `json:"exchange" db:"exchange"`
}

const (
	ExchangeNSE      = "NSE"
	InstrumentTypeEQ = "EQ"
)

// IsNSEEquity reports whether the instrument is an NSE listed equity.
func (i MInstrument) IsNSEEquity() bool {
	return strings.EqualFold(i.Exchange, ExchangeNSE) && strings.EqualFold(i.InstrumentType, InstrumentTypeEQ)
}

// DisplayName falls back to the trading symbol when the catalog has no name.
func (i MInstrument) DisplayName() string {
	if strings.TrimSpace(i.Name) == "" {
		return i.TradingSymbol
	}
	return i.Name
}

// QuoteKey normalizes an exchange and symbol into the "EXCHANGE:SYMBOL" form.
func QuoteKey(exchange, symbol string) string {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		exchange = ExchangeNSE
	}
	return exchange + ":" + strings.ToUpper(strings.TrimSpace(symbol))
}
