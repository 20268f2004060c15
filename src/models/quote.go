package models

// MQuote is the last traded price of one instrument.
type MQuote struct {
	InstrumentToken int64   `json:"instrument_token"`
	LastPrice       float64 `json:"last_price"`
}
