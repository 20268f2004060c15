// Package brokertest provides an in-memory broker for tests.
package brokertest

import (
	"sync"
	"time"

	"trading-backend/src/models"
)

// Fake implements interfaces.IBroker with canned data and per-method call
// counters. Set the *Err fields to make a method fail.
type Fake struct {
	mu sync.Mutex

	Token         string
	InstrumentSet []models.MInstrument
	Prices        map[string]float64 // "EXCHANGE:SYMBOL" -> last price
	Held          []models.MPosition
	Bars          map[int64][]models.MCandle
	OrderID       string

	SessionErr    error
	InstrumentErr error
	QuoteErr      error
	PositionErr   error
	HistoryErr    error
	OrderErr      error

	calls     map[string]int
	lastOrder *models.MOrderParams
	quoteKeys [][]string
}

func New() *Fake {
	return &Fake{
		Token:   "access-token",
		Prices:  map[string]float64{},
		Bars:    map[int64][]models.MCandle{},
		OrderID: "order-1",
		calls:   map[string]int{},
	}
}

func (f *Fake) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[method]++
}

// Calls returns how often method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// LastOrder returns the params of the most recent PlaceOrder call.
func (f *Fake) LastOrder() *models.MOrderParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

// QuoteBatches returns the key sets passed to Quotes.
func (f *Fake) QuoteBatches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.quoteKeys...)
}

func (f *Fake) LoginURL() string {
	return "https://kite.example/connect/login?api_key=test&v=3"
}

func (f *Fake) GenerateSession(requestToken string) (string, error) {
	f.count("GenerateSession")
	if f.SessionErr != nil {
		return "", f.SessionErr
	}
	return f.Token, nil
}

func (f *Fake) Instruments(accessToken, exchange string) ([]models.MInstrument, error) {
	f.count("Instruments")
	if f.InstrumentErr != nil {
		return nil, f.InstrumentErr
	}
	return append([]models.MInstrument(nil), f.InstrumentSet...), nil
}

func (f *Fake) Quotes(accessToken string, keys []string) (map[string]models.MQuote, error) {
	f.count("Quotes")
	f.mu.Lock()
	f.quoteKeys = append(f.quoteKeys, append([]string(nil), keys...))
	f.mu.Unlock()
	if f.QuoteErr != nil {
		return nil, f.QuoteErr
	}
	out := make(map[string]models.MQuote, len(keys))
	for _, k := range keys {
		if price, ok := f.Prices[k]; ok {
			out[k] = models.MQuote{LastPrice: price}
		}
	}
	return out, nil
}

func (f *Fake) Positions(accessToken string) ([]models.MPosition, error) {
	f.count("Positions")
	if f.PositionErr != nil {
		return nil, f.PositionErr
	}
	return append([]models.MPosition(nil), f.Held...), nil
}

func (f *Fake) HistoricalData(accessToken string, instrumentToken int64, interval string, from, to time.Time) ([]models.MCandle, error) {
	f.count("HistoricalData")
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return append([]models.MCandle(nil), f.Bars[instrumentToken]...), nil
}

func (f *Fake) PlaceOrder(accessToken string, params models.MOrderParams) (string, error) {
	f.count("PlaceOrder")
	f.mu.Lock()
	p := params
	f.lastOrder = &p
	f.mu.Unlock()
	if f.OrderErr != nil {
		return "", f.OrderErr
	}
	return f.OrderID, nil
}
