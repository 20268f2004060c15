package kite

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"trading-backend/src/helpers"
	"trading-backend/src/logger"
	"trading-backend/src/models"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// errTypeNetwork is the Kite Connect error type for failed HTTP round trips.
const errTypeNetwork = "NetworkException"

// KiteBroker implements interfaces.IBroker on the Kite Connect v3 API.
// A kite client is built per call so the access token is never shared state.
type KiteBroker struct {
	Config     models.MBrokerConfig
	HttpClient *http.Client
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewKiteBroker(cfg models.MBrokerConfig, log *logger.Logger) *KiteBroker {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	return &KiteBroker{
		Config:     cfg,
		HttpClient: &http.Client{Timeout: timeout},
		Logger:     log,
	}
}

func (b *KiteBroker) client(accessToken string) *kiteconnect.Client {
	kc := kiteconnect.New(b.Config.APIKey)
	kc.SetHTTPClient(b.HttpClient)
	if b.Config.BaseURL != "" {
		kc.SetBaseURI(b.Config.BaseURL)
	}
	if accessToken != "" {
		kc.SetAccessToken(accessToken)
	}
	return kc
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) LoginURL() string {
	return b.client("").GetLoginURL()
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) GenerateSession(requestToken string) (string, error) {
	session, err := b.client("").GenerateSession(requestToken, b.Config.APISecret)
	if err != nil {
		return "", translate(err)
	}
	return session.AccessToken, nil
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) Instruments(accessToken, exchange string) ([]models.MInstrument, error) {
	rows, err := b.client(accessToken).GetInstrumentsByExchange(exchange)
	if err != nil {
		return nil, translate(err)
	}

	out := make([]models.MInstrument, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MInstrument{
			InstrumentToken: int64(r.InstrumentToken),
			ExchangeToken:   int64(r.ExchangeToken),
			TradingSymbol:   r.Tradingsymbol,
			Name:            r.Name,
			InstrumentType:  r.InstrumentType,
			Segment:         r.Segment,
			Exchange:        r.Exchange,
		})
	}
	b.Logger.Debug("Fetched %d instruments for %s", len(out), exchange)
	return out, nil
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) Quotes(accessToken string, keys []string) (map[string]models.MQuote, error) {
	out := make(map[string]models.MQuote, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	quotes, err := b.client(accessToken).GetQuote(keys...)
	if err != nil {
		return nil, translate(err)
	}
	for key, q := range quotes {
		out[key] = models.MQuote{
			InstrumentToken: int64(q.InstrumentToken),
			LastPrice:       q.LastPrice,
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) Positions(accessToken string) ([]models.MPosition, error) {
	positions, err := b.client(accessToken).GetPositions()
	if err != nil {
		return nil, translate(err)
	}

	out := make([]models.MPosition, 0, len(positions.Net))
	for _, p := range positions.Net {
		out = append(out, models.MPosition{
			TradingSymbol:   p.Tradingsymbol,
			Exchange:        p.Exchange,
			InstrumentToken: int64(p.InstrumentToken),
			Product:         p.Product,
			Quantity:        p.Quantity,
			BuyQuantity:     p.BuyQuantity,
			SellQuantity:    p.SellQuantity,
			AveragePrice:    p.AveragePrice,
			LastPrice:       p.LastPrice,
			PnL:             p.PnL,
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) HistoricalData(accessToken string, instrumentToken int64, interval string, from, to time.Time) ([]models.MCandle, error) {
	bars, err := b.client(accessToken).GetHistoricalData(int(instrumentToken), interval, from, to, false, false)
	if err != nil {
		return nil, translate(err)
	}

	out := make([]models.MCandle, 0, len(bars))
	for _, bar := range bars {
		out = append(out, models.MCandle{
			Date:   bar.Date.Time,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (b *KiteBroker) PlaceOrder(accessToken string, params models.MOrderParams) (string, error) {
	op := kiteconnect.OrderParams{
		Exchange:        params.Exchange,
		Tradingsymbol:   params.TradingSymbol,
		Validity:        params.Validity,
		Product:         params.Product,
		OrderType:       params.OrderType,
		TransactionType: params.TransactionType,
		Quantity:        params.Quantity,
	}
	// Unset optionals stay zero and are dropped by the form encoder.
	if params.Price != nil {
		op.Price = *params.Price
	}
	if params.TriggerPrice != nil {
		op.TriggerPrice = *params.TriggerPrice
	}
	if params.DisclosedQuantity != nil {
		op.DisclosedQuantity = *params.DisclosedQuantity
	}
	if params.Tag != nil {
		op.Tag = *params.Tag
	}

	resp, err := b.client(accessToken).PlaceOrder(params.Variety, op)
	if err != nil {
		return "", translate(err)
	}
	b.Logger.Info("Placed %s %s x%d: %s", params.TransactionType, params.TradingSymbol, params.Quantity, resp.OrderID)
	return resp.OrderID, nil
}

// -----------------------------------------------------------------------------

// translate turns a Kite Connect failure into a *helpers.BrokerError. Errors
// that did not come from an API response are transport failures.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var kv kiteconnect.Error
	if errors.As(err, &kv) {
		return fromKite(kv, err)
	}
	var kp *kiteconnect.Error
	if errors.As(err, &kp) && kp != nil {
		return fromKite(*kp, err)
	}
	return &helpers.BrokerError{Message: err.Error(), Transport: true, Cause: err}
}

func fromKite(e kiteconnect.Error, cause error) *helpers.BrokerError {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = e.ErrorType
	}
	return &helpers.BrokerError{
		Type:      e.ErrorType,
		Message:   msg,
		Transport: e.ErrorType == errTypeNetwork,
		Cause:     cause,
	}
}
