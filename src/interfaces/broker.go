package interfaces

import (
	"time"

	"trading-backend/src/models"
)

// -----------------------------------------------------------------------------
// IBroker defines the brokerage calls the backend depends on.
// Every authenticated call takes the access token explicitly so that one
// broker value can be shared across requests.
// Failures are returned as *helpers.BrokerError.
// -----------------------------------------------------------------------------

type IBroker interface {

	// LoginURL returns the broker login page for the configured API key.
	LoginURL() string

	// -----------------------------------------------------------------------------

	// GenerateSession exchanges a request token for an access token.
	GenerateSession(requestToken string) (string, error)

	// -----------------------------------------------------------------------------

	// Instruments returns the instrument catalog of one exchange.
	Instruments(accessToken, exchange string) ([]models.MInstrument, error)

	// -----------------------------------------------------------------------------

	// Quotes returns quotes keyed by "EXCHANGE:SYMBOL". Unknown keys are absent.
	Quotes(accessToken string, keys []string) (map[string]models.MQuote, error)

	// -----------------------------------------------------------------------------

	// Positions returns the net positions of the session's user.
	Positions(accessToken string) ([]models.MPosition, error)

	// -----------------------------------------------------------------------------

	// HistoricalData returns candles for one instrument between from and to.
	HistoricalData(accessToken string, instrumentToken int64, interval string, from, to time.Time) ([]models.MCandle, error)

	// -----------------------------------------------------------------------------

	// PlaceOrder submits an order and returns the broker order id.
	PlaceOrder(accessToken string, params models.MOrderParams) (string, error)
}
