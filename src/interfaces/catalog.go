package interfaces

import (
	"context"

	"trading-backend/src/models"
)

// -----------------------------------------------------------------------------
// IInstrumentCatalog exposes the current NSE equity catalog.
// -----------------------------------------------------------------------------

type IInstrumentCatalog interface {

	// EquityMap returns NSE equities keyed by trading symbol.
	EquityMap(ctx context.Context) (map[string]models.MInstrument, error)
}

// -----------------------------------------------------------------------------
// ITokenProvider resolves the broker access token.
// -----------------------------------------------------------------------------

type ITokenProvider interface {

	// Resolve returns the access token and whether one was found.
	Resolve(ctx context.Context) (string, bool)
}
