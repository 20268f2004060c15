package interfaces

import (
	"context"

	"trading-backend/src/models"
)

// -----------------------------------------------------------------------------
// ISettingsStore persists application settings such as the broker token.
// -----------------------------------------------------------------------------

type ISettingsStore interface {

	// GetSetting returns the value for key and whether it exists.
	GetSetting(ctx context.Context, key string) (string, bool, error)

	// -----------------------------------------------------------------------------

	// SetSetting inserts or replaces the value for key.
	SetSetting(ctx context.Context, key, value string) error
}

// -----------------------------------------------------------------------------
// IMarketRepository is read access to the instrument and stocks tables.
// -----------------------------------------------------------------------------

type IMarketRepository interface {

	// ListInstruments returns instrument rows, optionally for one exchange.
	ListInstruments(ctx context.Context, exchange string) ([]models.MInstrument, error)

	// -----------------------------------------------------------------------------

	// ListSegmentSymbols returns the symbols of the stocks rows in a segment.
	ListSegmentSymbols(ctx context.Context, segment string) ([]string, error)
}

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {
	ISettingsStore
	IMarketRepository

	// Initialize opens the connection and creates missing tables.
	Initialize() error

	// Close the database connection
	Close() error
}
