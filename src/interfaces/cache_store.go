package interfaces

import (
	"context"

	"trading-backend/src/models"
)

// -----------------------------------------------------------------------------
// ICacheStore is the backend of one cache family.
// -----------------------------------------------------------------------------

type ICacheStore[T any] interface {

	// Load returns the entry for key and whether one exists. Stale entries are
	// returned as well; staleness is decided by the caller.
	Load(ctx context.Context, key string) (models.MCacheEntry[T], bool, error)

	// -----------------------------------------------------------------------------

	// Save replaces the entry for key.
	Save(ctx context.Context, key string, entry models.MCacheEntry[T]) error
}
