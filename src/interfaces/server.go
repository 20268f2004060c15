package interfaces

import "context"

// -----------------------------------------------------------------------------
// IServer is a long running listener owned by main.
// -----------------------------------------------------------------------------

type IServer interface {

	// Start blocks serving until the listener fails or is stopped.
	Start() error

	// -----------------------------------------------------------------------------

	// Stop shuts the listener down gracefully.
	Stop(ctx context.Context) error
}
