package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for the JSON feeds the resolver reads.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get fetches url with params encoded as the query string. Any status
	// other than 200 is an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
