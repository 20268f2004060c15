package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trading-backend/src/interfaces"
)

type indexFeedResponse struct {
	Data []struct {
		Symbol string `json:"symbol"`
	} `json:"data"`
}

// fetchIndexMembers reads an index membership list from the external feed.
func fetchIndexMembers(ctx context.Context, nm interfaces.INetworkManager, url, index string) ([]string, error) {
	body, err := nm.Get(ctx, url, map[string]string{"index": index})
	if err != nil {
		return nil, err
	}

	var resp indexFeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode index feed: %w", err)
	}

	symbols := make([]string, 0, len(resp.Data))
	for _, row := range resp.Data {
		if s := strings.ToUpper(strings.TrimSpace(row.Symbol)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols, nil
}
