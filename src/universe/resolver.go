package universe

import (
	"context"
	"fmt"

	"trading-backend/src/cache"
	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/models"
)

// Resolver builds the ordered symbol set of a segment from the instrument
// catalog, the broad index file and the sector index feed.
type Resolver struct {
	Config     models.MUniverseConfig
	Catalog    interfaces.IInstrumentCatalog
	Network    interfaces.INetworkManager
	Repository interfaces.IMarketRepository
	IndexLists *cache.Family[[]string]
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

// NewResolver wires a resolver. repo may be nil when storage is disabled.
// indexLists should serve stale values on error.
func NewResolver(cfg models.MUniverseConfig, catalog interfaces.IInstrumentCatalog, nm interfaces.INetworkManager, repo interfaces.IMarketRepository, indexLists *cache.Family[[]string], log *logger.Logger) *Resolver {
	return &Resolver{
		Config:     cfg,
		Catalog:    catalog,
		Network:    nm,
		Repository: repo,
		IndexLists: indexLists,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// BroadMembers reads the broad index file on every call so that edits apply
// without a restart.
func (r *Resolver) BroadMembers() ([]string, error) {
	symbols, err := ReadSymbolFile(r.Config.BroadIndexFile)
	if err != nil {
		return nil, helpers.NewMisconfiguration(fmt.Sprintf("universe file %s unavailable", r.Config.BroadIndexFile), err)
	}
	return symbols, nil
}

// SectorMembers returns the sector index list from the feed cache. When the
// feed fails with nothing cached, the stocks table is consulted.
func (r *Resolver) SectorMembers(ctx context.Context, segment models.Segment) []string {
	index := r.Config.SectorIndex
	symbols, err := r.IndexLists.GetOrRefresh(ctx, index, func(ctx context.Context) ([]string, error) {
		return fetchIndexMembers(ctx, r.Network, r.Config.IndexFeedURL, index)
	})
	if err != nil {
		r.Logger.Warning("Index list %s unavailable: %v", index, err)
	}
	if len(symbols) > 0 || r.Repository == nil {
		return symbols
	}

	fallback, err := r.Repository.ListSegmentSymbols(ctx, string(segment))
	if err != nil {
		r.Logger.Warning("Stocks fallback for %s failed: %v", segment, err)
		return nil
	}
	if len(fallback) > 0 {
		r.Logger.Info("Using %d stored symbols for %s", len(fallback), segment)
	}
	return fallback
}

// -----------------------------------------------------------------------------

// Resolve returns the segment's symbols that are listed NSE equities, in
// membership list order. A non-empty category narrows the broad index; an
// unknown category yields no symbols.
func (r *Resolver) Resolve(ctx context.Context, segment models.Segment, category string) ([]string, error) {
	equities, err := r.Catalog.EquityMap(ctx)
	if err != nil {
		return nil, err
	}

	broad, err := r.BroadMembers()
	if err != nil {
		return nil, err
	}

	var members []string
	switch segment {
	case models.SegmentNifty50:
		members = broad
		if category != "" {
			symbols, ok := CategorySymbols(category)
			if !ok {
				return []string{}, nil
			}
			members = Intersect(members, symbols)
		}
	case models.SegmentBankNifty:
		members = Intersect(r.SectorMembers(ctx, segment), broad)
	default:
		return nil, helpers.NewBadRequest(fmt.Sprintf("unknown segment %q", segment), nil)
	}

	out := make([]string, 0, len(members))
	for _, symbol := range members {
		if _, ok := equities[symbol]; ok {
			out = append(out, symbol)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// Intersect keeps the symbols of list that are in set, in list order.
func Intersect(list, set []string) []string {
	allowed := make(map[string]struct{}, len(set))
	for _, s := range set {
		allowed[s] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := allowed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
