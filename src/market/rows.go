package market

import (
	"context"
	"sort"
	"strings"

	"trading-backend/src/models"
	"trading-backend/src/universe"

	"golang.org/x/sync/errgroup"
)

// sortKeys are the row comparisons per sort field.
var sortKeys = map[models.SortField]func(a, b models.MRow) bool{
	models.SortByID: func(a, b models.MRow) bool {
		return a.ID < b.ID
	},
	models.SortByName: func(a, b models.MRow) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	},
	models.SortByPrice: func(a, b models.MRow) bool {
		return priceOf(a) < priceOf(b)
	},
	models.SortByPosition: func(a, b models.MRow) bool {
		return a.Position < b.Position
	},
}

func priceOf(r models.MRow) float64 {
	if r.Price == nil {
		return 0
	}
	return *r.Price
}

// -----------------------------------------------------------------------------

// normalize clamps paging to valid values.
func (s *MarketService) normalize(q models.MRowQuery) models.MRowQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = s.Config.Market.DefaultPageSize
	}
	if limit := s.Config.Market.MaxPageSize; limit > 0 && q.PageSize > limit {
		q.PageSize = limit
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if q.Scale == "" {
		q.Scale = models.DefaultScale
	}
	if !q.SortBy.IsAvailable() {
		q.SortBy = models.SortByID
	}
	return q
}

// -----------------------------------------------------------------------------

// BuildRows filters the segment's symbols, pages them and composes rows for
// the page. Sorting applies to the page only.
func (s *MarketService) BuildRows(ctx context.Context, q models.MRowQuery) (models.MRowPage, error) {
	q = s.normalize(q)

	equities, err := s.EquityMap(ctx)
	if err != nil {
		return models.MRowPage{}, err
	}
	symbols, err := s.Universe.Resolve(ctx, q.Segment, "")
	if err != nil {
		return models.MRowPage{}, err
	}

	// Catalog membership, then search.
	search := strings.ToLower(strings.TrimSpace(q.Search))
	candidates := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		inst, ok := equities[symbol]
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(symbol), search) &&
			!strings.Contains(strings.ToLower(inst.DisplayName()), search) {
			continue
		}
		candidates = append(candidates, symbol)
	}

	if category := strings.TrimSpace(q.Category); category != "" && q.Segment.IsBroad() {
		members, _ := universe.CategorySymbols(category)
		candidates = universe.Intersect(candidates, members)
	}

	positions, err := s.Positions(ctx)
	if err != nil {
		return models.MRowPage{}, err
	}
	held := netQuantities(positions)

	if q.Position.IsAvailable() {
		filtered := candidates[:0]
		for _, symbol := range candidates {
			if q.Position.Match(held[symbol]) {
				filtered = append(filtered, symbol)
			}
		}
		candidates = filtered
	}

	page := models.MRowPage{
		Items:    []models.MRow{},
		Total:    len(candidates),
		Page:     q.Page,
		PageSize: q.PageSize,
	}

	start := (q.Page - 1) * q.PageSize
	if start >= len(candidates) {
		return page, nil
	}
	end := start + q.PageSize
	if end > len(candidates) {
		end = len(candidates)
	}
	pageSymbols := candidates[start:end]

	quotes, err := s.Quotes(ctx, pageSymbols)
	if err != nil {
		return models.MRowPage{}, err
	}

	candles := make([][]models.MCandle, len(pageSymbols))
	if q.IncludeCandles {
		if candles, err = s.pageCandles(ctx, pageSymbols, equities, q.Scale); err != nil {
			return models.MRowPage{}, err
		}
	}

	for i, symbol := range pageSymbols {
		inst := equities[symbol]
		row := models.MRow{
			ID:              inst.InstrumentToken,
			InstrumentToken: inst.InstrumentToken,
			TradingSymbol:   inst.TradingSymbol,
			Name:            inst.DisplayName(),
			Position:        models.StatusOf(held[symbol]),
			Candles:         candles[i],
		}
		if quote, ok := quotes[symbol]; ok {
			price := quote.LastPrice
			row.Price = &price
		}
		if row.Candles == nil {
			row.Candles = []models.MCandle{}
		}
		page.Items = append(page.Items, row)
	}

	less := sortKeys[q.SortBy]
	sort.SliceStable(page.Items, func(i, j int) bool {
		if q.SortDesc {
			return less(page.Items[j], page.Items[i])
		}
		return less(page.Items[i], page.Items[j])
	})
	return page, nil
}

// pageCandles fetches candle windows for the page with bounded concurrency.
func (s *MarketService) pageCandles(ctx context.Context, symbols []string, equities map[string]models.MInstrument, scale models.Scale) ([][]models.MCandle, error) {
	out := make([][]models.MCandle, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	if n := s.Config.Market.CandleConcurrency; n > 0 {
		g.SetLimit(n)
	}
	for i, symbol := range symbols {
		token := equities[symbol].InstrumentToken
		g.Go(func() error {
			candles, err := s.Candles(gctx, token, scale)
			if err != nil {
				return err
			}
			out[i] = candles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
