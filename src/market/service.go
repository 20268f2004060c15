package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading-backend/src/analysis"
	"trading-backend/src/cache"
	"trading-backend/src/helpers"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/models"
	"trading-backend/src/universe"
	"trading-backend/src/utils"
)

const (
	instrumentsKey = models.ExchangeNSE
	positionsKey   = "net"
)

// Caches holds one family per broker resource.
type Caches struct {
	Instruments *cache.Family[[]models.MInstrument]
	Quotes      *cache.Family[models.MQuote]
	Positions   *cache.Family[[]models.MPosition]
	Candles     *cache.Family[[]models.MCandle]
	IndexLists  *cache.Family[[]string]
}

// -----------------------------------------------------------------------------

// MarketService merges the broker catalog, quotes, positions and candles with
// the symbol universe. Reads without a broker session return empty results.
type MarketService struct {
	Config     *models.MConfig
	Broker     interfaces.IBroker
	Tokens     interfaces.ITokenProvider
	Repository interfaces.IMarketRepository
	Universe   *universe.Resolver
	Caches     Caches
	Calendar   *utils.TradingCalendar
	Resampler  *analysis.CandleResampler
	Logger     *logger.Logger
	now        func() time.Time
}

// -----------------------------------------------------------------------------

// NewMarketService wires the service and its universe resolver. broker is nil
// when no API credentials are configured; repo is nil without storage.
func NewMarketService(cfg *models.MConfig, broker interfaces.IBroker, tokens interfaces.ITokenProvider, repo interfaces.IMarketRepository, nm interfaces.INetworkManager, caches Caches, cal *utils.TradingCalendar, log *logger.Logger) *MarketService {
	s := &MarketService{
		Config:     cfg,
		Broker:     broker,
		Tokens:     tokens,
		Repository: repo,
		Caches:     caches,
		Calendar:   cal,
		Logger:     log,
		now:        time.Now,
	}
	openHour, openMinute := cal.SessionOpen()
	s.Resampler = analysis.NewCandleResampler(cal.Timezone, openHour, openMinute)
	s.Universe = universe.NewResolver(cfg.Universe, s, nm, repo, caches.IndexLists, log.Named("Universe"))
	return s
}

// SetClock replaces the time source used for candle windows.
func (s *MarketService) SetClock(now func() time.Time) {
	s.now = now
}

// -----------------------------------------------------------------------------

// session returns the access token when the broker can be called.
func (s *MarketService) session(ctx context.Context) (string, bool) {
	if s.Broker == nil {
		return "", false
	}
	return s.Tokens.Resolve(ctx)
}

// BrokerConfigured reports whether API credentials are present.
func (s *MarketService) BrokerConfigured() bool {
	return s.Broker != nil
}

// MarketOpen reports whether the exchange session is open right now.
func (s *MarketService) MarketOpen() bool {
	return s.Calendar.IsOpenOnMinute(s.now())
}

// Authenticated reports whether a broker session token resolves.
func (s *MarketService) Authenticated(ctx context.Context) bool {
	_, ok := s.session(ctx)
	return ok
}

// -----------------------------------------------------------------------------
// Instruments
// -----------------------------------------------------------------------------

// Catalog returns the NSE instrument catalog. Without a session the stored
// instrument table is used instead.
func (s *MarketService) Catalog(ctx context.Context) ([]models.MInstrument, error) {
	token, ok := s.session(ctx)
	if !ok {
		return s.storedInstruments(ctx), nil
	}

	return s.brokerCatalog(ctx, token)
}

func (s *MarketService) brokerCatalog(ctx context.Context, token string) ([]models.MInstrument, error) {
	instruments, err := s.Caches.Instruments.GetOrRefresh(ctx, instrumentsKey, func(ctx context.Context) ([]models.MInstrument, error) {
		return s.Broker.Instruments(token, models.ExchangeNSE)
	})
	if err != nil {
		return nil, helpers.UpstreamFailure("instruments", err)
	}
	return instruments, nil
}

func (s *MarketService) storedInstruments(ctx context.Context) []models.MInstrument {
	if s.Repository == nil {
		return nil
	}
	instruments, err := s.Repository.ListInstruments(ctx, models.ExchangeNSE)
	if err != nil {
		s.Logger.Warning("Failed to read stored instruments: %v", err)
		return nil
	}
	return instruments
}

// EquityMap returns NSE equities keyed by upper-case trading symbol.
func (s *MarketService) EquityMap(ctx context.Context) (map[string]models.MInstrument, error) {
	instruments, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.MInstrument, len(instruments))
	for _, inst := range instruments {
		if inst.IsNSEEquity() {
			out[strings.ToUpper(inst.TradingSymbol)] = inst
		}
	}
	return out, nil
}

// Instruments lists the instrument table, falling back to the catalog when
// the table is empty or unreadable.
func (s *MarketService) Instruments(ctx context.Context) ([]models.MInstrument, error) {
	if s.Repository != nil {
		rows, err := s.Repository.ListInstruments(ctx, "")
		if err != nil {
			s.Logger.Warning("Failed to list instruments: %v", err)
		} else if len(rows) > 0 {
			return rows, nil
		}
	}

	token, ok := s.session(ctx)
	if !ok {
		return []models.MInstrument{}, nil
	}
	return s.brokerCatalog(ctx, token)
}

// -----------------------------------------------------------------------------
// Positions
// -----------------------------------------------------------------------------

// Positions returns the net positions, or none without a session.
func (s *MarketService) Positions(ctx context.Context) ([]models.MPosition, error) {
	token, ok := s.session(ctx)
	if !ok {
		return []models.MPosition{}, nil
	}

	positions, err := s.Caches.Positions.GetOrRefresh(ctx, positionsKey, func(ctx context.Context) ([]models.MPosition, error) {
		return s.Broker.Positions(token)
	})
	if err != nil {
		return nil, helpers.UpstreamFailure("positions", err)
	}
	if positions == nil {
		positions = []models.MPosition{}
	}
	return positions, nil
}

// PositionViews returns positions with their derived status.
func (s *MarketService) PositionViews(ctx context.Context) ([]models.MPositionView, error) {
	positions, err := s.Positions(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.MPositionView, 0, len(positions))
	for _, p := range positions {
		net := p.NetQuantity()
		views = append(views, models.MPositionView{MPosition: p, NetQuantity: net, Status: models.StatusOf(net)})
	}
	return views, nil
}

// netQuantities sums net quantities per symbol across products.
func netQuantities(positions []models.MPosition) map[string]int {
	out := make(map[string]int, len(positions))
	for _, p := range positions {
		out[strings.ToUpper(p.TradingSymbol)] += p.NetQuantity()
	}
	return out
}

// -----------------------------------------------------------------------------
// Quotes
// -----------------------------------------------------------------------------

// Quotes returns quotes for NSE symbols keyed by symbol. Symbols the broker
// does not know are absent.
func (s *MarketService) Quotes(ctx context.Context, symbols []string) (map[string]models.MQuote, error) {
	out := make(map[string]models.MQuote, len(symbols))
	token, ok := s.session(ctx)
	if !ok || len(symbols) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, models.QuoteKey(models.ExchangeNSE, symbol))
	}

	quotes, err := s.Caches.Quotes.GetMany(ctx, keys, func(ctx context.Context, missing []string) (map[string]models.MQuote, error) {
		return s.Broker.Quotes(token, missing)
	})
	if err != nil {
		return nil, helpers.UpstreamFailure("quotes", err)
	}

	for _, symbol := range symbols {
		if q, ok := quotes[models.QuoteKey(models.ExchangeNSE, symbol)]; ok {
			out[symbol] = q
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Candles
// -----------------------------------------------------------------------------

// Candles returns the cached candle window of one instrument at a scale.
func (s *MarketService) Candles(ctx context.Context, instrumentToken int64, scale models.Scale) ([]models.MCandle, error) {
	token, ok := s.session(ctx)
	if !ok {
		return []models.MCandle{}, nil
	}

	key := fmt.Sprintf("%d:%s", instrumentToken, scale)
	candles, err := s.Caches.Candles.GetOrRefresh(ctx, key, func(ctx context.Context) ([]models.MCandle, error) {
		from, to := s.Calendar.CandleWindow(s.now(), scale)
		return s.fetchBars(token, instrumentToken, scale, from, to)
	})
	if err != nil {
		return nil, helpers.UpstreamFailure("historical data", err)
	}
	if candles == nil {
		candles = []models.MCandle{}
	}
	return candles, nil
}

// HistoricalData returns candles for an explicit range, bypassing the cache.
// Without a range it is the cached window of Candles.
func (s *MarketService) HistoricalData(ctx context.Context, instrumentToken int64, scale models.Scale, from, to *time.Time) ([]models.MCandle, error) {
	if from == nil && to == nil {
		return s.Candles(ctx, instrumentToken, scale)
	}

	token, ok := s.session(ctx)
	if !ok {
		return []models.MCandle{}, nil
	}

	defFrom, defTo := s.Calendar.CandleWindow(s.now(), scale)
	if from == nil {
		from = &defFrom
	}
	if to == nil {
		to = &defTo
	}
	if to.Before(*from) {
		return nil, helpers.NewBadRequest("to_date is before from_date", nil)
	}

	candles, err := s.fetchBars(token, instrumentToken, scale, *from, *to)
	if err != nil {
		return nil, helpers.UpstreamFailure("historical data", err)
	}
	if candles == nil {
		candles = []models.MCandle{}
	}
	return candles, nil
}

// fetchBars asks the broker for bars at the scale's interval and merges them
// when the scale is wider than any broker interval.
func (s *MarketService) fetchBars(token string, instrumentToken int64, scale models.Scale, from, to time.Time) ([]models.MCandle, error) {
	bars, err := s.Broker.HistoricalData(token, instrumentToken, scale.Interval(), from, to)
	if err != nil {
		return nil, err
	}
	return s.Resampler.Resample(bars, scale.Bucket()), nil
}
