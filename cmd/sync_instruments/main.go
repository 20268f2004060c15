package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"trading-backend/src/broker/kite"
	"trading-backend/src/cache"
	"trading-backend/src/config"
	"trading-backend/src/credentials"
	"trading-backend/src/logger"
	"trading-backend/src/market"
	"trading-backend/src/models"
	"trading-backend/src/network"
	"trading-backend/src/storage"
	"trading-backend/src/universe"
	"trading-backend/src/utils"
)

// -----------------------------------------------------------------------------

// sync_instruments copies the broker's NSE catalog into the instrument table
// and the segment members into the stocks table, so that dashboards have
// symbols before the first broker login of the day.
func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewLogger(config, "SyncInstruments")

	if err := run(config, appLogger); err != nil {
		appLogger.Critical("Sync failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// run performs one sync. Every exit path closes the database.
func run(config *config.Config, appLogger *logger.Logger) error {
	if !config.Storage.Enabled {
		return errors.New("storage is disabled, nothing to sync into")
	}
	if !config.Broker.Configured() {
		return errors.New("broker credentials missing")
	}

	db, err := storage.NewDatabase(config.MConfig, logger.NewLogger(config, "Database"))
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	if err := db.Initialize(); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := kite.NewKiteBroker(config.Broker, logger.NewLogger(config, "Kite"))
	tokens := credentials.NewTokenStore(db, config.Broker.EnvFile, logger.NewLogger(config, "TokenStore"))
	token, ok := tokens.Resolve(ctx)
	if !ok {
		return errors.New("no access token: log in through /api/v1/zerodha/login-url first")
	}

	instruments, err := broker.Instruments(token, models.ExchangeNSE)
	if err != nil {
		return fmt.Errorf("fetch instruments: %w", err)
	}
	if err := db.SaveInstruments(ctx, instruments); err != nil {
		return fmt.Errorf("save instruments: %w", err)
	}
	appLogger.Info("Saved %d instruments", len(instruments))

	// Memory caches: this process lives for one sync.
	log := logger.NewLogger(config, "Cache")
	caches := market.Caches{
		Instruments: cache.NewFamily("instruments", time.Hour, cache.NewMemoryStore[[]models.MInstrument](), log),
		Quotes:      cache.NewFamily("quotes", time.Minute, cache.NewMemoryStore[models.MQuote](), log),
		Positions:   cache.NewFamily("positions", time.Minute, cache.NewMemoryStore[[]models.MPosition](), log),
		Candles:     cache.NewFamily("candles", time.Minute, cache.NewMemoryStore[[]models.MCandle](), log),
		IndexLists:  cache.NewFamily("index_lists", time.Hour, cache.NewMemoryStore[[]string](), log),
	}
	caches.IndexLists.StaleOnError = true
	svc := market.NewMarketService(config.MConfig, broker, tokens, db,
		network.NewNetworkManager(config.MConfig, logger.NewLogger(config, "NetworkManager")),
		caches, utils.NewTradingCalendar("xnse", logger.NewLogger(config, "Calendar")), logger.NewLogger(config, "MarketService"))

	stocks, err := segmentStocks(ctx, svc)
	if err != nil {
		return fmt.Errorf("build stocks: %w", err)
	}
	if err := db.SaveStocks(ctx, stocks); err != nil {
		return fmt.Errorf("save stocks: %w", err)
	}
	appLogger.Info("Saved %d stocks", len(stocks))
	return nil
}

// -----------------------------------------------------------------------------

// segmentStocks lists the members of both segments with their last price.
// Sector members are stored under the sector segment.
func segmentStocks(ctx context.Context, svc *market.MarketService) ([]models.MStock, error) {
	equities, err := svc.EquityMap(ctx)
	if err != nil {
		return nil, err
	}

	segments := map[string]models.Segment{}
	var order []string
	for _, segment := range []models.Segment{models.SegmentNifty50, models.SegmentBankNifty} {
		symbols, err := svc.Universe.Resolve(ctx, segment, "")
		if err != nil {
			return nil, err
		}
		for _, s := range symbols {
			if _, seen := segments[s]; !seen {
				order = append(order, s)
			}
			segments[s] = segment
		}
	}

	quotes, err := svc.Quotes(ctx, order)
	if err != nil {
		return nil, err
	}

	stocks := make([]models.MStock, 0, len(order))
	for _, symbol := range order {
		inst := equities[symbol]
		stocks = append(stocks, models.MStock{
			ID:        inst.InstrumentToken,
			Symbol:    symbol,
			Name:      inst.DisplayName(),
			Sector:    universe.CategoryOf(symbol),
			Segment:   string(segments[symbol]),
			LastPrice: quotes[symbol].LastPrice,
		})
	}
	return stocks, nil
}
