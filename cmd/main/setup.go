package main

import (
	"context"
	"time"

	"trading-backend/src/broker/kite"
	"trading-backend/src/cache"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/market"
	"trading-backend/src/models"
	"trading-backend/src/storage"

	"github.com/go-redis/redis/v8"
)

// -----------------------------------------------------------------------------

// setupDatabase opens storage when enabled. A nil database means the
// settings and stocks fallbacks are skipped.
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) *storage.Database {
	if !config.Storage.Enabled {
		appLogger.Info("Storage disabled")
		return nil
	}

	db, err := storage.NewDatabase(config, logger.NewLogger(config, "Database"))
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	return db
}

// -----------------------------------------------------------------------------

// setupBroker returns nil when API credentials are missing.
func setupBroker(config *models.MConfig, appLogger *logger.Logger) interfaces.IBroker {
	if !config.Broker.Configured() {
		appLogger.Warning("Broker credentials missing: market reads return empty results")
		return nil
	}
	return kite.NewKiteBroker(config.Broker, logger.NewLogger(config, "Kite"))
}

// -----------------------------------------------------------------------------

// setupRedis connects to the shared cache backend, or returns nil for the
// memory backend.
func setupRedis(config *models.MConfig, appLogger *logger.Logger) *redis.Client {
	if config.Cache.Backend != "redis" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Cache.RedisAddr,
		Password: config.Cache.RedisPassword,
		DB:       config.Cache.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLogger.Critical("Failed to reach redis at %s: %v", config.Cache.RedisAddr, err)
	}
	appLogger.Info("Using redis cache at %s", config.Cache.RedisAddr)
	return client
}

// -----------------------------------------------------------------------------

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// setupCaches builds one family per resource on the selected backend.
func setupCaches(config *models.MConfig, client *redis.Client) market.Caches {
	cfg := config.Cache
	retention := time.Duration(cfg.RedisRetentionHours) * time.Hour
	log := logger.NewLogger(config, "Cache")

	caches := market.Caches{
		Instruments: cache.NewFamily("instruments", seconds(cfg.InstrumentsTTL), cache.NewStore[[]models.MInstrument](client, "instruments", retention), log),
		Quotes:      cache.NewFamily("quotes", seconds(cfg.QuotesTTL), cache.NewStore[models.MQuote](client, "quotes", retention), log),
		Positions:   cache.NewFamily("positions", seconds(cfg.PositionsTTL), cache.NewStore[[]models.MPosition](client, "positions", retention), log),
		Candles:     cache.NewFamily("candles", seconds(cfg.CandlesTTL), cache.NewStore[[]models.MCandle](client, "candles", retention), log),
		IndexLists:  cache.NewFamily("index_lists", seconds(cfg.IndexListTTL), cache.NewStore[[]string](client, "index_lists", retention), log),
	}
	caches.IndexLists.StaleOnError = true
	return caches
}
