package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-backend/src/config"
	"trading-backend/src/credentials"
	"trading-backend/src/grpc_control"
	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/market"
	"trading-backend/src/network"
	"trading-backend/src/orders"
	"trading-backend/src/server"
	"trading-backend/src/utils"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config, config.Name)

	// 1. Storage and shared cache
	db := setupDatabase(config.MConfig, appLogger)
	redisClient := setupRedis(config.MConfig, appLogger)

	// 2. Broker session
	broker := setupBroker(config.MConfig, appLogger)
	var settings interfaces.ISettingsStore
	var repo interfaces.IMarketRepository
	if db != nil {
		settings, repo = db, db
	}
	tokens := credentials.NewTokenStore(settings, config.Broker.EnvFile, logger.NewLogger(config, "TokenStore"))
	sessions := credentials.NewSessionService(broker, tokens, logger.NewLogger(config, "Session"))

	// 3. Market data and orders
	networkManager := network.NewNetworkManager(config.MConfig, logger.NewLogger(config, "NetworkManager"))
	calendar := utils.NewTradingCalendar("xnse", logger.NewLogger(config, "Calendar"))
	marketService := market.NewMarketService(config.MConfig, broker, tokens, repo, networkManager,
		setupCaches(config.MConfig, redisClient), calendar, logger.NewLogger(config, "MarketService"))
	gateway := orders.NewGateway(broker, tokens, marketService, logger.NewLogger(config, "Orders"))

	// 4. Servers
	servers := []interfaces.IServer{
		server.NewAPIServer(config.MConfig, marketService, gateway, sessions, logger.NewLogger(config, "API")),
	}
	if config.GrpcPort != 0 {
		servers = append(servers, grpc_control.NewControlServer(config.MConfig, marketService, logger.NewLogger(config, "Control")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(srv.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Stop(shutdownCtx); err != nil {
				appLogger.Error("Server stop failed: %v", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server failed: %v", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if db != nil {
		db.Close()
	}
	appLogger.Info("Stopped")
}
