package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	docs "meshdemo/docs/orderprocessing"
	"meshdemo/internal/client"
	"meshdemo/internal/config"
	"meshdemo/internal/database"
	"meshdemo/internal/database/migration"
	handlers "meshdemo/internal/http/handler"
	"meshdemo/internal/logger"
	"meshdemo/internal/otel"
	"meshdemo/internal/repository/postgres"
	"meshdemo/internal/server"
	"meshdemo/internal/service"
)

// @title Order Processing Service API
// @version 1.0
// @BasePath /
func main() {
	cfg, err := config.Load("order-processing-service")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}
	opCfg, err := config.LoadOrderProcessing()
	if err != nil {
		stdlog.Fatalf("failed to load order processing config: %v", err)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.ServiceName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, opCfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("db_host", opCfg.Database.Host).Msg("failed to connect to database")
	}
	defer db.Close()

	if opCfg.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, log, opCfg.Database.Host); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
	}

	reg := server.NewRegistry()
	metrics, err := service.NewOrderMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register order metrics")
	}

	hc := client.NewHTTPClient(opCfg.ClientTimeout())
	orderSvc := service.NewOrderService(service.OrderServiceDeps{
		Repo:      postgres.NewOrderPostgres(db),
		Inventory: client.NewInventoryClient(opCfg.InventoryURL, hc),
		Payment:   client.NewPaymentClient(opCfg.PaymentURL, hc),
		Metrics:   metrics,
		Log:       log,
		Currency:  opCfg.Currency,
	})
	log.Info().
		Str("inventory_url", opCfg.InventoryURL).
		Str("payment_url", opCfg.PaymentURL).
		Msg("order processing configured")

	srv, err := server.New(cfg, log, server.Options{
		Routes:   handlers.RegisterOrderProcessingRoutes(orderSvc),
		Docs:     docs.SwaggerInfo,
		Registry: reg,
		ReadyCheck: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
	log.Info().Msg("stopped")
}
