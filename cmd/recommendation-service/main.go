package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	docs "meshdemo/docs/recommendation"
	"meshdemo/internal/config"
	handlers "meshdemo/internal/http/handler"
	"meshdemo/internal/logger"
	"meshdemo/internal/otel"
	"meshdemo/internal/server"
	"meshdemo/internal/service"
)

// @title Recommendation Service API
// @version 1.0
// @BasePath /
func main() {
	cfg, err := config.Load("recommendation-service")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.Location())

	recSvc, err := service.NewRecommendationService(cfg.Recommendation.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid recommendation catalog")
	}
	log.Info().Str("version", recSvc.Version()).Msg("recommendation catalog loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.ServiceName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	srv, err := server.New(cfg, log, server.Options{
		Routes: handlers.RegisterRecommendationRoutes(recSvc),
		Docs:   docs.SwaggerInfo,
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
