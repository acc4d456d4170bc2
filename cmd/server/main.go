// Package main is the entry point for the finsight API gateway. It wires the
// market data provider, the forecasting service and the insight generator
// behind a single HTTP API with in-memory TTL caching.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/internal/cache"
	"finsight/internal/clients/alphavantage"
	"finsight/internal/clients/forecaster"
	"finsight/internal/clients/gemini"
	"finsight/internal/config"
	"finsight/internal/modules/forecast"
	"finsight/internal/modules/insights"
	"finsight/internal/modules/market"
	"finsight/internal/server"
	"finsight/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting finsight")

	// External clients
	alphaClient := alphavantage.NewClient(cfg.AlphaAPIKey, log)
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, log)
	forecastClient := forecaster.NewClient(cfg.ForecastServiceURL, log)

	// The provider resets its daily quota at midnight UTC; mirror that so the
	// local counter does not refuse requests the provider would accept.
	alphaClient.StartCounterReset()
	defer alphaClient.StopCounterReset()

	// Services with their TTL caches
	marketSvc := market.NewService(
		cache.New[[]alphavantage.DailyPrice](),
		alphaClient,
		cfg.DefaultSymbol,
		log,
	)
	forecastSvc := forecast.NewService(marketSvc, forecastClient, log)
	insightsSvc := insights.NewService(cache.New[string](), geminiClient, log)

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		DevMode:  cfg.DevMode,
		Market:   marketSvc,
		Forecast: forecastSvc,
		Insights: insightsSvc,
		Search:   alphaClient,
		Quota:    alphaClient,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
