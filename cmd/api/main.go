package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/heatscape/uhi-analysis-service/internal/adapter/earthengine"
	"github.com/heatscape/uhi-analysis-service/internal/adapter/googlegeo"
	"github.com/heatscape/uhi-analysis-service/internal/adapter/httpapi"
	kafkaadapter "github.com/heatscape/uhi-analysis-service/internal/adapter/kafka"
	"github.com/heatscape/uhi-analysis-service/internal/adapter/llm"
	"github.com/heatscape/uhi-analysis-service/internal/adapter/model"
	"github.com/heatscape/uhi-analysis-service/internal/adapter/openmeteo"
	"github.com/heatscape/uhi-analysis-service/internal/config"
	"github.com/heatscape/uhi-analysis-service/internal/domain"
	"github.com/heatscape/uhi-analysis-service/internal/observability"
	"github.com/heatscape/uhi-analysis-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reverse geocoding (feature-flagged via GOOGLE_GEOCODE_KEY).
	var resolver domain.LocalityResolver
	if cfg.GeocodeEnabled {
		client := googlegeo.NewClient(cfg.GeocodeKey, cfg.GeocodeTimeout, metrics, logger)
		resolver = googlegeo.NewCachedResolver(client, cfg.GeocodeCacheTTL, metrics, logger)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("reverse geocoding enabled",
			"concurrency", cfg.GeocodeConcurrency,
			"cache_ttl", cfg.GeocodeCacheTTL,
		)
	} else {
		logger.Info("reverse geocoding disabled, localities will be Unknown")
	}

	// Gemini chat (feature-flagged via GEMINI_API_KEY).
	var chat httpapi.TextGenerator
	if cfg.ChatEnabled {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		chat = gemini
		logger.Info("chat enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("chat disabled")
	}

	// Optional publishing of analysis summaries.
	var publisher pipeline.ResultPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		logger.Info("result publishing enabled", "topic", cfg.KafkaResultsTopic)
	}

	extractor := earthengine.NewClient(cfg.ExtractorURL, cfg.ExtractorTimeout)
	predictor := model.NewClient(cfg.ModelURL, cfg.ModelTimeout, logger)
	weather := openmeteo.NewClient(cfg.WeatherURL, cfg.WeatherTimeout, metrics)

	p := pipeline.New(extractor, predictor, weather, resolver, publisher, logger, metrics, cfg.GeocodeConcurrency)

	srv := httpapi.NewServer(cfg, p, chat, p, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
