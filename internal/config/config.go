package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Satellite feature-extraction collaborator.
	ExtractorURL     string
	ExtractorTimeout time.Duration

	// Regression-model collaborator.
	ModelURL     string
	ModelTimeout time.Duration

	// Ambient weather lookup.
	WeatherURL     string
	WeatherTimeout time.Duration

	// Reverse geocoding (feature-flagged via GOOGLE_GEOCODE_KEY).
	GeocodeKey         string
	GeocodeEnabled     bool
	GeocodeTimeout     time.Duration
	GeocodeConcurrency int
	GeocodeCacheTTL    time.Duration // 0 means entries never expire

	// Gemini chat (feature-flagged via GEMINI_API_KEY).
	GeminiAPIKey string
	GeminiModel  string
	ChatEnabled  bool

	// Optional publishing of analysis summaries.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaResultsTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A local .env file is loaded first, best-effort.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	extractorTimeout, err := parseDuration("EXTRACTOR_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	modelTimeout, err := parseDuration("MODEL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geocodeCacheTTL, err := parseDuration("GEOCODE_CACHE_TTL", "0s")
	if err != nil {
		return nil, err
	}

	geocodeKey := os.Getenv("GOOGLE_GEOCODE_KEY")
	geocodeEnabled := geocodeKey != ""
	if v := os.Getenv("GEOCODE_ENABLED"); v != "" {
		geocodeEnabled = v == "true"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(envOrDefault("CORS_ORIGINS", "*")),

		ExtractorURL:     os.Getenv("EXTRACTOR_URL"),
		ExtractorTimeout: extractorTimeout,

		ModelURL:     os.Getenv("MODEL_URL"),
		ModelTimeout: modelTimeout,

		WeatherURL:     envOrDefault("WEATHER_URL", "https://api.open-meteo.com"),
		WeatherTimeout: weatherTimeout,

		GeocodeKey:         geocodeKey,
		GeocodeEnabled:     geocodeEnabled,
		GeocodeTimeout:     geocodeTimeout,
		GeocodeConcurrency: parseIntOrDefault("GEOCODE_CONCURRENCY", 10),
		GeocodeCacheTTL:    geocodeCacheTTL,

		GeminiAPIKey: geminiKey,
		GeminiModel:  envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		ChatEnabled:  geminiKey != "",

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultsTopic: envOrDefault("KAFKA_RESULTS_TOPIC", "uhi-analysis-results"),
	}

	if cfg.ExtractorURL == "" {
		return nil, errors.New("EXTRACTOR_URL is required")
	}
	if cfg.ModelURL == "" {
		return nil, errors.New("MODEL_URL is required")
	}
	if cfg.GeocodeEnabled && cfg.GeocodeKey == "" {
		return nil, errors.New("GEOCODE_ENABLED is true but GOOGLE_GEOCODE_KEY is not set")
	}
	if cfg.GeocodeConcurrency < 1 {
		return nil, errors.New("GEOCODE_CONCURRENCY must be at least 1")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntOrDefault(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
