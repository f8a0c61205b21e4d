// Package httpapi exposes the analysis pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/heatscape/uhi-analysis-service/internal/config"
	"github.com/heatscape/uhi-analysis-service/internal/domain"
	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

// defaultMapCity is used when /generate-maps is called without a city.
const defaultMapCity = "Pune"

// Analyzer runs the full analysis for a city.
type Analyzer interface {
	Analyze(ctx context.Context, city string) (*domain.AnalysisResult, error)
	AnalyzeEnriched(ctx context.Context, city string) ([]domain.SamplePoint, error)
}

// TextGenerator produces free-text responses for the chat and generation
// endpoints. A nil generator disables both.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the analysis, chat, health, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	chat       TextGenerator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires all routes. Cross-origin access follows the configured
// origin list; the frontend dashboard is served from a different host.
func NewServer(cfg *config.Config, analyzer Analyzer, chat TextGenerator, ready ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second, // analysis requests fan out to several upstreams
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		chat:     chat,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /generate-maps", s.handleGenerateMaps)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.httpServer.Handler = c.Handler(mux)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		s.metrics.AnalyzeRequests.WithLabelValues("client_error").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "City parameter is required"})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), city)
	if err != nil {
		if errors.Is(err, domain.ErrMissingInput) {
			s.metrics.AnalyzeRequests.WithLabelValues("client_error").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.metrics.AnalyzeRequests.WithLabelValues("server_error").Inc()
		s.logger.Error("analysis failed", "city", city, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "analysis failed"})
		return
	}

	s.metrics.AnalyzeRequests.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateMaps(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		city = defaultMapCity
	}

	points, err := s.analyzer.AnalyzeEnriched(r.Context(), city)
	if err != nil {
		if errors.Is(err, domain.ErrMissingInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("map generation failed", "city", city, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "map generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]domain.HeatmapPayload{
		"current_map": domain.CurrentHeatmap(points, city),
		"future_map":  domain.FutureHeatmap(points, city),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat is not configured"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		s.metrics.ChatRequests.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	answer, err := s.chat.GenerateText(r.Context(), chatPrompt(req.Message))
	if err != nil {
		s.metrics.ChatRequests.WithLabelValues("error").Inc()
		s.logger.Error("chat generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "chat generation failed"})
		return
	}

	s.metrics.ChatRequests.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "generation is not configured"})
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Prompt is required"})
		return
	}

	answer, err := s.chat.GenerateText(r.Context(), req.Prompt)
	if err != nil {
		s.logger.Error("text generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "response": answer})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Urban Heat Island AI Backend Running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// chatPrompt frames a dashboard question for the assistant model.
func chatPrompt(message string) string {
	return fmt.Sprintf(`You are an Urban Heat Island risk analysis assistant.
Answer clearly, technically, and concisely.

User Question:
%s
`, message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
