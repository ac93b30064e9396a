package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sharemusic/internal/core"
)

// Server exposes the operational surface: Prometheus metrics, health and
// readiness probes, and a small index page.
type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

// Metrics holds all Prometheus collectors for the share pipeline.
type Metrics struct {
	SharesTotal       *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	ThirdPartyAPITime *prometheus.HistogramVec
	ProcessingTime    *prometheus.HistogramVec
}

func newMetrics() *Metrics {
	return &Metrics{
		SharesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharemusic_shares_total",
				Help: "Total number of share requests by outcome",
			},
			[]string{"status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharemusic_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ThirdPartyAPITime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sharemusic_third_party_api_duration_seconds",
				Help:    "Time spent on outbound third-party API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "url", "status"},
		),
		ProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sharemusic_processing_duration_seconds",
				Help:    "Time spent processing share requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := newMetrics()

	prometheus.MustRegister(
		metrics.SharesTotal,
		metrics.ErrorsTotal,
		metrics.ThirdPartyAPITime,
		metrics.ProcessingTime,
	)

	mux := setupRoutes(logger)
	server := createHTTPServer(config, mux)

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func setupRoutes(logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"sharemusic"}`)); err != nil {
			logger.Debug("Failed to write healthz response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"sharemusic"}`)); err != nil {
			logger.Debug("Failed to write readyz response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", homeHandler(logger))

	return mux
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>ShareMusic</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 ShareMusic</h1>
    <p>Cross-platform music link sharing bot</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and resolving music links via song.link.</p>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write index response", zap.Error(err))
		}
	}
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// RecordShare counts a finished share request by outcome.
func (s *Server) RecordShare(status string) {
	s.metrics.SharesTotal.WithLabelValues(status).Inc()
}

// RecordError counts an error by component and type.
func (s *Server) RecordError(component, errorType string) {
	s.metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordProcessingTime observes the end-to-end duration of a share request.
func (s *Server) RecordProcessingTime(command string, duration time.Duration) {
	s.metrics.ProcessingTime.WithLabelValues(command).Observe(duration.Seconds())
}

// ObserveThirdPartyAPI observes one outbound API call. Its signature matches
// songlink.Observer so clients can report directly into the histogram.
func (s *Server) ObserveThirdPartyAPI(method, endpoint string, status int, elapsed time.Duration) {
	s.metrics.ThirdPartyAPITime.
		WithLabelValues(method, endpoint, fmt.Sprintf("%d", status)).
		Observe(elapsed.Seconds())
}
