package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/synk/client/internal/infrastructure/logger"
)

// Metrics collects client-side counters for the API gateway, the realtime
// channel, and the synchronizer
type Metrics struct {
	registry *prometheus.Registry

	APIRequestsTotal    *prometheus.CounterVec
	APIRequestDuration  *prometheus.HistogramVec
	RealtimeEventsTotal *prometheus.CounterVec
	RealtimeReconnects  prometheus.Counter
	SyncReloadsTotal    *prometheus.CounterVec
}

// New creates and registers the client metric set
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synk_api_requests_total",
				Help: "Total number of API requests issued",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synk_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RealtimeEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synk_realtime_events_total",
				Help: "Total number of realtime events received",
			},
			[]string{"event"},
		),
		RealtimeReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "synk_realtime_reconnects_total",
				Help: "Total number of realtime reconnect attempts",
			},
		),
		SyncReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synk_sync_reloads_total",
				Help: "Total number of full collection reloads",
			},
			[]string{"entity", "reason"},
		),
	}

	registry.MustRegister(
		m.APIRequestsTotal,
		m.APIRequestDuration,
		m.RealtimeEventsTotal,
		m.RealtimeReconnects,
		m.SyncReloadsTotal,
	)

	return m
}

// ObserveAPIRequest records one gateway round-trip
func (m *Metrics) ObserveAPIRequest(method, path string, status int, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	m.APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// HealthFunc reports component health for the debug endpoint
type HealthFunc func() map[string]interface{}

// Server exposes /metrics and /healthz for long-running commands
type Server struct {
	echo   *echo.Echo
	logger *logger.Logger
}

// NewServer builds the debug endpoint around a metric set
func NewServer(m *Metrics, health HealthFunc, appLogger *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	metricsHandler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	e.GET("/healthz", func(c echo.Context) error {
		response := map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		if health != nil {
			response["checks"] = health()
		}
		return c.JSON(http.StatusOK, response)
	})

	return &Server{echo: e, logger: appLogger.WithComponent("metrics")}
}

// Start starts the debug endpoint
func (s *Server) Start(port int) error {
	s.logger.Infow("Starting metrics endpoint", "port", port)
	return s.echo.Start(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully stops the debug endpoint
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
