// Package api provides the operational HTTP surface for mqttflux.
//
// It exposes liveness (/healthz), readiness (/readyz, which runs the
// health checks of the MQTT client and every output) and Prometheus
// metrics (/metrics). The server follows the same lifecycle pattern as
// the other infrastructure components:
//
//	server := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mqttflux/mqttflux/internal/infrastructure/config"
	"github.com/mqttflux/mqttflux/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// readyCheckTimeout bounds the dependency checks behind /readyz.
const readyCheckTimeout = 5 * time.Second

// HealthChecker is anything whose liveness the readiness endpoint
// should verify (the MQTT client and each InfluxDB output).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Check is one named readiness dependency.
type Check struct {
	Name    string
	Checker HealthChecker
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Checks   []Check
	Registry *prometheus.Registry
	Version  string
}

// Server is the health/metrics HTTP server.
//
// It is created with New() and started with Start(); Close() shuts it
// down gracefully.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	checks   []Check
	registry *prometheus.Registry
	version  string
	server   *http.Server
}

// New creates the API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) *Server {
	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger.Component("api"),
		checks:   deps.Checks,
		registry: deps.Registry,
		version:  deps.Version,
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", s.handleHealthz)
	router.Get("/readyz", s.handleReadyz)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		s.registry, promhttp.HandlerOpts{},
	))

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", deps.Config.Host, deps.Config.Port),
		Handler:      router,
		ReadTimeout:  deps.Config.GetReadTimeout(),
		WriteTimeout: deps.Config.GetWriteTimeout(),
		IdleTimeout:  deps.Config.GetIdleTimeout(),
	}

	return s
}

// Start begins serving in a background goroutine.
//
// Returns immediately; listener errors other than a clean shutdown are
// logged through the server's logger.
func (s *Server) Start(_ context.Context) {
	go func() {
		s.logger.Info("api server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server failed", "error", err)
		}
	}()
}

// Close shuts the server down, waiting up to gracefulShutdownTimeout
// for in-flight requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// healthResponse is the JSON body of /healthz and /readyz.
type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleHealthz reports process liveness. It always succeeds while the
// server is able to answer at all.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: s.version})
}

// handleReadyz runs every registered dependency check and reports 503
// if any of them fails.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Version: s.version, Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for _, check := range s.checks {
		if err := check.Checker.HealthCheck(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	writeJSON(w, status, resp)
}

// writeJSON renders a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
