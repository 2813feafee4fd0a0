// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trip-os/internal/common/config"
	commonerrors "trip-os/internal/common/errors"
	"trip-os/internal/common/logger"
	"trip-os/internal/common/metrics"
)

// Synthesizer turns briefing text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP front of the trip planner.
type Server struct {
	config  config.ServerConfig
	chat    *ChatService
	trips   TripStore
	index   TripIndex
	tts     Synthesizer
	checks  map[string]HealthChecker
	errors  *commonerrors.ErrorHandler
	logger  logger.Logger
	httpSrv *http.Server
}

func New(
	cfg config.ServerConfig,
	chat *ChatService,
	trips TripStore,
	index TripIndex,
	synthesizer Synthesizer,
	checks map[string]HealthChecker,
	log logger.Logger,
) *Server {
	s := &Server{
		config: cfg,
		chat:   chat,
		trips:  trips,
		index:  index,
		tts:    synthesizer,
		checks: checks,
		errors: commonerrors.NewErrorHandler(log),
		logger: log.WithFields(map[string]interface{}{"component": "http-server"}),
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/chat/send", s.instrument("/api/chat/send", s.handleChatSend))
	mux.Handle("POST /api/trips", s.instrument("/api/trips", s.handleCreateTrip))
	mux.Handle("GET /api/trips", s.instrument("/api/trips", s.handleListTrips))
	mux.Handle("GET /api/trips/search", s.instrument("/api/trips/search", s.handleSearchTrips))
	mux.Handle("GET /api/trips/{id}", s.instrument("/api/trips/{id}", s.handleGetTrip))
	mux.Handle("PATCH /api/trips/{id}", s.instrument("/api/trips/{id}", s.handlePatchTrip))
	mux.Handle("DELETE /api/trips/{id}", s.instrument("/api/trips/{id}", s.handleDeleteTrip))
	mux.Handle("POST /api/trips/{id}/logs", s.instrument("/api/trips/{id}/logs", s.handleAppendLog))
	mux.Handle("POST /api/tts/briefing", s.instrument("/api/tts/briefing", s.handleBriefing))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// statusRecorder captures the status code written by a handler so the
// request metric can be labeled with it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

// Start blocks serving HTTP until the context is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{
			"address": s.config.Address,
		})
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.config.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	s.logger.Info("http server shutting down", nil)
	return s.httpSrv.Shutdown(shutdownCtx)
}

// Handler exposes the routed mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
