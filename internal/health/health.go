// Package health serves the liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Prober reports the last completed analysis cycle.
type Prober interface {
	Health() (last time.Time, err error)
}

// Server exposes GET /healthz. The process is healthy when it is up; the
// payload additionally reports whether the last cycle succeeded so operators
// can alert on stale or failing cycles without killing the bot.
type Server struct {
	srv     *http.Server
	prober  Prober
	started time.Time
	logger  zerolog.Logger
}

type status struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LastCycle     string `json:"last_cycle,omitempty"`
	LastCycleOK   bool   `json:"last_cycle_ok"`
	LastCycleErr  string `json:"last_cycle_error,omitempty"`
}

func NewServer(addr string, prober Prober, logger zerolog.Logger) *Server {
	s := &Server{
		prober:  prober,
		started: time.Now(),
		logger:  logger.With().Str("component", "health").Logger(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handle)
	s.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return s
}

func (s *Server) handle(w http.ResponseWriter, _ *http.Request) {
	last, err := s.prober.Health()
	st := status{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		LastCycleOK:   err == nil,
	}
	if !last.IsZero() {
		st.LastCycle = last.UTC().Format(time.RFC3339)
	}
	if err != nil {
		st.LastCycleErr = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.Error().Err(err).Msg("write health response")
	}
}

// Start serves until the listener fails. Run it from a goroutine.
func (s *Server) Start() {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("health endpoint listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error().Err(err).Msg("health server stopped")
	}
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("health server shutdown")
	}
}
