// Package server exposes the advisor over HTTP. Payloads mirror the chat
// UI's expectations: every success body carries either a response or a
// success flag, and failures are {"error": ...} with a 4xx/5xx status.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	advisorx "github.com/tanpawarit/wealth-advisor-agent/agent/advisor"
)

const defaultUserID = "default"

type Config struct {
	Host            string        `envconfig:"HOST" split_words:"true" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" split_words:"true" default:"5001"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	sessions        *advisorx.SessionRegistry
	modelConfigured bool
	mux             *http.ServeMux
}

func New(sessions *advisorx.SessionRegistry, modelConfigured bool) *Server {
	s := &Server{
		sessions:        sessions,
		modelConfigured: modelConfigured,
		mux:             http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/risk-assessment", s.handleRiskAssessment)
	s.mux.HandleFunc("POST /api/diversification", s.handleDiversification)
	s.mux.HandleFunc("POST /api/strategy", s.handleStrategy)
	s.mux.HandleFunc("POST /api/preferences", s.handlePreferences)
	s.mux.HandleFunc("POST /api/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("GET /api/memory", s.handleMemory)
	s.mux.HandleFunc("POST /api/clear", s.handleClear)
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
