// ABOUTME: HTTP JSON API serving daily logs and trend series.
// ABOUTME: gorilla/mux routes wrapped with CORS and combined access logging.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/hashicorp/go-hclog"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a Repository and chart building over HTTP.
type Server struct {
	repo        storage.Repository
	normalizer  *trends.Normalizer
	charts      *chart.Service
	defaultUser string
	logger      hclog.Logger
}

// NewServer creates a Server. Requests without user_id act on defaultUser.
func NewServer(repo storage.Repository, normalizer *trends.Normalizer, defaultUser string, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if normalizer == nil {
		normalizer = trends.NewNormalizer(nil, logger)
	}
	return &Server{
		repo:        repo,
		normalizer:  normalizer,
		charts:      chart.NewService(storage.NewFetcher(repo), normalizer, logger.Named("chart")),
		defaultUser: defaultUser,
		logger:      logger,
	}
}

// Router returns the bare route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/health-logs", s.listHealthLogs).Methods(http.MethodGet)
	r.HandleFunc("/api/logs", s.getLog).Methods(http.MethodGet)
	r.HandleFunc("/api/logs", s.postLog).Methods(http.MethodPost)
	r.HandleFunc("/api/logs", s.deleteLog).Methods(http.MethodDelete)
	r.HandleFunc("/api/trends", s.getTrends).Methods(http.MethodGet)

	return r
}

// Handler returns the router wrapped with CORS and access logging.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	access := s.logger.Named("http").StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Info})
	return handlers.CombinedLoggingHandler(access, cors(s.Router()))
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
