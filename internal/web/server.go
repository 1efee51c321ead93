package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"daybias/internal/config"
	"daybias/internal/journal"
	"daybias/internal/ratelimit"
)

// Server exposes the bias engine over HTTP. The journal is optional;
// when nil, forecasts are computed but not recorded.
type Server struct {
	config  *config.Config
	journal *journal.Journal
	tokens  *TokenManager
	limiter *ratelimit.ClientLimiter
	srv     *http.Server
}

// NewServer creates a new forecast API server
func NewServer(cfg *config.Config, j *journal.Journal) *Server {
	return &Server{
		config:  cfg,
		journal: j,
		tokens:  NewTokenManager(cfg.Server.AuthSecret, cfg.Server.TokenTTL),
		limiter: ratelimit.NewClientLimiter(cfg.Server.RateLimit),
	}
}

// Handler builds the route table. Exposed separately so tests can
// drive it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/forecast", s.authMiddleware(s.handleForecast))
	mux.HandleFunc("/api/forecasts", s.authMiddleware(s.handleForecasts))
	mux.HandleFunc("/api/forecasts/", s.authMiddleware(s.handleForecastByID))
	mux.HandleFunc("/api/health", s.handleHealth)

	return corsMiddleware(mux)
}

// Start starts the API server on the configured port
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if s.tokens.Enabled() {
		log.Printf("Starting forecast API at http://localhost:%d (auth required)", s.config.Server.Port)
	} else {
		log.Printf("Starting forecast API at http://localhost:%d (auth disabled)", s.config.Server.Port)
	}

	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers for local development
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
