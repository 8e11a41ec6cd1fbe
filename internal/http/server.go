// Package http exposes the JSON API: login, entry CRUD, month
// summaries, CSV export, backup transfer and admin account management.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"evidenca/internal/auth"
	"evidenca/internal/backend"
	"evidenca/internal/cache"
	"evidenca/internal/core"
	"evidenca/internal/middleware/ratelimit"
	"evidenca/internal/middleware/trace"
)

// Options tunes display formatting and abuse protection.
type Options struct {
	Locale         string
	CurrencySymbol string
	// Rate for accounts created without an explicit one.
	DefaultRate core.Money
	// Login attempts allowed per client IP per minute.
	LoginRateLimit int
}

type Server struct {
	http.Server

	store       backend.Store
	authManager *auth.Manager
	formatter   *core.Formatter
	defaultRate core.Money

	summaryCache *cache.LRU[core.MonthSummary]
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware

	startedAt        time.Time
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, st backend.Store, am *auth.Manager, opts Options) (*Server, error) {
	if opts.Locale == "" {
		opts.Locale = "sl-SI"
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "€"
	}
	formatter, err := core.NewFormatter(opts.Locale, opts.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("configure formatter: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:            st,
		authManager:      am,
		formatter:        formatter,
		defaultRate:      opts.DefaultRate,
		summaryCache:     cache.NewLRU[core.MonthSummary](200, 5*time.Minute),
		limiter:          ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.LoginRateLimit}),
		tracer:           trace.NewMiddleware(),
		startedAt:        time.Now(),
		stopCacheCleanup: make(chan struct{}),
	}
	go s.cacheCleanupLoop()

	loginLimited := s.limiter.Middleware(trace.ClientIP)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.Handle("/api/login", loginLimited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("/api/entries", s.withAuth(s.handleEntries))
	mux.HandleFunc("/api/summary", s.withAuth(s.handleSummary))
	mux.HandleFunc("/api/stats", s.withAuth(s.handleStats))
	mux.HandleFunc("/api/export", s.withAuth(s.handleExport))
	mux.HandleFunc("/api/backup", s.withAuth(s.handleBackup))
	mux.HandleFunc("/api/profile/rate", s.withAuth(s.handleUpdateRate))
	mux.HandleFunc("/api/admin/users", s.withAuth(s.requireAdmin(s.handleAdminUsers)))

	s.Server.Handler = s.tracer.Handler(mux)
	return s, nil
}

func (s *Server) cacheCleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.summaryCache.CleanExpired(); n > 0 {
				slog.Debug("Summary cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the HTTP listener and the background cleanup loops.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
