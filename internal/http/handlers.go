package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"evidenca/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func monthParam(r *http.Request) (core.WorkMonth, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		now := time.Now()
		return core.WorkMonth{Year: now.Year(), Month: now.Month()}, nil
	}
	return core.ParseWorkMonth(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store is constructed before the listener starts, so a
	// reachable server is a ready server.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics reports process counters in the Prometheus text
// exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP evidenca_http_requests_total Requests served since start.\n")
	fmt.Fprintf(w, "# TYPE evidenca_http_requests_total counter\n")
	fmt.Fprintf(w, "evidenca_http_requests_total %d\n", s.tracer.TotalRequests())
	fmt.Fprintf(w, "# HELP evidenca_summary_cache_entries Months currently cached.\n")
	fmt.Fprintf(w, "# TYPE evidenca_summary_cache_entries gauge\n")
	fmt.Fprintf(w, "evidenca_summary_cache_entries %d\n", s.summaryCache.Size())
	fmt.Fprintf(w, "# HELP evidenca_ratelimit_clients Client IPs tracked by the login limiter.\n")
	fmt.Fprintf(w, "# TYPE evidenca_ratelimit_clients gauge\n")
	fmt.Fprintf(w, "evidenca_ratelimit_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "# HELP evidenca_uptime_seconds Seconds since process start.\n")
	fmt.Fprintf(w, "# TYPE evidenca_uptime_seconds gauge\n")
	fmt.Fprintf(w, "evidenca_uptime_seconds %d\n", int64(time.Since(s.startedAt).Seconds()))
}
