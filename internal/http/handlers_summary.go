package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"evidenca/internal/cache"
	"evidenca/internal/core"
)

// handleSummary returns the month report: one row per calendar day
// plus totals. Results are cached per (user, month); every entry or
// rate write invalidates the affected keys.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	username := currentUser(r.Context())

	key := cache.Key(username, month.String())
	if summary, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.buildSummary(r, username, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary build failed",
			"username", username, "month", month.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "summary build failed")
		return
	}
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleStats returns the all-time breakdown: one row per month that
// has at least one entry, with its hours and earnings at the current
// rate, oldest first.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	username := currentUser(r.Context())

	profile, ok, err := s.store.GetProfile(r.Context(), username)
	if err != nil || !ok {
		slog.ErrorContext(r.Context(), "Stats profile load failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "stats build failed")
		return
	}
	entries, err := s.store.ListEntries(r.Context(), username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Stats entry list failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "stats build failed")
		return
	}
	writeJSON(w, http.StatusOK, core.MonthlyTotals(entries, profile.HourlyRate))
}

// handleExport streams the month report as a semicolon-delimited CSV
// attachment named obracun_YYYY-MM.csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	username := currentUser(r.Context())

	summary, err := s.buildSummary(r, username, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export build failed",
			"username", username, "month", month.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "export build failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="obracun_%s.csv"`, month.String()))
	if err := core.WriteCSV(w, summary, s.formatter); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed",
			"username", username, "month", month.String(), "error", err)
	}
}

func (s *Server) buildSummary(r *http.Request, username string, month core.WorkMonth) (core.MonthSummary, error) {
	profile, ok, err := s.store.GetProfile(r.Context(), username)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("load profile: %w", err)
	}
	if !ok {
		return core.MonthSummary{}, fmt.Errorf("profile %q not found", username)
	}
	entries, err := s.store.ListEntries(r.Context(), username)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list entries: %w", err)
	}
	return core.Summarize(entries, month, profile.HourlyRate), nil
}
