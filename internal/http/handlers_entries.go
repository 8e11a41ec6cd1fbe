package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"evidenca/internal/cache"
	"evidenca/internal/core"
	"evidenca/internal/store"
)

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEntries(w, r)
	case http.MethodPut:
		s.handleSaveEntry(w, r)
	case http.MethodDelete:
		s.handleDeleteEntry(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handleListEntries returns the user's entries, restricted to one
// month when ?month=YYYY-MM is given.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r.Context())

	entries, err := s.store.ListEntries(r.Context(), username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry list failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "entry list failed")
		return
	}

	if strings.TrimSpace(r.URL.Query().Get("month")) != "" {
		month, err := monthParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
			return
		}
		entries = core.FilterMonth(entries, month)
	}
	if entries == nil {
		entries = []core.DailyEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleSaveEntry upserts one day. An entry with no shifts and no
// comment deletes the stored day instead; the response is 204 so the
// client can tell the record is gone.
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r.Context())

	var entry core.DailyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry payload")
		return
	}

	deleted, err := store.SaveEntry(r.Context(), s.store, username, entry)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, "entry date is required")
			return
		}
		slog.ErrorContext(r.Context(), "Entry save failed",
			"username", username, "date", entry.Date.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "entry save failed")
		return
	}

	s.invalidateMonth(username, entry.Date)

	if deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r.Context())

	date, err := core.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := s.store.DeleteEntry(r.Context(), username, date); err != nil {
		slog.ErrorContext(r.Context(), "Entry delete failed",
			"username", username, "date", date.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "entry delete failed")
		return
	}

	s.invalidateMonth(username, date)
	w.WriteHeader(http.StatusNoContent)
}

// invalidateMonth drops the cached summary of the month the date
// falls into.
func (s *Server) invalidateMonth(username string, date core.Date) {
	month := core.WorkMonth{Year: date.Year(), Month: date.Time.Month()}
	s.summaryCache.Delete(cache.Key(username, month.String()))
}
