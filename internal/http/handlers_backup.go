package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"evidenca/internal/core"
	"evidenca/internal/store"
)

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleExportBackup(w, r)
	case http.MethodPost:
		s.handleImportBackup(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleExportBackup returns the user's complete data as a single
// restorable JSON object.
func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r.Context())

	profile, ok, err := s.store.GetProfile(r.Context(), username)
	if err != nil || !ok {
		slog.ErrorContext(r.Context(), "Backup profile load failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "backup export failed")
		return
	}
	entries, err := s.store.ListEntries(r.Context(), username)
	if err != nil {
		slog.ErrorContext(r.Context(), "Backup entry list failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "backup export failed")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="evidenca_backup.json"`)
	writeJSON(w, http.StatusOK, core.NewBackup(username, profile.HourlyRate, entries))
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleImportBackup restores a backup into the current account.
// Validation runs over the whole payload first; an invalid backup is
// rejected with 422 and writes nothing. Valid entries overwrite any
// stored day with the same date.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r.Context())

	var b core.Backup
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup payload")
		return
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if rate := core.RateFromFloat(b.HourlyRate); rate.Cents > 0 {
		if err := s.store.UpdateHourlyRate(r.Context(), username, rate); err != nil &&
			!errors.Is(err, store.ErrProfileNotFound) {
			slog.ErrorContext(r.Context(), "Backup rate update failed", "username", username, "error", err)
			writeError(w, http.StatusInternalServerError, "backup import failed")
			return
		}
	}

	imported := 0
	for _, e := range b.Entries {
		deleted, err := store.SaveEntry(r.Context(), s.store, username, e)
		if err != nil {
			slog.ErrorContext(r.Context(), "Backup entry import failed",
				"username", username, "date", e.Date.String(), "error", err)
			writeError(w, http.StatusInternalServerError, "backup import failed")
			return
		}
		if !deleted {
			imported++
		}
	}

	// Any month could have changed.
	s.summaryCache.DeletePrefix(username + "|")

	slog.InfoContext(r.Context(), "Imported backup",
		"username", username, "entries", imported)
	writeJSON(w, http.StatusOK, importResponse{Imported: imported})
}
