package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"evidenca/internal/auth"
	"evidenca/internal/core"
	"evidenca/internal/store"
)

// userView is a profile as exposed over the API. Password hashes
// never leave the store.
type userView struct {
	Username        string `json:"username"`
	HourlyRateCents int64  `json:"hourlyRateCents"`
	Admin           bool   `json:"admin"`
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListUsers(w, r)
	case http.MethodPost:
		s.handleCreateUser(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile list failed")
		return
	}

	views := make([]userView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, userView{
			Username:        p.Username,
			HourlyRateCents: p.HourlyRate.Cents,
			Admin:           p.Admin,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Decimal string, dot or comma; empty means the configured default.
	HourlyRate string `json:"hourlyRate"`
	Admin      bool   `json:"admin"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rate := s.defaultRate
	if strings.TrimSpace(req.HourlyRate) != "" {
		parsed, err := core.ParseRate(req.HourlyRate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid hourly rate")
			return
		}
		rate = parsed
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "user creation failed")
		return
	}

	profile := core.Profile{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		HourlyRate:   rate,
		Admin:        req.Admin,
	}
	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateProfile(r.Context(), profile); err != nil {
		if errors.Is(err, store.ErrProfileExists) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		slog.ErrorContext(r.Context(), "Profile creation failed",
			"username", profile.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "user creation failed")
		return
	}

	slog.InfoContext(r.Context(), "Created user",
		"username", profile.Username, "admin", profile.Admin,
		"created_by", currentUser(r.Context()))
	writeJSON(w, http.StatusCreated, userView{
		Username:        profile.Username,
		HourlyRateCents: profile.HourlyRate.Cents,
		Admin:           profile.Admin,
	})
}

type updateRateRequest struct {
	// Decimal string, dot or comma.
	HourlyRate string `json:"hourlyRate"`
}

// handleUpdateRate changes the caller's hourly rate. The rate is not
// historized, so past months recompute with the new value; all cached
// summaries of the user are dropped.
func (s *Server) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	username := currentUser(r.Context())

	var req updateRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rate, err := core.ParseRate(req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid hourly rate")
		return
	}

	if err := s.store.UpdateHourlyRate(r.Context(), username, rate); err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		slog.ErrorContext(r.Context(), "Rate update failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "rate update failed")
		return
	}

	s.summaryCache.DeletePrefix(username + "|")
	slog.InfoContext(r.Context(), "Updated hourly rate",
		"username", username, "rate_cents", rate.Cents)
	writeJSON(w, http.StatusOK, map[string]int64{"hourlyRateCents": rate.Cents})
}
