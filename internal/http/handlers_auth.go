package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"evidenca/internal/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token           string `json:"token"`
	Username        string `json:"username"`
	Admin           bool   `json:"admin"`
	HourlyRateCents int64  `json:"hourlyRateCents"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, ok, err := s.store.GetProfile(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	// Same answer for unknown user and wrong password.
	if !ok || auth.CheckPassword(profile.PasswordHash, req.Password) != nil {
		slog.WarnContext(r.Context(), "Login rejected",
			"username", req.Username, "client_ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.authManager.Issue(profile.Username, profile.Admin)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}

	slog.InfoContext(r.Context(), "Login succeeded", "username", profile.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:           token,
		Username:        profile.Username,
		Admin:           profile.Admin,
		HourlyRateCents: profile.HourlyRate.Cents,
	})
}

// withAuth verifies the bearer token and stores the claims in the
// request context. Tokens nearing expiry get a replacement in the
// X-New-Token response header.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := s.authManager.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if s.authManager.ShouldRenew(claims) {
			if renewed, err := s.authManager.Issue(claims.Username, claims.Admin); err == nil {
				w.Header().Set("X-New-Token", renewed)
			}
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin rejects non-admin sessions with 403.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.Admin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	}
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// currentUser returns the authenticated username, empty when the
// middleware did not run.
func currentUser(ctx context.Context) string {
	if claims := claimsFrom(ctx); claims != nil {
		return claims.Username
	}
	return ""
}
