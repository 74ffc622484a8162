package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Claudio1052/Limpeza/internal/config"
	"github.com/Claudio1052/Limpeza/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionAuth issues and checks admin session tokens. A login exchanges the
// shared admin secret for an opaque token with a TTL; every admin endpoint
// requires the token in the configured header.
type SessionAuth struct {
	cfg      config.AdminConfig
	sessions domain.SessionRepository
	logger   *zerolog.Logger
}

func NewSessionAuth(cfg config.AdminConfig, sessions domain.SessionRepository, logger *zerolog.Logger) *SessionAuth {
	return &SessionAuth{cfg: cfg, sessions: sessions, logger: logger}
}

func (a *SessionAuth) tokenHeader() string {
	header := strings.TrimSpace(a.cfg.TokenHeader)
	if header == "" {
		header = "x-admin-token"
	}
	return header
}

func (a *SessionAuth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(body.Secret), []byte(a.cfg.Secret)) != 1 {
		a.logger.Warn().Str("remote", r.RemoteAddr).Msg("Admin login rejected")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()
	ttl := time.Duration(a.cfg.SessionTTL) * time.Second
	if err := a.sessions.CreateSession(r.Context(), token, ttl); err != nil {
		a.logger.Error().Err(err).Msg("Failed to store session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	a.logger.Info().Str("remote", r.RemoteAddr).Msg("Admin session created")
	writeData(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresIn": a.cfg.SessionTTL,
	})
}

func (a *SessionAuth) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token := strings.TrimSpace(r.Header.Get(a.tokenHeader()))
	if err := a.sessions.DeleteSession(r.Context(), token); err != nil {
		a.logger.Error().Err(err).Msg("Failed to delete session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Require rejects requests that do not carry a live session token.
func (a *SessionAuth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(a.tokenHeader()))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		ok, err := a.sessions.SessionExists(r.Context(), token)
		if err != nil {
			a.logger.Error().Err(err).Msg("Session lookup failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		next(w, r)
	}
}
