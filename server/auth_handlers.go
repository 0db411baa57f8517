package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/users"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
		return
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed")
		writeError(w, errs.ErrInternal, "registration failed")
		return
	}

	user := &users.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		DateJoined:   time.Now().UTC(),
	}

	if err := s.userRepo.Insert(r.Context(), user); err != nil {
		if errs.Is(err, errs.ErrUserExists) {
			writeError(w, err, "user already exists")
			return
		}
		s.log.Error().Err(err).Msg("user insert failed")
		writeError(w, errs.ErrStoreUnavailable, "registration failed")
		return
	}

	pair, err := s.sessions.IssuePair(r.Context(), user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("token issuance failed after registration")
		writeError(w, err, "registration failed")
		return
	}

	s.log.Info().Str("email", user.Email).Msg("user registered")
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "registered successfully",
		Data:    map[string]any{"user": user, "tokens": pair},
	})
}

// POST /auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	user, err := s.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil && !errs.Is(err, errs.ErrNotFound) {
		writeError(w, errs.ErrStoreUnavailable, "login failed")
		return
	}

	// A missing user and a wrong password are indistinguishable to the caller.
	if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, errs.ErrInvalidCredentials, "invalid credentials")
		return
	}

	pair, err := s.sessions.IssuePair(r.Context(), user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("token issuance failed at login")
		writeError(w, err, "login failed")
		return
	}

	s.log.Info().Str("email", user.Email).Msg("user logged in")
	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "logged in successfully",
		Data:    map[string]any{"user": user, "tokens": pair},
	})
}

// POST /auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	if err := s.sessions.Revoke(r.Context(), req.RefreshToken); err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			writeError(w, err, "token not found")
			return
		}
		writeError(w, err, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "logged out successfully"})
}

// POST /auth/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	pair, err := s.sessions.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrNotFound):
			writeError(w, err, "token not found")
		case errs.Is(err, errs.ErrUnauthorized):
			writeError(w, err, "invalid refresh token")
		default:
			writeError(w, err, "refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "auth refreshed",
		Data:    map[string]any{"tokens": pair},
	})
}

// GET /auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthenticated, "missing credentials")
		return
	}

	user, err := s.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			writeError(w, err, "user not found")
			return
		}
		writeError(w, errs.ErrStoreUnavailable, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Message: "ok", Data: map[string]any{"user": user}})
}
