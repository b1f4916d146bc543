package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/leadpilot/leadpilot/internal/http/respond"
	"github.com/leadpilot/leadpilot/pkg/logging"
)

// Handler handles HTTP requests for user registration and sessions
type Handler struct {
	repo   Repository
	tokens *TokenService
	logger *logging.Logger
}

// NewHandler creates a new users handler
func NewHandler(repo Repository, tokens *TokenService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

// LoginResponse carries the authenticated user and its session tokens.
type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.repo.Create(r.Context(), req.Email, req.FullName, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailRegistered) {
			respond.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to create user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("user registered", "id", user.ID, "email", user.Email)
	respond.JSON(w, http.StatusCreated, user)
}

// Login handles POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respond.Error(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("failed to load user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.Error(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	pair, err := h.tokens.IssuePair(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to issue tokens", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("user logged in", "id", user.ID)
	respond.JSON(w, http.StatusOK, LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles POST /users/refresh, rotating the refresh token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respond.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			respond.Error(w, http.StatusUnauthorized, ErrInvalidToken.Error())
			return
		}
		h.logger.Error("failed to refresh session", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, pair)
}

// Logout handles POST /users/logout, revoking the refresh token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respond.Error(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	if err := h.tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("failed to revoke token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
