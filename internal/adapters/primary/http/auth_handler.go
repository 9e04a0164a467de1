package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/cafeflow/backend/internal/adapters/primary/http/middleware"
	"github.com/cafeflow/backend/internal/adapters/primary/validation"
	apperrors "github.com/cafeflow/backend/internal/core/errors"
	"github.com/cafeflow/backend/internal/core/ports"
)

const (
	refreshCookieName = "rf"
	refreshCookiePath = "/api/auth/refresh"
)

// AuthHandler handles login, refresh and logout for staff accounts
type AuthHandler struct {
	authService  ports.AuthService
	refreshTTL   time.Duration
	secureCookie bool
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService ports.AuthService,
	refreshTTL time.Duration,
	secureCookie bool,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		refreshTTL:   refreshTTL,
		secureCookie: secureCookie,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes sets up the routing for the auth endpoints. The logout
// route must be mounted separately behind the JWT middleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)
}

// --- Request/Response DTOs ---

// LoginRequest defines the expected JSON body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login request
func (r *LoginRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("email", r.Email).
		Email("email", r.Email)
	v.Required("password", r.Password)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// TokenResponse defines the JSON response for login and refresh.
// The refresh token travels only in the httpOnly cookie.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// --- Handlers ---

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("login",
		"request_id", GetRequestID(r.Context()),
		"user_id", user.ID,
		"role", user.Role,
	)

	h.setRefreshCookie(w, pair.RefreshToken)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		Role:        string(user.Role),
		Email:       user.Email,
	})
}

// HandleRefresh handles POST /auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.ErrRefreshDenied)
		return
	}

	user, pair, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: pair.AccessToken,
		Role:        string(user.Role),
		Email:       user.Email,
	})
}

// HandleLogout handles POST /auth/logout. Requires a valid access token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), claims.UserID()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
