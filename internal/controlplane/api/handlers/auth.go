package handlers

import (
	"errors"
	"net/http"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
)

// AuthHandler handles authentication-related API endpoints.
type AuthHandler struct {
	users      *auth.UserStore
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *auth.UserStore, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
	}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the request body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MeResponse is the response body for GET /api/v1/auth/me.
type MeResponse struct {
	Subject string    `json:"subject"`
	Role    auth.Role `json:"role"`
}

// Login handles POST /api/v1/auth/login.
// Authenticates user credentials and returns a JWT token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.users.ValidateCredentials(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrUserNotFound) {
			logger.WarnCtx(r.Context(), "Login failed", "username", req.Username)
			Unauthorized(w, "Invalid username or password")
			return
		}
		InternalServerError(w, "Authentication failed")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.Username, user.Role)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	logger.InfoCtx(r.Context(), "Login succeeded", "username", user.Username, "role", user.Role)
	WriteJSONOK(w, tokenPair)
}

// Refresh handles POST /api/v1/auth/refresh.
// Returns a new token pair using a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			Unauthorized(w, "Refresh token has expired")
			return
		}
		Unauthorized(w, "Invalid refresh token")
		return
	}

	// Refresh tokens are only issued by Login, so the subject must still be
	// a configured user. The role is re-read in case it changed.
	user, err := h.users.Get(claims.Subject)
	if err != nil {
		Unauthorized(w, "User not found")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.Username, user.Role)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	WriteJSONOK(w, tokenPair)
}

// Me handles GET /api/v1/auth/me.
// Returns the identity carried by the caller's access token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	WriteJSONOK(w, MeResponse{Subject: claims.Subject, Role: claims.Role})
}
