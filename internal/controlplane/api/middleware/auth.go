// Package middleware provides the HTTP middleware of the control plane API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/marmos91/ecfs/internal/controlplane/api/handlers"
	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
)

// JWTAuth rejects requests without a valid access token and stores the
// token's claims in the request context.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				handlers.Unauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					handlers.Unauthorized(w, "Token has expired")
					return
				}
				handlers.Unauthorized(w, "Invalid token")
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			if lc := logger.FromContext(ctx); lc != nil {
				lc = lc.Clone()
				lc.Subject = claims.Subject
				ctx = logger.WithContext(ctx, lc)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only tokens with the admin role. It must run after
// JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)
}

// RequireRole allows only tokens carrying one of roles. It must run after
// JWTAuth.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "Authentication required")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.WarnCtx(r.Context(), "Permission denied", "subject", claims.Subject, "role", claims.Role, "path", r.URL.Path)
			handlers.Forbidden(w, "Insufficient permissions")
		})
	}
}

// GetClaimsFromContext returns the claims stored by JWTAuth, or nil.
func GetClaimsFromContext(r *http.Request) *auth.Claims {
	return auth.ClaimsFromContext(r.Context())
}

// extractBearerToken returns the token of a "Bearer <token>" Authorization
// header. The scheme is case-insensitive.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
