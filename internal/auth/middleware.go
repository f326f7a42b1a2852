// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/airlog/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	UserID   string
	Username string
	Role     models.Role
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(userContextKey).(Identity)
	return identity, ok
}

// ContextWithIdentity attaches an identity to the context; used by the
// middleware and by handler tests.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, userContextKey, identity)
}

// Middleware enforces bearer-token authentication on the REST surface. With
// auth_mode=none every request passes through with a synthetic admin
// identity, which keeps local development friction-free.
type Middleware struct {
	jwtManager *JWTManager
	disabled   bool
}

// NewMiddleware creates the auth middleware. A nil manager with disabled set
// is the auth_mode=none configuration.
func NewMiddleware(jwtManager *JWTManager, disabled bool) *Middleware {
	return &Middleware{
		jwtManager: jwtManager,
		disabled:   disabled,
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			ctx := ContextWithIdentity(r.Context(), Identity{
				UserID:   "dev",
				Username: "dev",
				Role:     models.RoleAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := ContextWithIdentity(r.Context(), Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     models.Role(claims.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated requests whose role is not in the allow
// list. Must be mounted inside RequireAuth.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !allowed[identity.Role] {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// WebSocket clients cannot set headers from browsers; allow the token
	// as a query parameter there.
	return r.URL.Query().Get("token")
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
