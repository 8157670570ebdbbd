package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"meridian/internal/access"
	"meridian/internal/jwtauth"
)

// TokenValidator validates bearer tokens and returns their claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwtauth.AccessTokenClaims, error)
}

// RoleResolver maps an authenticated user to their effective role. It must
// be fail-closed: any lookup problem yields the most restricted role.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) access.Role
}

type contextKeyUserID struct{}
type contextKeyRole struct{}
type contextKeyUserAgent struct{}
type contextKeyClientIP struct{}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeyUserID{}).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetRole retrieves the effective role resolved for this request. Absent a
// RequireAuth middleware upstream it returns the most restricted role.
func GetRole(ctx context.Context) access.Role {
	role, ok := ctx.Value(contextKeyRole{}).(access.Role)
	if !ok {
		return access.RoleReadonly
	}
	return role
}

// GetCaller bundles the request's identity and role for service calls.
func GetCaller(ctx context.Context) access.Caller {
	return access.Caller{UserID: GetUserID(ctx), Role: GetRole(ctx)}
}

// GetUserAgent retrieves the client-reported user agent captured at auth time.
func GetUserAgent(ctx context.Context) string {
	ua, ok := ctx.Value(contextKeyUserAgent{}).(string)
	if !ok {
		return ""
	}
	return ua
}

// GetClientIP retrieves the request's remote address captured at auth time.
func GetClientIP(ctx context.Context) string {
	ip, ok := ctx.Value(contextKeyClientIP{}).(string)
	if !ok {
		return ""
	}
	return ip
}

// RequireAuth validates the bearer token and injects the caller's identity
// into the request context. The effective role is resolved fresh on every
// request so role changes apply immediately; it is never read from the
// token. Request metadata used for audit (user agent, client IP) is
// captured here, at the edge.
func RequireAuth(validator TokenValidator, roles RoleResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			role := roles.ResolveRole(ctx, claims.UserID)

			ctx = context.WithValue(ctx, contextKeyUserID{}, claims.UserID)
			ctx = context.WithValue(ctx, contextKeyRole{}, role)
			ctx = context.WithValue(ctx, contextKeyUserAgent{}, r.UserAgent())
			ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP(r))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
