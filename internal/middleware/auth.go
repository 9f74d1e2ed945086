package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// TokenVerifier validates a raw bearer token and returns the principal it
// represents.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*model.Principal, error)
}

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom returns the authenticated principal stored in the request
// context, if any.
func PrincipalFrom(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*model.Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the principal. Exposed for
// handler tests.
func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// BearerAuth validates the Authorization bearer token on every request.
// Each request is validated independently; a failure rejects with an
// authentication error.
func BearerAuth(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeAuthError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing bearer token")
				return
			}

			rawToken, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || rawToken == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed Authorization header")
				writeAuthError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "malformed Authorization header")
				return
			}

			principal, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("bearer token rejected")
				writeAuthError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects requests whose principal lacks the role. The
// principal is valid at this point, so the failure is an authorization
// error, not an authentication one.
func RequireRole(role string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}

			if !principal.HasRole(role) {
				logger.Warn().
					Str("subject", principal.Subject).
					Str("required_role", role).
					Str("path", r.URL.Path).
					Msg("missing required role")
				writeAuthError(w, http.StatusForbidden, model.ErrCodeForbidden, "missing required role: "+role)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: code, Message: message})
}
