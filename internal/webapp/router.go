package webapp

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/middleware"
	"shopfront/internal/session"

	"github.com/rs/zerolog"
)

type contextKey string

const sessionCtxKey contextKey = "web_session"

// withSession loads the session for every request and keeps its tokens
// fresh. A session that fails validation is cleared and the user is sent
// back through login. The current access token rides on the request
// context and in the process token cache for outbound API calls.
func withSession(store session.Store, refresher *session.Refresher, cache *apiclient.TokenCache, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			// A session mid-login carries state but no tokens yet.
			if !sess.LoggedIn() {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess)))
				return
			}

			// Logout must always complete. A failing refresh grant would
			// otherwise bounce the user to login instead of signing out.
			if r.URL.Path == "/logout" {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess)))
				return
			}

			renewed, err := refresher.ValidateOrRefresh(r.Context(), sess)
			if err != nil {
				logger.Warn().Err(err).Msg("session rejected, forcing re-login")
				if clearErr := store.Clear(w, r); clearErr != nil {
					logger.Error().Err(clearErr).Msg("failed to clear rejected session")
				}
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if renewed {
				if err := store.Save(w, r, sess); err != nil {
					logger.Error().Err(err).Msg("failed to save refreshed session")
				}
			}

			cache.Set(sess.Bundle.AccessToken)
			ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
			ctx = apiclient.WithToken(ctx, sess.Bundle.AccessToken)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRouter wires the storefront routes and middleware.
func NewRouter(
	h *Handlers,
	store session.Store,
	refresher *session.Refresher,
	cache *apiclient.TokenCache,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /orders", h.Orders)
	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /logout", h.Logout)

	var handler http.Handler = mux
	handler = withSession(store, refresher, cache, logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
