package webapp

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"shopfront/internal/apiclient"
	"shopfront/internal/auth"
	"shopfront/internal/session"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Handlers serves the server-rendered storefront pages.
type Handlers struct {
	store         session.Store
	oauth         *oauth2.Config
	verifier      session.IDTokenVerifier
	api           *apiclient.Client
	cache         *apiclient.TokenCache
	endSessionURL string
	clientID      string
	postLogoutURL string
	templates     *template.Template
	logger        zerolog.Logger
}

// NewHandlers creates the web handlers. endSessionURL may be empty when
// the provider does not advertise one.
func NewHandlers(
	store session.Store,
	oauth *oauth2.Config,
	verifier session.IDTokenVerifier,
	api *apiclient.Client,
	cache *apiclient.TokenCache,
	endSessionURL string,
	clientID string,
	postLogoutURL string,
	logger zerolog.Logger,
) (*Handlers, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handlers{
		store:         store,
		oauth:         oauth,
		verifier:      verifier,
		api:           api,
		cache:         cache,
		endSessionURL: endSessionURL,
		clientID:      clientID,
		postLogoutURL: postLogoutURL,
		templates:     tmpl,
		logger:        logger.With().Str("handler", "web").Logger(),
	}, nil
}

// pageData is the payload common to every rendered page.
type pageData struct {
	LoggedIn bool
	UserName string
	IsAdmin  bool
	Data     interface{}
	Error    string
}

func (h *Handlers) page(sess *session.Session, data interface{}, errMsg string) pageData {
	p := pageData{Data: data, Error: errMsg}
	if sess.LoggedIn() {
		p.LoggedIn = true
		p.UserName = sess.Name
		for _, role := range sess.Roles {
			if role == "admin" {
				p.IsAdmin = true
				break
			}
		}
	}
	return p
}

// Home handles GET / and renders the product catalog.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	products, err := h.api.Products(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load products")
		h.render(w, "home.html", h.page(sess, nil, "The catalog is unavailable right now."))
		return
	}

	h.render(w, "home.html", h.page(sess, products, ""))
}

// Orders handles GET /orders and renders the caller's order history.
func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	if !sess.LoggedIn() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	orders, err := h.api.Orders(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load orders")
		h.render(w, "orders.html", h.page(sess, nil, "Your orders could not be loaded."))
		return
	}

	h.render(w, "orders.html", h.page(sess, orders, ""))
}

// Login handles GET /login. Every visit starts a fresh provider login;
// prompt=login prevents the provider from silently reusing its own
// session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	nonce := uuid.NewString()

	sess := &session.Session{State: state, Nonce: nonce}
	if err := h.store.Save(w, r, sess); err != nil {
		h.logger.Error().Err(err).Msg("failed to save login session")
		http.Error(w, "failed to start login", http.StatusInternalServerError)
		return
	}

	authURL := h.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("prompt", "login"),
		oidc.Nonce(nonce),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /auth/callback, finishing the authorization-code
// flow.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r)
	if err != nil || sess == nil || sess.State == "" {
		h.logger.Warn().Msg("callback without pending login state")
		http.Error(w, "no login in progress", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != sess.State {
		h.logger.Warn().Msg("callback state mismatch")
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("code exchange failed")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		h.logger.Error().Msg("token response carried no ID token")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	idToken, err := h.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		h.logger.Error().Err(err).Msg("ID token validation failed")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	if idToken.Nonce != sess.Nonce {
		h.logger.Warn().Msg("callback nonce mismatch")
		http.Error(w, "nonce mismatch", http.StatusBadRequest)
		return
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		h.logger.Error().Err(err).Msg("failed to decode ID token claims")
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	// Roles live in the access token. A parse failure leaves the user
	// logged in without roles rather than blocking the login.
	roles, err := auth.RolesFromAccessToken(token.AccessToken)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to extract roles from access token")
		roles = nil
	}

	fresh := &session.Session{
		Bundle: session.TokenBundle{
			AccessToken:  token.AccessToken,
			IDToken:      rawIDToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			ExpiresAt:    token.Expiry,
		},
		Subject: idToken.Subject,
		Name:    auth.DisplayName(claims),
		Roles:   roles,
	}

	if err := h.store.Save(w, r, fresh); err != nil {
		h.logger.Error().Err(err).Msg("failed to save session after login")
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.cache.Set(token.AccessToken)
	h.logger.Info().Str("subject", fresh.Subject).Msg("user logged in")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles POST /logout. Local state goes first: the session
// cookie is cleared and any other identity cookies are expired. Then the
// browser is sent to the provider's end-session endpoint so the provider
// session dies too.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(w, r); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear session cookie")
	}

	for _, cookie := range r.Cookies() {
		name := strings.ToLower(cookie.Name)
		if strings.Contains(name, "auth") || strings.Contains(name, "oidc") || strings.Contains(name, "keycloak") {
			http.SetCookie(w, &http.Cookie{Name: cookie.Name, Path: "/", MaxAge: -1})
		}
	}

	if h.endSessionURL == "" {
		// No advertised end-session endpoint; the local logout is all
		// we can do.
		h.render(w, "logged_out.html", pageData{Data: h.postLogoutURL})
		return
	}

	query := url.Values{}
	query.Set("client_id", h.clientID)
	query.Set("post_logout_redirect_uri", h.postLogoutURL)
	http.Redirect(w, r, h.endSessionURL+"?"+query.Encode(), http.StatusFound)
}

func (h *Handlers) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("template render failed")
	}
}

// SessionFrom returns the session stored in the request context by the
// session middleware, or nil when the request is anonymous.
func SessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionCtxKey).(*session.Session)
	return sess
}
