package webapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"shopfront/internal/apiclient"
	"shopfront/internal/config"
	"shopfront/internal/model"
	"shopfront/internal/session"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type stubIDVerifier struct {
	token *oidc.IDToken
	err   error
}

func (s *stubIDVerifier) Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func testCookieStore() *session.CookieStore {
	return session.NewCookieStore(config.SessionConfig{
		CookieName:    "test_session",
		AuthKey:       "0123456789abcdef0123456789abcdef",
		EncryptionKey: "0123456789abcdef",
		TTL:           3600,
	})
}

func newTestHandlers(t *testing.T, store session.Store, verifier session.IDTokenVerifier, apiURL, endSessionURL string) *Handlers {
	t.Helper()

	cache := &apiclient.TokenCache{}
	h, err := NewHandlers(
		store,
		&oauth2.Config{
			ClientID:     "webapp",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://idp.example.com/auth",
				TokenURL: "https://idp.example.com/token",
			},
			RedirectURL: "http://localhost:8081/auth/callback",
			Scopes:      []string{"openid", "profile", "api"},
		},
		verifier,
		apiclient.New(apiURL, cache, zerolog.Nop()),
		cache,
		endSessionURL,
		"webapp",
		"http://localhost:8081/",
		zerolog.Nop(),
	)
	require.NoError(t, err)
	return h
}

func TestLogin_RedirectsWithFreshState(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)

	h.Login(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", location.Host)

	query := location.Query()
	assert.Equal(t, "login", query.Get("prompt"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "webapp", query.Get("client_id"))
	assert.NotEmpty(t, query.Get("state"))
	assert.NotEmpty(t, query.Get("nonce"))

	// The pending state and nonce must round-trip through the session
	next := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	sess, err := store.Get(next)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, query.Get("state"), sess.State)
	assert.Equal(t, query.Get("nonce"), sess.Nonce)
}

func TestCallback_StateMismatch(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid", "")

	// Seed a pending login
	seed := httptest.NewRecorder()
	require.NoError(t, store.Save(seed, httptest.NewRequest(http.MethodGet, "/", nil),
		&session.Session{State: "expected-state", Nonce: "n"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=wrong&code=abc", nil)
	for _, c := range seed.Result().Cookies() {
		req.AddCookie(c)
	}

	h.Callback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_NoPendingLogin(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=abc&code=abc", nil)

	h.Callback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_TwoPhase(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid",
		"https://idp.example.com/logout")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "x"})
	req.AddCookie(&http.Cookie{Name: "KEYCLOAK_IDENTITY", Value: "y"})
	req.AddCookie(&http.Cookie{Name: "unrelated", Value: "z"})

	h.Logout(w, req)

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "https", location.Scheme)
	assert.Equal(t, "/logout", location.Path)
	assert.Equal(t, "webapp", location.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8081/", location.Query().Get("post_logout_redirect_uri"))

	// The session cookie and provider cookies get expired; unrelated
	// cookies stay untouched
	expired := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}
	assert.True(t, expired["test_session"])
	assert.True(t, expired["KEYCLOAK_IDENTITY"])
	assert.False(t, expired["unrelated"])
}

func TestLogout_NoEndSessionEndpoint(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)

	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed out")
}

func TestHome_RendersCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Product{
			{ID: 1, Name: "Keyboard", Stock: 5},
		})
	}))
	defer srv.Close()

	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, srv.URL, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	h.Home(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Keyboard")
	assert.Contains(t, w.Body.String(), "Log in")
}

func TestOrders_RequiresLogin(t *testing.T) {
	store := testCookieStore()
	h := newTestHandlers(t, store, &stubIDVerifier{}, "http://unused.invalid", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)

	h.Orders(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
