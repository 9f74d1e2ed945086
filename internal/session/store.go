package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shopfront/internal/config"

	"github.com/gorilla/sessions"
)

// TokenBundle holds the tokens issued for one login.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session is the state kept per browser in the encrypted session cookie.
// State and Nonce are only populated between the login redirect and the
// callback.
type Session struct {
	Bundle  TokenBundle `json:"bundle"`
	Subject string      `json:"subject"`
	Name    string      `json:"name"`
	Roles   []string    `json:"roles"`
	State   string      `json:"state,omitempty"`
	Nonce   string      `json:"nonce,omitempty"`
}

// LoggedIn reports whether the session carries tokens.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Bundle.AccessToken != ""
}

// Store persists sessions between requests.
type Store interface {
	// Get loads the session for a request. A missing or undecodable
	// cookie yields a nil session and no error.
	Get(r *http.Request) (*Session, error)

	// Save writes the session back to the response.
	Save(w http.ResponseWriter, r *http.Request, sess *Session) error

	// Clear expires the session cookie.
	Clear(w http.ResponseWriter, r *http.Request) error
}

const sessionValueKey = "data"

// CookieStore stores the whole session in a signed, encrypted cookie.
type CookieStore struct {
	store      *sessions.CookieStore
	cookieName string
}

// NewCookieStore creates a cookie-backed session store.
func NewCookieStore(cfg config.SessionConfig) *CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.AuthKey), []byte(cfg.EncryptionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.TTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieStore{store: store, cookieName: cfg.CookieName}
}

// Get loads the session for a request.
func (c *CookieStore) Get(r *http.Request) (*Session, error) {
	raw, err := c.store.Get(r, c.cookieName)
	if err != nil {
		// An unreadable cookie (rotated keys, tampering) is treated as
		// no session rather than an error.
		return nil, nil
	}
	if raw.IsNew {
		return nil, nil
	}

	blob, ok := raw.Values[sessionValueKey].(string)
	if !ok {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(blob), &sess); err != nil {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session back to the response.
func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	raw, _ := c.store.Get(r, c.cookieName)

	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	raw.Values[sessionValueKey] = string(blob)
	if err := raw.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear expires the session cookie.
func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	raw, _ := c.store.Get(r, c.cookieName)
	raw.Options.MaxAge = -1
	raw.Values = make(map[interface{}]interface{})
	if err := raw.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
