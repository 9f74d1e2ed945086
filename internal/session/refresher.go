package session

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// refreshWindow is how close to expiry a token may get before it is
// silently refreshed.
const refreshWindow = 5 * time.Minute

// IDTokenVerifier validates a raw ID token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Refresher keeps a session's tokens fresh. When the access token is
// within the refresh window of expiry it runs a refresh grant, validates
// the new ID token, and swaps the bundle.
type Refresher struct {
	oauth    *oauth2.Config
	verifier IDTokenVerifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(oauth *oauth2.Config, verifier IDTokenVerifier, logger zerolog.Logger) *Refresher {
	return &Refresher{
		oauth:    oauth,
		verifier: verifier,
		logger:   logger.With().Str("component", "refresher").Logger(),
		now:      time.Now,
	}
}

// ValidateOrRefresh ensures the session's tokens are usable. It returns
// true when the bundle was replaced and the session must be re-saved. An
// error means the session is no longer trustworthy and the caller should
// force a fresh login.
func (rf *Refresher) ValidateOrRefresh(ctx context.Context, sess *Session) (bool, error) {
	if !sess.LoggedIn() {
		return false, fmt.Errorf("session has no tokens")
	}

	changed := false

	// Older sessions may predate role extraction; derive them from the
	// access token so authorization checks keep working.
	if len(sess.Roles) == 0 {
		roles, err := auth.RolesFromAccessToken(sess.Bundle.AccessToken)
		if err != nil {
			rf.logger.Warn().Err(err).Msg("failed to derive roles from access token")
		} else if len(roles) > 0 {
			sess.Roles = roles
			changed = true
		}
	}

	if rf.now().Add(refreshWindow).Before(sess.Bundle.ExpiresAt) {
		return changed, nil
	}

	if sess.Bundle.RefreshToken == "" {
		return false, fmt.Errorf("access token expiring and no refresh token held")
	}

	// Hand the oauth2 token source an already-expired token so it is
	// forced to run the refresh grant.
	stale := &oauth2.Token{
		AccessToken:  sess.Bundle.AccessToken,
		RefreshToken: sess.Bundle.RefreshToken,
		TokenType:    sess.Bundle.TokenType,
		Expiry:       rf.now().Add(-time.Minute),
	}

	fresh, err := rf.oauth.TokenSource(ctx, stale).Token()
	if err != nil {
		return false, fmt.Errorf("refresh grant failed: %w", err)
	}

	rawIDToken, ok := fresh.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return false, fmt.Errorf("refresh response carried no ID token")
	}

	if _, err := rf.verifier.Verify(ctx, rawIDToken); err != nil {
		return false, fmt.Errorf("refreshed ID token failed validation: %w", err)
	}

	refreshToken := fresh.RefreshToken
	if refreshToken == "" {
		// Providers may omit the refresh token on rotation-less grants.
		refreshToken = sess.Bundle.RefreshToken
	}

	sess.Bundle = TokenBundle{
		AccessToken:  fresh.AccessToken,
		IDToken:      rawIDToken,
		RefreshToken: refreshToken,
		TokenType:    fresh.TokenType,
		ExpiresAt:    fresh.Expiry,
	}

	// The fresh access token may carry updated role assignments.
	roles, err := auth.RolesFromAccessToken(fresh.AccessToken)
	if err != nil {
		rf.logger.Warn().Err(err).Msg("failed to derive roles from refreshed access token")
	} else {
		sess.Roles = auth.MergeRoles(sess.Roles, roles)
	}

	rf.logger.Debug().
		Str("subject", sess.Subject).
		Time("expires_at", sess.Bundle.ExpiresAt).
		Msg("session tokens refreshed")

	return true, nil
}
