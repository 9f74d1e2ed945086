package auth

import (
	"context"
	"fmt"

	"shopfront/internal/config"
	"shopfront/internal/model"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
)

// Verifier validates bearer access tokens against the identity provider's
// published signing keys and builds a request principal from the claims.
type Verifier struct {
	verifier  *oidc.IDTokenVerifier
	audiences []string
	logger    zerolog.Logger
}

// NewVerifier discovers the provider configuration and prepares a
// JWKS-backed token verifier. The audience check is done locally because
// either of the configured audience values is acceptable.
func NewVerifier(ctx context.Context, cfg config.OIDCConfig, logger zerolog.Logger) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return &Verifier{
		verifier: provider.Verifier(&oidc.Config{
			// Audience is validated in Verify against the allowed set.
			SkipClientIDCheck: true,
		}),
		audiences: cfg.Audiences,
		logger:    logger.With().Str("component", "token_verifier").Logger(),
	}, nil
}

// Verify checks signature, issuer and expiry of a raw bearer token and
// returns the principal it represents. Realm roles are extracted through
// the shared claims transform; a role parse failure is logged and the
// principal proceeds without roles (fail open), so role-gated routes still
// reject it with an authorization error rather than an authentication one.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*model.Principal, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !audienceAllowed(token.Audience, v.audiences) {
		return nil, fmt.Errorf("token audience %v not in allowed set", token.Audience)
	}

	var claims map[string]any
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}

	principal := &model.Principal{
		Subject: token.Subject,
		Name:    DisplayName(claims),
	}

	roles, err := RealmRoles(claims)
	if err != nil {
		v.logger.Warn().Err(err).Str("subject", token.Subject).
			Msg("failed to extract realm roles, continuing without roles")
	}
	principal.Roles = roles

	return principal, nil
}

// audienceAllowed reports whether any of the token's audiences matches an
// allowed value.
func audienceAllowed(tokenAudiences, allowed []string) bool {
	for _, aud := range tokenAudiences {
		for _, want := range allowed {
			if aud == want {
				return true
			}
		}
	}
	return false
}
