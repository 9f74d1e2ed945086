package auth

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// realmAccessClaim is the claim under which the identity provider nests
// realm roles instead of emitting flat role claims.
const realmAccessClaim = "realm_access"

// RealmRoles extracts the role names nested under the realm_access claim.
// The claim may arrive as a JSON object or as a string holding embedded
// JSON, depending on how the token was relayed. A missing claim yields no
// roles and no error; a malformed claim yields a parse error so the caller
// can decide between failing open and failing closed.
func RealmRoles(claims map[string]any) ([]string, error) {
	raw, ok := claims[realmAccessClaim]
	if !ok {
		return nil, nil
	}

	var access map[string]any
	switch v := raw.(type) {
	case map[string]any:
		access = v
	case string:
		if err := json.Unmarshal([]byte(v), &access); err != nil {
			return nil, fmt.Errorf("failed to parse %s claim: %w", realmAccessClaim, err)
		}
	default:
		return nil, fmt.Errorf("unexpected %s claim type %T", realmAccessClaim, raw)
	}

	rawRoles, ok := access["roles"]
	if !ok {
		return nil, nil
	}

	list, ok := rawRoles.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected %s roles type %T", realmAccessClaim, rawRoles)
	}

	var roles []string
	for _, entry := range list {
		if role, ok := entry.(string); ok && role != "" {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// RolesFromAccessToken reads the access token without verifying its
// signature and extracts realm roles from it. The token was already
// validated when it was obtained; this is a claim read, not a trust
// decision.
func RolesFromAccessToken(accessToken string) ([]string, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	return RealmRoles(claims)
}

// MergeRoles combines two role lists, preserving order and dropping
// duplicates.
func MergeRoles(existing, extracted []string) []string {
	seen := make(map[string]bool, len(existing)+len(extracted))
	merged := make([]string, 0, len(existing)+len(extracted))
	for _, role := range existing {
		if !seen[role] {
			seen[role] = true
			merged = append(merged, role)
		}
	}
	for _, role := range extracted {
		if !seen[role] {
			seen[role] = true
			merged = append(merged, role)
		}
	}
	return merged
}

// DisplayName picks the best human-readable name from a claim set.
func DisplayName(claims map[string]any) string {
	for _, key := range []string{"name", "preferred_username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return "unknown user"
}
