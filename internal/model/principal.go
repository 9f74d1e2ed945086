package model

// Principal is the authenticated identity for a request or session.
type Principal struct {
	Subject string   `json:"subject"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal carries the role. Exact string
// match, no hierarchy.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
