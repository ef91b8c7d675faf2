package domain

// ScopeUser is granted to every caller whose token resolves to a user
// profile. Networked tool routes require it.
const ScopeUser = "user"

// Identity is the authenticated caller attached to a networked request.
// It lives for one request and is never persisted.
type Identity struct {
	Subject  string         `json:"sub"`
	ClientID string         `json:"client_id,omitempty"`
	Scopes   []string       `json:"scopes"`
	Claims   map[string]any `json:"claims,omitempty"`
}

// HasScope reports whether the identity was granted scope.
func (i *Identity) HasScope(scope string) bool {
	if i == nil {
		return false
	}
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
