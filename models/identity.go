package models

import "strings"

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// DisplayName picks the name a new player row starts with.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok && local != "" {
		return local
	}
	return i.Subject
}
