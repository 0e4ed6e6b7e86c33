// Package domain contiene los tipos compartidos entre el core, los adapters y los
// providers.
package domain

import "time"

// User es el usuario autenticado tal como lo ven callbacks y events.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Session es una sesión stateful guardada por el adapter.
// El core nunca inspecciona más que SessionToken y Expires.
type Session struct {
	SessionToken string    `json:"sessionToken"`
	UserID       string    `json:"userId"`
	Expires      time.Time `json:"expires"`
}

// Expired indica si la sesión ya venció respecto de now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.Expires)
}

// VerificationToken es el token del link mágico de email.
type VerificationToken struct {
	Identifier string    `json:"identifier"`
	TokenHash  string    `json:"tokenHash"`
	Expires    time.Time `json:"expires"`
}
