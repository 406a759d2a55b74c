package auth

// Package auth contains domain-level types for the browser's credential session.
// It is pure and free of transport/storage concerns.

import (
	"encoding/base64"
	"strings"
	"time"
)

// Scheme is the Authorization header scheme the event store expects.
type Scheme string

const (
	SchemeBasic  Scheme = "Basic"
	SchemeBearer Scheme = "Bearer"
)

// ParseScheme maps a configured scheme name onto a known Scheme.
// Unknown values fall back to Basic, which is what the event store speaks.
func ParseScheme(s string) Scheme {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bearer":
		return SchemeBearer
	default:
		return SchemeBasic
	}
}

// Credential is the opaque token held for the lifetime of a browser session.
// Token is sent verbatim after the scheme; the browser never inspects it.
type Credential struct {
	Scheme    Scheme    `json:"scheme"`
	Token     string    `json:"token"`
	Username  string    `json:"username,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsZero reports whether no token is held.
func (c Credential) IsZero() bool { return strings.TrimSpace(c.Token) == "" }

// Expired reports whether the credential carries an expiry that has passed.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// BasicToken encodes username:password the way HTTP Basic auth expects.
func BasicToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
