package config

import (
	"strings"
	"time"
)

// APIConfig contains event store connection settings.
type APIConfig struct {
	// BaseURL is the event store root; API paths (/api/events, ...) are appended.
	BaseURL string        `env:"EVENTBROWSER_API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"EVENTBROWSER_API_TIMEOUT"  envDefault:"15s"`

	// AuthScheme is the Authorization scheme used for adopted tokens (Basic or Bearer).
	AuthScheme string `env:"EVENTBROWSER_AUTH_SCHEME" envDefault:"Basic"`

	// Token is a pre-issued credential adopted at startup. Leave empty to log in
	// interactively.
	Token string `env:"EVENTBROWSER_TOKEN"`

	// EmbedCredentialInExportLinks appends auth=<token> to export links so they
	// can be opened without an Authorization header. The token then appears in
	// URLs, history and server logs.
	EmbedCredentialInExportLinks bool `env:"EVENTBROWSER_EXPORT_EMBED_CREDENTIAL" envDefault:"true"`
}

// Sanitize trims values and restores defaults for unusable settings.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Token = strings.TrimSpace(c.Token)
	c.AuthScheme = strings.TrimSpace(c.AuthScheme)
	if c.AuthScheme == "" {
		c.AuthScheme = "Basic"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
