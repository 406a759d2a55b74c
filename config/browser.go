package config

import "time"

const (
	defaultPageSize        = 200
	maxPageSize            = 500
	defaultExportLimit     = 50000
	defaultDebounce        = 300 * time.Millisecond
	defaultScrollThreshold = 20
	defaultViewportRows    = 25
	defaultDetailCacheSize = 256
	defaultDetailCacheTTL  = 5 * time.Minute
)

// BrowserConfig contains paging, trigger and detail-view tunables.
type BrowserConfig struct {
	// PageSize is the number of events requested per page.
	PageSize int `env:"EVENTBROWSER_PAGE_SIZE" envDefault:"200"`

	// ExportLimit bounds export downloads and links.
	ExportLimit int `env:"EVENTBROWSER_EXPORT_LIMIT" envDefault:"50000"`

	// Debounce is the quiet period after a filter edit before the list reloads.
	Debounce time.Duration `env:"EVENTBROWSER_DEBOUNCE" envDefault:"300ms"`

	// ScrollThreshold is how many rows from the end of the list scrolling must
	// reach before the next page loads.
	ScrollThreshold int `env:"EVENTBROWSER_SCROLL_THRESHOLD" envDefault:"20"`

	ViewportRows    int           `env:"EVENTBROWSER_VIEWPORT_ROWS"     envDefault:"25"`
	DetailCacheSize int           `env:"EVENTBROWSER_DETAIL_CACHE_SIZE" envDefault:"256"`
	DetailCacheTTL  time.Duration `env:"EVENTBROWSER_DETAIL_CACHE_TTL"  envDefault:"5m"`
	DetailFormat    string        `env:"EVENTBROWSER_DETAIL_FORMAT"     envDefault:"json"`
	PreviewRunes    int           `env:"EVENTBROWSER_PREVIEW_RUNES"     envDefault:"120"`
}

// Sanitize applies guardrails to browser tunables.
func (c *BrowserConfig) Sanitize() {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	// The backend rejects larger pages.
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
	if c.ExportLimit <= 0 {
		c.ExportLimit = defaultExportLimit
	}
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	if c.ScrollThreshold < 0 {
		c.ScrollThreshold = defaultScrollThreshold
	}
	if c.ViewportRows <= 0 {
		c.ViewportRows = defaultViewportRows
	}
	if c.DetailCacheSize <= 0 {
		c.DetailCacheSize = defaultDetailCacheSize
	}
	if c.DetailCacheTTL <= 0 {
		c.DetailCacheTTL = defaultDetailCacheTTL
	}
	if c.DetailFormat != "yaml" {
		c.DetailFormat = "json"
	}
	if c.PreviewRunes <= 0 {
		c.PreviewRunes = 120
	}
}
