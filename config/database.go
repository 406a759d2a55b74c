package config

import (
	"strings"
	"time"
)

// SessionStore selects where the session credential is kept.
type SessionStore string

const (
	// SessionStoreMemory keeps the credential in process; it is lost on exit.
	SessionStoreMemory SessionStore = "memory"
	// SessionStoreRedis keeps the credential in Redis under the session id so
	// several terminals can share a login.
	SessionStoreRedis SessionStore = "redis"
)

// SessionConfig contains credential session settings.
type SessionConfig struct {
	Store SessionStore  `env:"EVENTBROWSER_SESSION_STORE" envDefault:"memory"`
	TTL   time.Duration `env:"EVENTBROWSER_SESSION_TTL"   envDefault:"12h"`

	// ID names the shared session in Redis. Empty means a fresh id per run.
	ID string `env:"EVENTBROWSER_SESSION_ID"`

	// EncryptionKey seals credentials stored in Redis. A 64-char hex string is
	// used as the AES-256 key; anything else is hashed into one.
	EncryptionKey string `env:"EVENTBROWSER_SESSION_ENCRYPTION_KEY"`
}

// Sanitize normalises the store name; unknown stores fall back to memory.
func (c *SessionConfig) Sanitize() {
	switch SessionStore(strings.ToLower(strings.TrimSpace(string(c.Store)))) {
	case SessionStoreRedis:
		c.Store = SessionStoreRedis
	default:
		c.Store = SessionStoreMemory
	}
	c.ID = strings.TrimSpace(c.ID)
	c.EncryptionKey = strings.TrimSpace(c.EncryptionKey)
	if c.TTL < 0 {
		c.TTL = 0
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
