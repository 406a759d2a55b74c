package redis

// Package redis provides Redis-based adapters for the event browser.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-event-browser/internal/cryptoutil"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/ports"
)

// DefaultKeyPrefix namespaces credential keys.
const DefaultKeyPrefix = "eventbrowser:credential:"

// CredentialStore keeps one browser session's credential in Redis so several
// terminals started with the same session id share a login.
// Keys expire with the credential, or after the configured TTL when it carries none.
// Values are sealed with the configured encryptor since a Basic token is a
// reusable password.
type CredentialStore struct {
	client    redis.UniversalClient
	encryptor cryptoutil.Encryptor
	prefix    string
	sessionID string
	ttl       time.Duration
	now       func() time.Time
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// CredentialStoreOptions configures a Redis credential store.
type CredentialStoreOptions struct {
	Client    redis.UniversalClient
	SessionID string
	Prefix    string
	TTL       time.Duration
	Encryptor cryptoutil.Encryptor // Optional: defaults to cryptoutil.NoopEncryptor
}

// NewCredentialStore creates a Redis-based credential store.
func NewCredentialStore(opts CredentialStoreOptions) (*CredentialStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.SessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	encryptor := opts.Encryptor
	if encryptor == nil {
		encryptor = cryptoutil.NoopEncryptor{}
	}
	return &CredentialStore{
		client:    opts.Client,
		encryptor: encryptor,
		prefix:    prefix,
		sessionID: opts.SessionID,
		ttl:       opts.TTL,
		now:       time.Now,
	}, nil
}

// Key returns the Redis key holding this session's credential.
func (s *CredentialStore) Key() string { return s.prefix + s.sessionID }

func (s *CredentialStore) Save(ctx context.Context, cred domainauth.Credential) error {
	if cred.IsZero() {
		return errors.New("credential token cannot be empty")
	}

	ttl := s.ttl
	if !cred.ExpiresAt.IsZero() {
		ttl = cred.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("credential is expired")
		}
	}

	data, err := s.seal(cred)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *CredentialStore) Get(ctx context.Context) (domainauth.Credential, error) {
	data, err := s.client.Get(ctx, s.Key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Credential{}, ports.ErrCredentialNotFound
		}
		return domainauth.Credential{}, fmt.Errorf("redis get: %w", err)
	}

	cred, err := s.open(data)
	if err != nil {
		return domainauth.Credential{}, err
	}

	if cred.Expired(s.now()) {
		if deleteErr := s.Delete(ctx); deleteErr != nil {
			return domainauth.Credential{}, fmt.Errorf("cleanup expired credential: %w", deleteErr)
		}
		return domainauth.Credential{}, ports.ErrCredentialNotFound
	}
	return cred, nil
}

func (s *CredentialStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.Key()).Err()
}

func (s *CredentialStore) seal(cred domainauth.Credential) (string, error) {
	data, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("marshal credential: %w", err)
	}
	sealed, err := s.encryptor.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}
	return sealed, nil
}

func (s *CredentialStore) open(sealed string) (domainauth.Credential, error) {
	data, err := s.encryptor.Decrypt(sealed)
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("decrypt credential: %w", err)
	}
	var cred domainauth.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return domainauth.Credential{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	return cred, nil
}
