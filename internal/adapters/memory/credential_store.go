// Package memory holds process-local adapters.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/ports"
)

// CredentialStore keeps the credential for the lifetime of the process, which is
// the terminal equivalent of browser session storage.
type CredentialStore struct {
	mu   sync.RWMutex
	cred domainauth.Credential
	set  bool
	now  func() time.Time
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{now: time.Now}
}

func (s *CredentialStore) Save(_ context.Context, cred domainauth.Credential) error {
	if cred.IsZero() {
		return errors.New("credential token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.set = true
	return nil
}

func (s *CredentialStore) Get(_ context.Context) (domainauth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return domainauth.Credential{}, ports.ErrCredentialNotFound
	}
	if s.cred.Expired(s.now()) {
		s.cred = domainauth.Credential{}
		s.set = false
		return domainauth.Credential{}, ports.ErrCredentialNotFound
	}
	return s.cred, nil
}

func (s *CredentialStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = domainauth.Credential{}
	s.set = false
	return nil
}
