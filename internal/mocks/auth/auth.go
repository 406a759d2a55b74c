package auth

// Package auth contains simple hand-written test doubles for credential ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialProber   = (*StubProber)(nil)
	_ ports.AuthExpiredHandler = (*ExpiryRecorder)(nil)
)

// StubProber accepts exactly the tokens listed in Valid unless ProbeFunc is set.
type StubProber struct {
	ProbeFunc func(ctx context.Context, cred domainauth.Credential) error
	Valid     map[string]bool

	mu    sync.Mutex
	calls []domainauth.Credential
}

// NewStubProber creates a prober that accepts the given username/password pairs.
func NewStubProber(pairs ...[2]string) *StubProber {
	valid := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		valid[domainauth.BasicToken(p[0], p[1])] = true
	}
	return &StubProber{Valid: valid}
}

func (p *StubProber) Probe(ctx context.Context, cred domainauth.Credential) error {
	p.mu.Lock()
	p.calls = append(p.calls, cred)
	p.mu.Unlock()

	if p.ProbeFunc != nil {
		return p.ProbeFunc(ctx, cred)
	}
	if p.Valid[cred.Token] {
		return nil
	}
	return apperrors.ErrInvalidCredentials
}

// Calls returns the credentials probed so far.
func (p *StubProber) Calls() []domainauth.Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domainauth.Credential, len(p.calls))
	copy(out, p.calls)
	return out
}

// ExpiryRecorder counts OnAuthExpired notifications.
type ExpiryRecorder struct {
	mu    sync.Mutex
	count int
}

func (r *ExpiryRecorder) OnAuthExpired(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

// Count returns how many notifications were received.
func (r *ExpiryRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
