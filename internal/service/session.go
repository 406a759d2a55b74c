package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/observability/metrics"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
	"github.com/target/mmk-event-browser/internal/ports"
)

// SessionConfig groups session tunables and observers.
type SessionConfig struct {
	// Scheme is used for adopted tokens; logins always produce Basic credentials.
	Scheme  domainauth.Scheme
	TTL     time.Duration
	Now     func() time.Time
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Store  ports.CredentialStore  // Required
	Prober ports.CredentialProber // Optional: required for Login
	Config SessionConfig
}

// SessionService owns the credential lifecycle: it establishes the session
// credential, hands it out, and tears it down on logout or when the event store
// rejects it.
type SessionService struct {
	store   ports.CredentialStore
	prober  ports.CredentialProber
	scheme  domainauth.Scheme
	ttl     time.Duration
	now     func() time.Time
	metrics statsd.Sink
	logger  *slog.Logger

	mu        sync.RWMutex
	onExpired ports.AuthExpiredHandler
}

// NewSessionService constructs a SessionService. It panics if Store is nil.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Store == nil {
		panic("service: SessionServiceOptions.Store is required")
	}
	scheme := opts.Config.Scheme
	if scheme == "" {
		scheme = domainauth.SchemeBasic
	}
	now := opts.Config.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:   opts.Store,
		prober:  opts.Prober,
		scheme:  scheme,
		ttl:     opts.Config.TTL,
		now:     now,
		metrics: opts.Config.Metrics,
		logger:  logger.With("component", "session"),
	}
}

// SetAuthExpiredHandler registers the handler told about rejected credentials.
func (s *SessionService) SetAuthExpiredHandler(h ports.AuthExpiredHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = h
}

// Login verifies username/password with one probe request and stores the
// resulting Basic credential. Rejected credentials yield ErrInvalidCredentials
// and leave the store untouched.
func (s *SessionService) Login(ctx context.Context, username, password string) (domainauth.Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domainauth.Credential{}, apperrors.Validation("username and password are required")
	}
	if s.prober == nil {
		return domainauth.Credential{}, errors.New("login is not available without a credential prober")
	}

	cred := s.newCredential(domainauth.SchemeBasic, domainauth.BasicToken(username, password))
	cred.Username = username

	if err := s.prober.Probe(ctx, cred); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.InfoContext(ctx, "login rejected", "username", username)
			return domainauth.Credential{}, err
		}
		return domainauth.Credential{}, fmt.Errorf("verify credential: %w", err)
	}
	if err := s.store.Save(ctx, cred); err != nil {
		return domainauth.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	s.logger.InfoContext(ctx, "session established", "username", username)
	return cred, nil
}

// Adopt stores a pre-issued token without probing it.
func (s *SessionService) Adopt(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ErrNoCredential
	}
	if err := s.store.Save(ctx, s.newCredential(s.scheme, token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Current returns the stored credential, or ErrNoCredential.
func (s *SessionService) Current(ctx context.Context) (domainauth.Credential, error) {
	cred, err := s.store.Get(ctx)
	if errors.Is(err, ports.ErrCredentialNotFound) {
		return domainauth.Credential{}, apperrors.ErrNoCredential
	}
	if err != nil {
		return domainauth.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

// Token returns the current token or "" when there is no session.
func (s *SessionService) Token(ctx context.Context) string {
	cred, err := s.Current(ctx)
	if err != nil {
		return ""
	}
	return cred.Token
}

// LoggedIn reports whether a credential is held.
func (s *SessionService) LoggedIn(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Logout clears the credential.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Expire clears the credential after the event store rejected it and tells the
// registered handler, which prompts for a new login.
func (s *SessionService) Expire(ctx context.Context) {
	if err := s.store.Delete(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear rejected credential", "error", err)
	}
	metrics.EmitAuthExpired(s.metrics)

	s.mu.RLock()
	h := s.onExpired
	s.mu.RUnlock()
	if h != nil {
		h.OnAuthExpired(ctx)
	}
}

func (s *SessionService) newCredential(scheme domainauth.Scheme, token string) domainauth.Credential {
	now := s.now()
	cred := domainauth.Credential{Scheme: scheme, Token: token, IssuedAt: now}
	if s.ttl > 0 {
		cred.ExpiresAt = now.Add(s.ttl)
	}
	return cred
}
