package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/mmk-event-browser/internal/adapters/memory"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/mocks"
	mockauth "github.com/target/mmk-event-browser/internal/mocks/auth"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
	"github.com/target/mmk-event-browser/internal/ports"
)

func newTestSession(prober ports.CredentialProber) (*SessionService, *memory.CredentialStore, *statsd.Recorder) {
	store := memory.NewCredentialStore()
	rec := &statsd.Recorder{}
	s := NewSessionService(SessionServiceOptions{
		Store:  store,
		Prober: prober,
		Config: SessionConfig{Metrics: rec},
	})
	return s, store, rec
}

func TestNewSessionService_RequiresStore(t *testing.T) {
	assert.Panics(t, func() { NewSessionService(SessionServiceOptions{}) })
}

func TestSessionService_Login(t *testing.T) {
	prober := mockauth.NewStubProber([2]string{"alice", "s3cret"})
	s, _, _ := newTestSession(prober)
	ctx := context.Background()

	assert.False(t, s.LoggedIn(ctx))

	cred, err := s.Login(ctx, " alice ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domainauth.SchemeBasic, cred.Scheme)
	assert.Equal(t, "YWxpY2U6czNjcmV0", cred.Token)
	assert.Equal(t, "alice", cred.Username)
	assert.True(t, cred.ExpiresAt.IsZero())

	assert.Equal(t, "YWxpY2U6czNjcmV0", s.Token(ctx))
	require.Len(t, prober.Calls(), 1)
}

func TestSessionService_LoginRejected(t *testing.T) {
	prober := mockauth.NewStubProber([2]string{"alice", "s3cret"})
	s, store, _ := newTestSession(prober)
	ctx := context.Background()

	_, err := s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)

	_, err = s.Login(ctx, "", "x")
	assert.True(t, apperrors.IsValidation(err))
}

func TestSessionService_LoginProbeFailure(t *testing.T) {
	boom := apperrors.RequestFailed(503, "HTTP 503")
	prober := &mockauth.StubProber{ProbeFunc: func(context.Context, domainauth.Credential) error { return boom }}
	s, _, _ := newTestSession(prober)

	_, err := s.Login(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.LoggedIn(context.Background()))
}

func TestSessionService_LoginWithoutProber(t *testing.T) {
	s, _, _ := newTestSession(nil)
	_, err := s.Login(context.Background(), "alice", "s3cret")
	assert.Error(t, err)
}

func TestSessionService_TTL(t *testing.T) {
	now := time.Now()
	store := memory.NewCredentialStore()
	s := NewSessionService(SessionServiceOptions{
		Store:  store,
		Prober: mockauth.NewStubProber([2]string{"bob", "pw"}),
		Config: SessionConfig{TTL: time.Hour, Now: func() time.Time { return now }},
	})

	cred, err := s.Login(context.Background(), "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, now, cred.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), cred.ExpiresAt)
}

func TestSessionService_AdoptAndLogout(t *testing.T) {
	store := memory.NewCredentialStore()
	s := NewSessionService(SessionServiceOptions{
		Store:  store,
		Config: SessionConfig{Scheme: domainauth.SchemeBearer},
	})
	ctx := context.Background()

	assert.ErrorIs(t, s.Adopt(ctx, "  "), apperrors.ErrNoCredential)
	require.NoError(t, s.Adopt(ctx, "tok"))

	cred, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainauth.SchemeBearer, cred.Scheme)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoCredential)
	assert.Empty(t, s.Token(ctx))
}

func TestSessionService_Expire(t *testing.T) {
	s, store, rec := newTestSession(nil)
	ctx := context.Background()
	require.NoError(t, s.Adopt(ctx, "tok"))

	var handler mockauth.ExpiryRecorder
	s.SetAuthExpiredHandler(&handler)
	s.Expire(ctx)

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
	assert.Equal(t, 1, handler.Count())
	assert.EqualValues(t, 1, rec.CountTotal("browser.auth.expired", nil))
}

func TestSessionService_StoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	s := NewSessionService(SessionServiceOptions{Store: store})
	ctx := context.Background()
	boom := errors.New("redis down")

	store.EXPECT().Get(gomock.Any()).Return(domainauth.Credential{}, boom)
	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, boom)

	store.EXPECT().Delete(gomock.Any()).Return(boom)
	assert.ErrorIs(t, s.Logout(ctx), boom)

	// Expire still notifies when the store cannot be cleared.
	var handler mockauth.ExpiryRecorder
	s.SetAuthExpiredHandler(&handler)
	store.EXPECT().Delete(gomock.Any()).Return(boom)
	s.Expire(ctx)
	assert.Equal(t, 1, handler.Count())

	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(boom)
	assert.ErrorIs(t, s.Adopt(ctx, "tok"), boom)
}
