package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/ports"
)

func TestCredentialStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewCredentialStore()

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, ports.ErrCredentialNotFound)

	require.NoError(t, s.Save(ctx, domainauth.Credential{Scheme: domainauth.SchemeBasic, Token: "tok"}))
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, s.Delete(ctx))
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestCredentialStore_RejectsEmptyToken(t *testing.T) {
	err := NewCredentialStore().Save(context.Background(), domainauth.Credential{})
	require.Error(t, err)
}

func TestCredentialStore_DropsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewCredentialStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, domainauth.Credential{Token: "tok", ExpiresAt: now.Add(time.Minute)}))
	_, err := s.Get(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}
