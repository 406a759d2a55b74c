package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-event-browser/internal/cryptoutil"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/ports"
	"github.com/target/mmk-event-browser/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func testEncryptor(t *testing.T) *cryptoutil.AESGCMEncryptor {
	t.Helper()
	enc, err := cryptoutil.NewAESGCMEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return enc
}

func newTestStore(t *testing.T, client *redis.Client, ttl time.Duration) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(CredentialStoreOptions{
		Client:    client,
		SessionID: uuid.NewString(),
		Prefix:    "test-eventbrowser:",
		TTL:       ttl,
		Encryptor: testEncryptor(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(context.Background()) })
	return store
}

func TestCredentialStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := newTestStore(t, client, time.Hour)
	ctx := context.Background()

	cred := domainauth.Credential{
		Scheme:   domainauth.SchemeBasic,
		Token:    domainauth.BasicToken("alice", "pw"),
		Username: "alice",
		IssuedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, cred))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, got.Token)
	assert.Equal(t, cred.Scheme, got.Scheme)
	assert.Equal(t, "alice", got.Username)

	ttl := client.TTL(ctx, store.Key()).Val()
	assert.Greater(t, ttl, 59*time.Minute)

	raw := client.Get(ctx, store.Key()).Val()
	assert.NotContains(t, raw, cred.Token)
	assert.NotContains(t, raw, "alice")
}

func TestCredentialStore_SealsValues(t *testing.T) {
	store, err := NewCredentialStore(CredentialStoreOptions{
		Client:    redis.NewClient(&redis.Options{Addr: "localhost:0"}),
		SessionID: "s",
		Encryptor: testEncryptor(t),
	})
	require.NoError(t, err)

	cred := domainauth.Credential{
		Scheme:   domainauth.SchemeBasic,
		Token:    domainauth.BasicToken("alice", "pw"),
		Username: "alice",
	}
	sealed, err := store.seal(cred)
	require.NoError(t, err)
	assert.NotContains(t, sealed, cred.Token)
	assert.NotContains(t, sealed, "alice")

	got, err := store.open(sealed)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, got.Token)
	assert.Equal(t, "alice", got.Username)

	_, err = store.open(`{"token":"plain"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt credential")
}

func TestCredentialStore_DefaultsToNoopEncryptor(t *testing.T) {
	store, err := NewCredentialStore(CredentialStoreOptions{
		Client:    redis.NewClient(&redis.Options{Addr: "localhost:0"}),
		SessionID: "s",
	})
	require.NoError(t, err)

	sealed, err := store.seal(domainauth.Credential{Token: "tok"})
	require.NoError(t, err)
	got, err := store.open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
}

func TestCredentialStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := newTestStore(t, client, time.Hour)
	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestCredentialStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := newTestStore(t, client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Credential{Token: "tok"}))
	require.NoError(t, store.Delete(ctx))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
	assert.Equal(t, int64(0), client.Exists(ctx, store.Key()).Val())
}

func TestCredentialStore_ExpiresWithCredential(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := newTestStore(t, client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Credential{
		Token:     "short",
		ExpiresAt: time.Now().Add(100 * time.Millisecond),
	}))

	time.Sleep(200 * time.Millisecond)

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestCredentialStore_RejectsInvalidCredentials(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := newTestStore(t, client, time.Hour)
	ctx := context.Background()

	err := store.Save(ctx, domainauth.Credential{Token: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential token cannot be empty")

	err = store.Save(ctx, domainauth.Credential{Token: "t", ExpiresAt: time.Now().Add(-time.Hour)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential is expired")
}

func TestNewCredentialStore_Validation(t *testing.T) {
	_, err := NewCredentialStore(CredentialStoreOptions{SessionID: "x"})
	require.Error(t, err)

	_, err = NewCredentialStore(CredentialStoreOptions{Client: redis.NewClient(&redis.Options{Addr: "localhost:0"})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")
}
