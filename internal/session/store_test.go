package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eIIka/tour-agency/internal/domain"
)

func signToken(t *testing.T, email, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   email,
		"roles": []string{role},
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newFileStore(t *testing.T) *FileCredentialStore {
	t.Helper()
	return NewFileCredentialStore(filepath.Join(t.TempDir(), "slot", "credential"))
}

func TestFileCredentialStoreRoundTrip(t *testing.T) {
	store := newFileStore(t)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded, "empty slot should load as empty string")

	require.NoError(t, store.Save("some-credential"))
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "some-credential", loaded)

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Clearing an already empty slot is not an error.
	require.NoError(t, store.Clear())
}

func TestNewRestoresValidCredential(t *testing.T) {
	creds := newFileStore(t)
	credential := signToken(t, "anna@example.com", "ROLE_CLIENT", time.Now().Add(time.Hour))
	require.NoError(t, creds.Save(credential))

	store, err := New(creds)
	require.NoError(t, err)

	current := store.Current()
	assert.Equal(t, "anna@example.com", current.Subject)
	assert.Equal(t, domain.RoleClient, current.Role)
	assert.Equal(t, credential, store.Credential())
}

func TestNewDiscardsExpiredCredential(t *testing.T) {
	creds := newFileStore(t)
	require.NoError(t, creds.Save(signToken(t, "anna@example.com", "ROLE_CLIENT", time.Now().Add(-time.Hour))))

	store, err := New(creds)
	require.NoError(t, err)

	assert.True(t, store.Current().IsAnonymous())
	assert.Empty(t, store.Credential())

	loaded, err := creds.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded, "expired credential must be removed from the slot")
}

func TestNewDiscardsMalformedCredential(t *testing.T) {
	creds := newFileStore(t)
	require.NoError(t, creds.Save("garbage"))

	store, err := New(creds)
	require.NoError(t, err)
	assert.True(t, store.Current().IsAnonymous())

	loaded, err := creds.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoginLogout(t *testing.T) {
	creds := newFileStore(t)
	store, err := New(creds)
	require.NoError(t, err)

	var seen []domain.Identity
	store.Subscribe(func(id domain.Identity) { seen = append(seen, id) })

	credential := signToken(t, "anna@example.com", "ROLE_CLIENT", time.Now().Add(time.Hour))
	identity := domain.Identity{Subject: "anna@example.com", Role: domain.RoleClient, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Login(credential, identity))

	assert.Equal(t, identity, store.Current())
	loaded, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, credential, loaded, "slot and identity must agree after login")

	require.NoError(t, store.Logout())
	assert.True(t, store.Current().IsAnonymous())
	loaded, err = creds.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded, "slot and identity must agree after logout")

	require.Len(t, seen, 2)
	assert.Equal(t, identity, seen[0])
	assert.True(t, seen[1].IsAnonymous())
}

type failingCredentialStore struct {
	saveErr error
}

func (s *failingCredentialStore) Load() (string, error) { return "", nil }
func (s *failingCredentialStore) Save(string) error     { return s.saveErr }
func (s *failingCredentialStore) Clear() error          { return nil }

func TestLoginPersistFailureLeavesSessionUnchanged(t *testing.T) {
	creds := &failingCredentialStore{saveErr: errors.New("disk full")}
	store, err := New(creds)
	require.NoError(t, err)

	identity := domain.Identity{Subject: "anna@example.com", Role: domain.RoleClient}
	err = store.Login("credential", identity)
	require.Error(t, err)

	assert.True(t, store.Current().IsAnonymous())
	assert.Empty(t, store.Credential())
}

func TestCurrentDetectsExpiryLazily(t *testing.T) {
	creds := newFileStore(t)
	store, err := New(creds)
	require.NoError(t, err)

	now := time.Now()
	store.now = func() time.Time { return now }

	identity := domain.Identity{Subject: "anna@example.com", Role: domain.RoleClient, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, store.Login("credential", identity))
	assert.False(t, store.Current().IsAnonymous())

	var downgraded bool
	store.Subscribe(func(id domain.Identity) { downgraded = id.IsAnonymous() })

	now = now.Add(2 * time.Minute)
	assert.True(t, store.Current().IsAnonymous())
	assert.Empty(t, store.Credential())
	assert.True(t, downgraded)

	loaded, err := creds.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
