package session

import (
	"context"
	"testing"
	"time"

	"medibot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	auth, err := NewAuthenticator(store, DemoCredentials, time.Hour, nil)
	require.NoError(t, err)
	return auth, store
}

func TestLogin_DemoUsers(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	s, err := auth.Login(context.Background(), "usuario@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "Usuario", s.User.Name)
	assert.Equal(t, "usuario@example.com", s.User.Email)

	s, err = auth.Login(context.Background(), " Demo@Test.com ", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "Demo", s.User.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	_, err := auth.Login(context.Background(), "usuario@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.EqualError(t, err, "Email o contraseña inválidos")

	_, err = auth.Login(context.Background(), "nadie@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthorizeAndLogout(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	ctx := context.Background()
	s, err := auth.Login(ctx, "demo@test.com", "demo123")
	require.NoError(t, err)

	got, err := auth.Authorize(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User, got.User)

	require.NoError(t, auth.Logout(ctx, s.Token))
	_, err = auth.Authorize(ctx, s.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorize_RejectsGarbage(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	_, err := auth.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Authorize(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), "k", models.Session{Token: "t"}, time.Minute))

	_, err := store.Get(context.Background(), "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestUserFor_StableID(t *testing.T) {
	a := UserFor("usuario@example.com")
	b := UserFor("USUARIO@example.com")
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, UserFor("demo@test.com").ID)
}
