package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	start := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer([]byte("secret-a"), time.Hour).Issue("admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("secret-b"), time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	_, err := issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHashDeviceKey_Deterministic(t *testing.T) {
	h1 := HashDeviceKey("device-key-1", []byte("pepper"))
	h2 := HashDeviceKey("device-key-1", []byte("pepper"))
	h3 := HashDeviceKey("device-key-1", []byte("other-pepper"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
