package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	tok, exp, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "sid-1", claims.SessionID)

	// access and refresh secrets are not interchangeable
	_, err = m.ParseRefreshToken(tok)
	require.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	require.Error(t, err)
}

func TestJWTManager_Garbage(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	_, err := m.ParseAccessToken("not-a-token")
	require.Error(t, err)
}

func TestJWTManager_Issuer(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour).WithIssuer("go-ddd-blog")
	tok, _, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, "go-ddd-blog", claims.Issuer)

	// same secret, different issuer
	other := NewJWTManager("access", "refresh", time.Minute, time.Hour).WithIssuer("other-app")
	_, err = other.ParseAccessToken(tok)
	require.Error(t, err)
}
