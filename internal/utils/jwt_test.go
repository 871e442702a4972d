package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret-key-1234567890", time.Hour)

	token, err := m.Issue("5c88fa8cf4afda39709c2955")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "5c88fa8cf4afda39709c2955", claims.UserID)
	assert.WithinDuration(t, time.Now().UTC(), claims.IssuedAt.Time, time.Second)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret-key-1234567890", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = time.Now
	claims, err := m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestTokenManager_Invalid(t *testing.T) {
	m := NewTokenManager("test-secret-key-1234567890", time.Hour)
	other := NewTokenManager("another-secret-key-0987654321", time.Hour)

	forged, err := other.Issue("user-1")
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":       "invalid-token",
		"empty":         "",
		"bad signature": forged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(raw)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("pass1234", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "pass1234", hash)

	assert.True(t, VerifyPassword(hash, "pass1234"))
	assert.False(t, VerifyPassword(hash, "pass12345"))
	assert.False(t, VerifyPassword("", "pass1234"))
}

func TestPassword_CostOutOfRange(t *testing.T) {
	hash, err := HashPassword("pass1234", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "pass1234"))
}

func TestResetToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tok, err := NewResetToken(now)
	require.NoError(t, err)

	assert.Len(t, tok.Raw, 64)
	assert.Equal(t, HashToken(tok.Raw), tok.Hash)
	assert.NotEqual(t, tok.Raw, tok.Hash)
	assert.Equal(t, now.Add(10*time.Minute), tok.Expires)

	again, err := NewResetToken(now)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, again.Raw)
}
