package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, 15)
	require.NoError(t, err)
	assert.Len(t, tok.ID, 64)

	uid, jti, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, tok.ID, jti)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	good, err := NewSessionToken("secret", 42, 15)
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", 42, -1)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42", "jti": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret": good.Token,
		"expired":      expired.Token,
		"alg none":     none,
		"garbage":      "not-a-jwt",
	} {
		secret := "secret"
		if name == "wrong secret" {
			secret = "other"
		}
		_, _, err := ParseSessionToken(secret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestHashTokenID(t *testing.T) {
	h := HashTokenID("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashTokenID("abc"))
	assert.NotEqual(t, h, HashTokenID("abd"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}
