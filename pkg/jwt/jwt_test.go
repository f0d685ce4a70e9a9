package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tok, exp, err := GenerateToken("secret", 42, "organizer", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "organizer", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _, err := GenerateToken("secret", 1, "volunteer", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("other", tok)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	tok, _, err := GenerateToken("secret", 1, "volunteer", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("secret", s)
	assert.Error(t, err)
}
