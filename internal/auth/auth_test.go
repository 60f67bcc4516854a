package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong-pass", hash))
}

func TestConfigureRejectsEmptySecret(t *testing.T) {
	assert.Error(t, Configure("", "24h"))
}

func TestConfigureRejectsBadDuration(t *testing.T) {
	assert.Error(t, Configure("test-secret", "soon"))
}

func TestJWTRoundTrip(t *testing.T) {
	require.NoError(t, Configure("test-secret", "1h"))

	token, err := GenerateJWT("driver@uex.example.com", "driver", "64f000000000000000000001")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "driver@uex.example.com", claims.Email)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "64f000000000000000000001", claims.UserID)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	require.NoError(t, Configure("test-secret", "-1h"))
	token, err := GenerateJWT("user@uex.example.com", "user", "64f000000000000000000002")
	require.NoError(t, err)

	_, err = ParseJWT(token)
	assert.Error(t, err)
}

func TestParseJWTRejectsTampered(t *testing.T) {
	require.NoError(t, Configure("test-secret", "1h"))
	token, err := GenerateJWT("user@uex.example.com", "user", "64f000000000000000000003")
	require.NoError(t, err)

	_, err = ParseJWT(token + "x")
	assert.Error(t, err)
}
