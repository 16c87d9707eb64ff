package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "user@example.com", "MANAGER", testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, "transbus-fleetdesk", claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@x.com", "ADMIN", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "a-different-secret")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@x.com", "ADMIN", testSecret, -1)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessTokenGarbage(t *testing.T) {
	claims, err := ValidateAccessToken("not.a.token", testSecret)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "token-id-123", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "token-id-123", claims.TokenID)
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	// Access and refresh tokens are signed with separate secrets
	token, err := GenerateRefreshToken(7, "token-id", "refresh-secret", 7)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token, "access-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiryHelpers(t *testing.T) {
	accessExp := GetAccessExpiryTime(24)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), accessExp, time.Minute)

	refreshExp := GetExpiryTime(7)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refreshExp, time.Minute)
}
