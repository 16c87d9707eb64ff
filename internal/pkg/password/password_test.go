package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("correct horse battery stapl", hash))
	assert.False(t, Verify("", hash))
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h1, err := Hash("samepassword")
	require.NoError(t, err)
	h2, err := Hash("samepassword")
	require.NoError(t, err)

	// bcrypt embeds a per-record salt
	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("samepassword", h1))
	assert.True(t, Verify("samepassword", h2))
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
}

func TestHashToken(t *testing.T) {
	a := HashToken("some.refresh.token")
	b := HashToken("some.refresh.token")
	c := HashToken("another.token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64) // SHA-256 hex
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("12345678"))
	assert.True(t, ValidatePassword("a much longer passphrase"))
	assert.False(t, ValidatePassword("1234567"))
	assert.False(t, ValidatePassword(""))
}
