package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testKey = "test-signing-key"

func TestTokenRoundTrip(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Unix()

	token, err := TokenNew(testKey, 42, expiresAt, TokenAccess)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, tokenType, err := TokenCheck(token, testKey)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, TokenAccess, tokenType)
}

func TestTokenCheck_ExpiredToken(t *testing.T) {
	expiresAt := time.Now().Add(-time.Minute).Unix()

	token, err := TokenNew(testKey, 42, expiresAt, TokenAccess)
	assert.NoError(t, err)

	_, _, err = TokenCheck(token, testKey)
	assert.Error(t, err)
}

func TestTokenCheck_WrongKey(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Unix()

	token, err := TokenNew(testKey, 42, expiresAt, TokenAccess)
	assert.NoError(t, err)

	_, _, err = TokenCheck(token, "some-other-key")
	assert.Error(t, err)
}

func TestTokenCheck_Garbage(t *testing.T) {
	_, _, err := TokenCheck("not.a.token", testKey)
	assert.Error(t, err)
}

func TestTokenNew_CarriesTokenType(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Unix()

	token, err := TokenNew(testKey, 7, expiresAt, TokenRefresh)
	assert.NoError(t, err)

	_, tokenType, err := TokenCheck(token, testKey)
	assert.NoError(t, err)
	assert.Equal(t, TokenRefresh, tokenType)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, ComparePasswords(hash, "s3cret-pass"))
	assert.False(t, ComparePasswords(hash, "wrong-pass"))
}
