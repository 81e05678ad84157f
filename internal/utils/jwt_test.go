package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestToken_RoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
