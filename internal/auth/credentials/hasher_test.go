package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"identity-service/internal/auth/credentials"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, version, err := credentials.HashPassword("correct horse battery")
	require.NoError(t, err)
	require.Equal(t, credentials.HashVersionBcrypt, version)
	require.NotEqual(t, "correct horse battery", hash)

	require.NoError(t, credentials.VerifyPassword(hash, "correct horse battery"))
	require.Error(t, credentials.VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordRejectsShortPassword(t *testing.T) {
	_, _, err := credentials.HashPassword("short")
	require.Error(t, err)
}
