package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretHash_Deterministic(t *testing.T) {
	first := SecretHash("a@b.com", "client-1", "secret")
	second := SecretHash("a@b.com", "client-1", "secret")

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSecretHash_ValidBase64(t *testing.T) {
	hash := SecretHash("a@b.com", "client-1", "secret")

	raw, err := base64.StdEncoding.DecodeString(hash)
	require.NoError(t, err)
	assert.Len(t, raw, 32) // SHA-256 digest
}

func TestSecretHash_SensitiveToEveryInput(t *testing.T) {
	base := SecretHash("a@b.com", "client-1", "secret")

	assert.NotEqual(t, base, SecretHash("x@b.com", "client-1", "secret"))
	assert.NotEqual(t, base, SecretHash("a@b.com", "client-2", "secret"))
	assert.NotEqual(t, base, SecretHash("a@b.com", "client-1", "other"))
}

func TestSecretHash_EmptySecret(t *testing.T) {
	assert.Empty(t, SecretHash("a@b.com", "client-1", ""))
}
