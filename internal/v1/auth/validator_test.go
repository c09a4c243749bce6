package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsignedJWT(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestMockValidator_ExtractsSubjectFromJWT(t *testing.T) {
	m := &MockValidator{}

	claims, err := m.ValidateToken(unsignedJWT(t, `{"sub":"auth0|12345","name":"Rose"}`))
	require.NoError(t, err)
	assert.Equal(t, "auth0|12345", claims.Subject)
	assert.Equal(t, "Rose", claims.Name)
}

func TestMockValidator_BareTokenIsGuestID(t *testing.T) {
	m := &MockValidator{}

	claims, err := m.ValidateToken("guest-tablet-kitchen")
	require.NoError(t, err)
	assert.Equal(t, "guest-tablet-kitchen", claims.Subject)

	// Identity is stable across reconnects with the same token.
	again, err := m.ValidateToken("guest-tablet-kitchen")
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, again.Subject)
}

func TestMockValidator_EmptyTokenMintsGuest(t *testing.T) {
	m := &MockValidator{}

	claims, err := m.ValidateToken("")
	require.NoError(t, err)
	assert.Contains(t, claims.Subject, "guest-")

	other, err := m.ValidateToken("")
	require.NoError(t, err)
	assert.NotEqual(t, claims.Subject, other.Subject, "anonymous guests get distinct identities")
}
