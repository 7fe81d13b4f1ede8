package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue("u1", "cashier")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).Issue("u1", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := NewTokenIssuer("secret", -time.Minute).Issue("u1", "admin")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Parse("not-a-token")
	assert.Error(t, err)
}
