package service

import (
	"context"
	"testing"
	"time"

	"pos-service/internal/auth"
	"pos-service/internal/models"
	"pos-service/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authFixture() (*AuthService, *state.Store) {
	store := state.NewStore(models.AppState{
		Users: []models.User{
			{ID: "u1", Name: "Admin", Email: "admin@pos.com", Role: models.RoleAdmin, IsActive: true},
			{ID: "u2", Name: "Former", Email: "former@pos.com", Role: models.RoleCashier, IsActive: false},
		},
	})
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(store, NewSharedSecretVerifier("password"), tokens)
	return svc, store
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, store := authFixture()

	user, token, err := svc.Authenticate(context.Background(), "admin@pos.com", "password")
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.NotEmpty(t, token)

	current := store.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.ID)
}

func TestAuthenticateCaseInsensitiveEmail(t *testing.T) {
	svc, _ := authFixture()

	user, _, err := svc.Authenticate(context.Background(), "Admin@POS.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthenticateFailuresAreOpaque(t *testing.T) {
	svc, store := authFixture()

	tests := []struct {
		name   string
		email  string
		secret string
	}{
		{"wrong secret", "admin@pos.com", "nope"},
		{"unknown email", "nobody@pos.com", "password"},
		{"inactive user with correct secret", "former@pos.com", "password"},
		{"empty everything", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := svc.Authenticate(context.Background(), tt.email, tt.secret)
			assert.ErrorIs(t, err, models.ErrAuthFailed)
			assert.Nil(t, user)
			assert.Empty(t, token)
		})
	}

	assert.Nil(t, store.CurrentUser())
}

func TestAuthenticateIssuesParseableToken(t *testing.T) {
	svc, _ := authFixture()

	_, token, err := svc.Authenticate(context.Background(), "admin@pos.com", "password")
	require.NoError(t, err)

	claims, err := auth.NewTokenIssuer("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := authFixture()

	_, _, err := svc.Authenticate(context.Background(), "admin@pos.com", "password")
	require.NoError(t, err)
	require.NotNil(t, store.CurrentUser())

	svc.Logout()
	assert.Nil(t, store.CurrentUser())
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier(string(hash))
	assert.True(t, v.Verify("password"))
	assert.False(t, v.Verify("Password"))
	assert.False(t, v.Verify(""))
}

func TestSharedSecretVerifier(t *testing.T) {
	v := NewSharedSecretVerifier("password")
	assert.True(t, v.Verify("password"))
	assert.False(t, v.Verify("password "))
	assert.False(t, v.Verify(""))
}
