package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"pos-service/internal/auth"
	"pos-service/internal/models"
	"pos-service/internal/state"
	"pos-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier checks a presented login secret. The single shared
// passphrase is a stand-in for a real credential system; keeping it behind
// this interface means swapping it in later doesn't touch the login pipeline.
type SecretVerifier interface {
	Verify(secret string) bool
}

// SharedSecretVerifier compares against one configured passphrase in
// constant time
type SharedSecretVerifier struct {
	secret []byte
}

// NewSharedSecretVerifier creates a verifier for the given passphrase
func NewSharedSecretVerifier(secret string) *SharedSecretVerifier {
	return &SharedSecretVerifier{secret: []byte(secret)}
}

// Verify reports whether the presented secret matches
func (v *SharedSecretVerifier) Verify(secret string) bool {
	return subtle.ConstantTimeCompare(v.secret, []byte(secret)) == 1
}

// BcryptVerifier compares against a bcrypt hash of the passphrase, so the
// plaintext never has to live in config
type BcryptVerifier struct {
	hash []byte
}

// NewBcryptVerifier creates a verifier for the given bcrypt hash
func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

// Verify reports whether the presented secret matches the hash
func (v *BcryptVerifier) Verify(secret string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(secret)) == nil
}

// AuthService resolves login credentials to a user and manages the session
// principal.
type AuthService struct {
	store    *state.Store
	verifier SecretVerifier
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *state.Store, verifier SecretVerifier, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		store:    store,
		verifier: verifier,
		tokens:   tokens,
		logger:   util.GetLogger(),
	}
}

// Authenticate looks up an active user by case-insensitive email match and
// checks the secret. Every failure returns the same opaque ErrAuthFailed so
// callers can't enumerate which part was wrong. On success the user becomes
// the session principal and a signed token is returned.
func (s *AuthService) Authenticate(ctx context.Context, email, secret string) (*models.User, string, error) {
	_, span := util.StartSpan(ctx, "AuthService.Authenticate")
	defer span.End()

	util.LoginAttemptsTotal.Inc()

	user, found := s.store.FindUserByEmail(email)
	// verify unconditionally to keep the timing profile the same whether or
	// not the email resolved
	secretOK := s.verifier.Verify(secret)

	if !found || !user.IsActive || !secretOK {
		util.LoginFailuresTotal.Inc()
		s.logger.Info("Login rejected", zap.String("email", email))
		return nil, "", models.ErrAuthFailed
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.store.SetCurrentUser(user)
	s.logger.Info("Login accepted",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &user, token, nil
}

// Logout clears the session principal
func (s *AuthService) Logout() {
	s.store.ClearCurrentUser()
}
