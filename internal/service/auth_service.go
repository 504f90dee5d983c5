package service

import (
	"context" // Request scoped cancellation
	"fmt"     // Error formatting

	"bingo_ledger/internal/apperrors" // Typed service errors
	"bingo_ledger/internal/domain"    // Domain models
	"bingo_ledger/internal/metrics"   // Prometheus collectors

	"github.com/sirupsen/logrus" // Logging library
)

// LoginResult is what a successful login hands back
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// AuthService verifies credentials and resolves bearer tokens to users
type AuthService struct {
	store  Store
	hasher Hasher
	tokens TokenService
}

// NewAuthService creates the authentication service
func NewAuthService(store Store, hasher Hasher, tokens TokenService) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

// VerifyLogin returns the user owning phone when plaintext matches its stored hash.
// Unknown phones and wrong passwords fail with the same error.
func (s *AuthService) VerifyLogin(ctx context.Context, phone, plaintext string) (*domain.User, error) {
	user, err := s.store.Users().GetByPhone(ctx, phone) // Find user by phone
	if err != nil {
		return nil, fmt.Errorf("failed to look up login: %w", err)
	}
	// Unknown phone and wrong password look the same to the caller
	if user == nil {
		logrus.WithField("phone", phone).Warn("Login failed: user not found")
		metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		return nil, apperrors.InvalidCredentials()
	}
	if !s.hasher.Verify(plaintext, user.Password) {
		logrus.WithField("user_id", user.ID).Warn("Login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, apperrors.InvalidCredentials()
	}
	return user, nil
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, phone, plaintext string) (*LoginResult, error) {
	user, err := s.VerifyLogin(ctx, phone, plaintext)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(user.ID, user.Role) // Generate JWT token
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
	return &LoginResult{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// Resolve turns a bearer token into the current user row. The claims only name the
// user; role and balances always come from the store.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token) // Verify signature and expiry
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	user, err := s.store.Users().GetByID(ctx, claims.UserID) // Fetch user from DB
	if err != nil {
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if user == nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("user %d no longer exists", claims.UserID))
	}
	return user, nil
}
