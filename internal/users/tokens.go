package users

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues HMAC-signed access tokens and opaque, stored
// refresh tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// IssueAccessToken signs a short-lived JWT for the user.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssuePair signs an access token and stores a fresh refresh token.
func (s *TokenService) IssuePair(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	if err := s.store.Save(ctx, refresh, userID, s.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates a refresh token: the old token is invalidated and a
// new pair issued.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.store.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.IssuePair(ctx, userID)
}

// Revoke invalidates a refresh token on logout.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	return s.store.Delete(ctx, refreshToken)
}
