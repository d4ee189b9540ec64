// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/persistence"
)

const tokenIssuer = "own-instead"

// tokenKind stops a refresh token from being accepted as an access token and
// the other way round.
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

type sessionClaims struct {
	Email string    `json:"email"`
	Kind  tokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// jwtTokenService signs HS256 tokens. Refresh tokens are also recorded in the
// token repository, which is what makes them single use.
type jwtTokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issued     persistence.TokenRepository
	now        func() time.Time
}

// NewTokenService creates a new token service instance.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, issued persistence.TokenRepository) adapter.TokenService {
	return &jwtTokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issued:     issued,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *jwtTokenService) GenerateTokenPair(ctx context.Context, userID uuid.UUID, email string) (*adapter.TokenPair, error) {
	now := s.now()
	access, err := s.sign(userID, email, kindAccess, now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.sign(userID, email, kindRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.issued.SaveRefreshToken(ctx, refresh, userID, now.Add(s.refreshTTL)); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &adapter.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.accessTTL,
	}, nil
}

func (s *jwtTokenService) ValidateAccessToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	return s.verify(token, kindAccess)
}

// RedeemRefreshToken checks the signature first so forged tokens never touch
// the database, then spends the stored token.
func (s *jwtTokenService) RedeemRefreshToken(ctx context.Context, token string) (*adapter.TokenClaims, error) {
	claims, err := s.verify(token, kindRefresh)
	if err != nil {
		return nil, err
	}
	spent, err := s.issued.ConsumeRefreshToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if !spent {
		return nil, fmt.Errorf("%w: refresh token already used or revoked", domainerror.ErrInvalidToken)
	}
	return claims, nil
}

func (s *jwtTokenService) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.issued.ConsumeRefreshToken(ctx, token)
	return err
}

func (s *jwtTokenService) sign(userID uuid.UUID, email string, kind tokenKind, now time.Time, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The ID keeps two pairs issued in the same second distinct.
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtTokenService) verify(token string, kind tokenKind) (*adapter.TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerror.ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", domainerror.ErrInvalidToken, kind)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %w", domainerror.ErrInvalidToken, err)
	}
	return &adapter.TokenClaims{
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
