package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenPair is a signed access token plus the refresh token that renews it.
// ExpiresIn is the access token lifetime.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenClaims identify the user a token was issued to.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

// TokenService issues and checks session tokens. Refresh tokens are single
// use: each one is either redeemed once or revoked.
//
// Redeem and validate failures caused by the token itself wrap
// domainerror.ErrInvalidToken. Other errors are infrastructure failures.
type TokenService interface {
	GenerateTokenPair(ctx context.Context, userID uuid.UUID, email string) (*TokenPair, error)

	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)

	// RedeemRefreshToken verifies token and spends it in one step, so a
	// token that two callers present concurrently redeems for only one.
	RedeemRefreshToken(ctx context.Context, token string) (*TokenClaims, error)

	// RevokeRefreshToken spends token without redeeming it. Unknown tokens
	// are not an error.
	RevokeRefreshToken(ctx context.Context, token string) error
}
