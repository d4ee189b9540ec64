package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// Session is the token set a client holds between requests. ExpiresIn is the
// access token lifetime in seconds.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func newSession(pair *adapter.TokenPair) Session {
	return Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginUserInput carries the credentials for Login.
type LoginUserInput struct {
	Email    string
	Password string
}

// LoginUserOutput is a fresh session for an existing account.
type LoginUserOutput struct {
	Session
	User *entity.User
}

// SessionUseCase opens, rotates and closes sessions for registered users.
type SessionUseCase struct {
	users     adapter.UserRepository
	passwords adapter.PasswordService
	tokens    adapter.TokenService
}

func NewSessionUseCase(users adapter.UserRepository, passwords adapter.PasswordService, tokens adapter.TokenService) *SessionUseCase {
	return &SessionUseCase{users: users, passwords: passwords, tokens: tokens}
}

// Login checks credentials and issues a session. Unknown emails and wrong
// passwords fail the same way.
func (uc *SessionUseCase) Login(ctx context.Context, input LoginUserInput) (*LoginUserOutput, error) {
	user, err := uc.users.FindByEmail(ctx, normalizeEmail(input.Email))
	switch {
	case errors.Is(err, domainerror.ErrUserNotFound):
		return nil, badCredentials()
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if uc.passwords.VerifyPassword(user.PasswordHash, input.Password) != nil {
		return nil, badCredentials()
	}

	pair, err := uc.tokens.GenerateTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &LoginUserOutput{Session: newSession(pair), User: user}, nil
}

// Refresh spends refreshToken and issues a replacement session. Two requests
// racing on the same token get at most one session between them.
func (uc *SessionUseCase) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := uc.tokens.RedeemRefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, domainerror.ErrInvalidToken):
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidToken,
			"invalid, expired or already used refresh token",
			err,
		)
	case err != nil:
		return nil, fmt.Errorf("failed to redeem refresh token: %w", err)
	}

	pair, err := uc.tokens.GenerateTokenPair(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	session := newSession(pair)
	return &session, nil
}

// Logout revokes refreshToken. The caller is logged out either way, so a
// failed revoke is only logged.
func (uc *SessionUseCase) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := uc.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		slog.Warn("Failed to revoke refresh token on logout", "error", err)
	}
}

func badCredentials() error {
	return domainerror.NewAuthError(
		domainerror.ErrCodeInvalidCredentials,
		"invalid email or password",
		domainerror.ErrInvalidCredentials,
	)
}
