// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/owninstead/backend/internal/integration/persistence/model"
)

// TokenRepository stores issued refresh tokens so they can be spent once.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error

	// ConsumeRefreshToken marks token spent if it is live. It reports false
	// when the token is unknown, expired or already spent.
	ConsumeRefreshToken(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes refresh tokens that expired before now.
	DeleteExpired(ctx context.Context) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{
		db: db,
	}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&model.RefreshTokenModel{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}).Error
}

// ConsumeRefreshToken flips invalidated in a single conditional UPDATE, so
// of two concurrent calls only one sees a changed row.
func (r *tokenRepository) ConsumeRefreshToken(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where("token = ? AND invalidated = ? AND expires_at > ?", token, false, time.Now().UTC()).
		Update("invalidated", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpired removes refresh tokens that expired before now.
func (r *tokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&model.RefreshTokenModel{})
	return result.RowsAffected, result.Error
}
