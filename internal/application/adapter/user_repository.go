// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/domain/entity"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create creates a new user in the database.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by their ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	// Create creates a profile for a user.
	Create(ctx context.Context, profile *entity.Profile) error

	// FindByUserID retrieves the profile of a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// Update saves changes to a profile.
	Update(ctx context.Context, profile *entity.Profile) error

	// FindOnboarded retrieves every profile that completed onboarding, paused or not.
	FindOnboarded(ctx context.Context) ([]*entity.Profile, error)

	// ClearPushToken removes token from the user's profile if it is still the current one.
	ClearPushToken(ctx context.Context, userID uuid.UUID, token string) error

	// MarkFirstTrade sets first_trade_at when it is unset.
	// Returns true when this call set it.
	MarkFirstTrade(ctx context.Context, userID uuid.UUID) (bool, error)
}
