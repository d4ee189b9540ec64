// Package profile contains investing-profile use cases.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// GetProfileUseCase returns the caller's profile.
type GetProfileUseCase struct {
	profileRepo adapter.ProfileRepository
}

// NewGetProfileUseCase creates a new GetProfileUseCase instance.
func NewGetProfileUseCase(profileRepo adapter.ProfileRepository) *GetProfileUseCase {
	return &GetProfileUseCase{profileRepo: profileRepo}
}

// Execute fetches the profile of userID.
func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	return findProfile(ctx, uc.profileRepo, userID)
}

func findProfile(ctx context.Context, repo adapter.ProfileRepository, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerror.ErrProfileNotFound) {
			return nil, domainerror.NewProfileError(
				domainerror.ErrCodeProfileNotFound,
				"profile not found",
				domainerror.ErrProfileNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return profile, nil
}
