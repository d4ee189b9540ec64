package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
)

// CompleteOnboardingUseCase enrolls the user in the weekly batch.
type CompleteOnboardingUseCase struct {
	profileRepo adapter.ProfileRepository
}

// NewCompleteOnboardingUseCase creates a new CompleteOnboardingUseCase instance.
func NewCompleteOnboardingUseCase(profileRepo adapter.ProfileRepository) *CompleteOnboardingUseCase {
	return &CompleteOnboardingUseCase{profileRepo: profileRepo}
}

// Execute is idempotent.
func (uc *CompleteOnboardingUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	profile, err := findProfile(ctx, uc.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	if profile.OnboardingCompleted {
		return profile, nil
	}

	profile.OnboardingCompleted = true
	profile.UpdatedAt = time.Now().UTC()
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return profile, nil
}
