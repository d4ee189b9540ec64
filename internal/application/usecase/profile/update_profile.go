package profile

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

var (
	minLimit      = decimal.NewFromInt(1)
	maxTradeLimit = decimal.NewFromInt(10000)
	maxMonthLimit = decimal.NewFromInt(50000)
)

// UpdateProfileInput carries the fields to change. Nil fields are left untouched.
type UpdateProfileInput struct {
	UserID          uuid.UUID
	SelectedAsset   *string
	MaxPerTrade     *decimal.Decimal
	MaxPerMonth     *decimal.Decimal
	InvestingPaused *bool
	PushToken       *string
}

// UpdateProfileUseCase applies partial profile updates.
type UpdateProfileUseCase struct {
	profileRepo      adapter.ProfileRepository
	supportedSymbols []string
}

// NewUpdateProfileUseCase creates a new UpdateProfileUseCase instance.
func NewUpdateProfileUseCase(profileRepo adapter.ProfileRepository, supportedSymbols []string) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{
		profileRepo:      profileRepo,
		supportedSymbols: supportedSymbols,
	}
}

// Execute validates and saves the update.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*entity.Profile, error) {
	profile, err := findProfile(ctx, uc.profileRepo, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.SelectedAsset != nil {
		symbol := strings.ToUpper(strings.TrimSpace(*input.SelectedAsset))
		if !slices.Contains(uc.supportedSymbols, symbol) {
			return nil, domainerror.NewProfileError(
				domainerror.ErrCodeUnsupportedAsset,
				fmt.Sprintf("asset must be one of %s", strings.Join(uc.supportedSymbols, ", ")),
				domainerror.ErrUnsupportedAsset,
			)
		}
		profile.SelectedAsset = symbol
	}

	if input.MaxPerTrade != nil {
		if input.MaxPerTrade.LessThan(minLimit) || input.MaxPerTrade.GreaterThan(maxTradeLimit) {
			return nil, domainerror.NewProfileError(
				domainerror.ErrCodeInvalidMaxPerTrade,
				domainerror.ErrInvalidMaxPerTrade.Error(),
				domainerror.ErrInvalidMaxPerTrade,
			)
		}
		profile.MaxPerTrade = input.MaxPerTrade.Round(2)
	}

	if input.MaxPerMonth != nil {
		if input.MaxPerMonth.LessThan(minLimit) || input.MaxPerMonth.GreaterThan(maxMonthLimit) {
			return nil, domainerror.NewProfileError(
				domainerror.ErrCodeInvalidMaxPerMonth,
				domainerror.ErrInvalidMaxPerMonth.Error(),
				domainerror.ErrInvalidMaxPerMonth,
			)
		}
		profile.MaxPerMonth = input.MaxPerMonth.Round(2)
	}

	if input.InvestingPaused != nil {
		profile.InvestingPaused = *input.InvestingPaused
	}
	if input.PushToken != nil {
		profile.PushToken = strings.TrimSpace(*input.PushToken)
	}

	profile.UpdatedAt = time.Now().UTC()
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
