package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile(t *testing.T) {
	symbols := []string{"VTI", "VOO", "SPY"}

	tests := []struct {
		name    string
		input   func(uuid.UUID) UpdateProfileInput
		wantErr error
		check   func(*testing.T, *entity.Profile)
	}{
		{
			name: "asset is normalized",
			input: func(id uuid.UUID) UpdateProfileInput {
				return UpdateProfileInput{UserID: id, SelectedAsset: ptr(" voo ")}
			},
			check: func(t *testing.T, p *entity.Profile) {
				if p.SelectedAsset != "VOO" {
					t.Errorf("asset = %q", p.SelectedAsset)
				}
			},
		},
		{
			name: "unsupported asset",
			input: func(id uuid.UUID) UpdateProfileInput {
				return UpdateProfileInput{UserID: id, SelectedAsset: ptr("TSLA")}
			},
			wantErr: domainerror.ErrUnsupportedAsset,
		},
		{
			name: "per trade limit too high",
			input: func(id uuid.UUID) UpdateProfileInput {
				return UpdateProfileInput{UserID: id, MaxPerTrade: ptr(decimal.NewFromInt(10001))}
			},
			wantErr: domainerror.ErrInvalidMaxPerTrade,
		},
		{
			name: "per month limit too low",
			input: func(id uuid.UUID) UpdateProfileInput {
				return UpdateProfileInput{UserID: id, MaxPerMonth: ptr(decimal.RequireFromString("0.50"))}
			},
			wantErr: domainerror.ErrInvalidMaxPerMonth,
		},
		{
			name: "limits pause and push token",
			input: func(id uuid.UUID) UpdateProfileInput {
				return UpdateProfileInput{
					UserID:          id,
					MaxPerTrade:     ptr(decimal.NewFromInt(250)),
					MaxPerMonth:     ptr(decimal.NewFromInt(50000)),
					InvestingPaused: ptr(true),
					PushToken:       ptr("ExponentPushToken[abc]"),
				}
			},
			check: func(t *testing.T, p *entity.Profile) {
				if !p.MaxPerTrade.Equal(decimal.NewFromInt(250)) || !p.MaxPerMonth.Equal(decimal.NewFromInt(50000)) {
					t.Errorf("limits = %s / %s", p.MaxPerTrade, p.MaxPerMonth)
				}
				if !p.InvestingPaused || p.PushToken != "ExponentPushToken[abc]" {
					t.Errorf("unexpected profile %+v", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			repo := usecasetest.NewProfileRepository(entity.NewProfile(userID, "VTI", decimal.NewFromInt(100), decimal.NewFromInt(500)))
			uc := NewUpdateProfileUseCase(repo, symbols)

			got, err := uc.Execute(context.Background(), tt.input(userID))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				stored, _ := repo.FindByUserID(context.Background(), userID)
				if stored.SelectedAsset != "VTI" || !stored.MaxPerTrade.Equal(decimal.NewFromInt(100)) {
					t.Errorf("rejected update changed the profile: %+v", stored)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestCompleteOnboarding(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := usecasetest.NewProfileRepository(entity.NewProfile(userID, "VTI", decimal.NewFromInt(100), decimal.NewFromInt(500)))
	uc := NewCompleteOnboardingUseCase(repo)

	for i := 0; i < 2; i++ {
		p, err := uc.Execute(ctx, userID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.OnboardingCompleted {
			t.Fatal("expected onboarding to be completed")
		}
	}

	onboarded, _ := repo.FindOnboarded(ctx)
	if len(onboarded) != 1 {
		t.Errorf("onboarded = %d, want 1", len(onboarded))
	}

	if _, err := NewGetProfileUseCase(repo).Execute(ctx, uuid.New()); !errors.Is(err, domainerror.ErrProfileNotFound) {
		t.Errorf("missing profile err = %v", err)
	}
}
