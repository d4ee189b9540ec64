package reward

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
)

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	rewards := &usecasetest.RewardRecorder{}
	_ = rewards.OnTargetBeaten(ctx, userID, decimal.NewFromInt(18), 3)
	_ = rewards.OnInvestmentFilled(ctx, userID, decimal.NewFromInt(18), true)

	stats, err := NewGetStatsUseCase(rewards).Execute(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TargetsBeaten != 1 || stats.BestStreak != 3 || !stats.FirstInvested {
		t.Errorf("stats = %+v", stats)
	}

	rewards.Err = errors.New("redis down")
	if _, err := NewGetStatsUseCase(rewards).Execute(ctx, userID); err == nil {
		t.Error("expected error")
	}
}
