// Package reward exposes the user's reward totals.
package reward

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
)

// GetStatsUseCase reads the running reward totals of a user.
type GetStatsUseCase struct {
	rewards adapter.RewardRecorder
}

// NewGetStatsUseCase creates a new GetStatsUseCase instance.
func NewGetStatsUseCase(rewards adapter.RewardRecorder) *GetStatsUseCase {
	return &GetStatsUseCase{rewards: rewards}
}

// Execute returns the totals. A user without events gets zero totals.
func (uc *GetStatsUseCase) Execute(ctx context.Context, userID uuid.UUID) (*adapter.RewardStats, error) {
	stats, err := uc.rewards.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reward stats: %w", err)
	}
	return stats, nil
}
