package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RewardStats are a user's running reward totals.
type RewardStats struct {
	TotalSaved    decimal.Decimal
	TotalInvested decimal.Decimal
	TargetsBeaten int64
	Investments   int64
	BestStreak    int64
	FirstInvested bool
}

// RewardRecorder receives reward events. It never gates evaluation or trading,
// so callers log its errors and move on.
type RewardRecorder interface {
	// OnTargetBeaten records a beaten target.
	OnTargetBeaten(ctx context.Context, userID uuid.UUID, saved decimal.Decimal, streak int) error

	// OnInvestmentFilled records a submitted investment.
	OnInvestmentFilled(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, isFirst bool) error

	// Stats returns the running totals of a user.
	Stats(ctx context.Context, userID uuid.UUID) (*RewardStats, error)
}
