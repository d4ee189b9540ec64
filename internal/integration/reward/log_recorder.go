package reward

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
)

// LogRecorder logs reward events without storing them. It is used when Redis
// is not configured.
type LogRecorder struct{}

// NewLogRecorder creates a new LogRecorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (LogRecorder) OnTargetBeaten(_ context.Context, userID uuid.UUID, saved decimal.Decimal, streak int) error {
	slog.Info("Target beaten", "user_id", userID, "saved", saved.StringFixed(2), "streak", streak)
	return nil
}

func (LogRecorder) OnInvestmentFilled(_ context.Context, userID uuid.UUID, amount decimal.Decimal, isFirst bool) error {
	slog.Info("Investment submitted", "user_id", userID, "amount", amount.StringFixed(2), "first", isFirst)
	return nil
}

// Stats always returns zero totals.
func (LogRecorder) Stats(context.Context, uuid.UUID) (*adapter.RewardStats, error) {
	return &adapter.RewardStats{TotalSaved: decimal.Zero, TotalInvested: decimal.Zero}, nil
}

var _ adapter.RewardRecorder = LogRecorder{}
