package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// committedThisMonth is what already counts against the monthly cap: orders
// that did not fail, plus evaluations still waiting to be reviewed or traded.
// except leaves one evaluation out so it is not capped against itself.
func committedThisMonth(
	ctx context.Context,
	orderRepo adapter.OrderRepository,
	evaluationRepo adapter.EvaluationRepository,
	userID uuid.UUID,
	now time.Time,
	except uuid.UUID,
) (decimal.Decimal, error) {
	since := valueobject.MonthStart(now)

	ordered, err := orderRepo.SumCommittedSince(ctx, userID, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum month-to-date orders: %w", err)
	}
	open, err := evaluationRepo.SumOpenSince(ctx, userID, since, except)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum open evaluations: %w", err)
	}
	return ordered.Add(open), nil
}
