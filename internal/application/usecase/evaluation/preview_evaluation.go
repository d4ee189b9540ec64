package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// RulePreview is the uncapped, unsaved outcome of one rule for the current week.
type RulePreview struct {
	Rule   *entity.Rule
	Result entity.EvaluationResult
}

// PreviewOutput represents the current-week preview.
type PreviewOutput struct {
	Period valueobject.Period
	Rules  []RulePreview
}

// PreviewEvaluationUseCase computes how the current week is going so far.
type PreviewEvaluationUseCase struct {
	ruleRepo        adapter.RuleRepository
	transactionRepo adapter.TransactionRepository
	evaluationRepo  adapter.EvaluationRepository
	evaluator       *service.Evaluator
	now             func() time.Time
}

// NewPreviewEvaluationUseCase creates a new PreviewEvaluationUseCase instance.
func NewPreviewEvaluationUseCase(
	ruleRepo adapter.RuleRepository,
	transactionRepo adapter.TransactionRepository,
	evaluationRepo adapter.EvaluationRepository,
	evaluator *service.Evaluator,
) *PreviewEvaluationUseCase {
	return &PreviewEvaluationUseCase{
		ruleRepo:        ruleRepo,
		transactionRepo: transactionRepo,
		evaluationRepo:  evaluationRepo,
		evaluator:       evaluator,
		now:             time.Now,
	}
}

// WithClock replaces the time source used to pick the current week.
func (uc *PreviewEvaluationUseCase) WithClock(now func() time.Time) *PreviewEvaluationUseCase {
	uc.now = now
	return uc
}

// Execute previews every active rule. Nothing is persisted.
func (uc *PreviewEvaluationUseCase) Execute(ctx context.Context, userID uuid.UUID) (*PreviewOutput, error) {
	period := valueobject.CurrentWeek(uc.now())

	rules, err := uc.ruleRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	output := &PreviewOutput{Period: period, Rules: make([]RulePreview, 0, len(rules))}
	if len(rules) == 0 {
		return output, nil
	}

	txs, err := uc.transactionRepo.FindByDateRange(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	for _, rule := range rules {
		priorStreak := 0
		latest, err := uc.evaluationRepo.FindLatestByRule(ctx, rule.ID)
		switch {
		case err == nil:
			if latest.Precedes(period) {
				priorStreak = latest.StreakCount
			}
		case !errors.Is(err, domainerror.ErrEvaluationNotFound):
			return nil, fmt.Errorf("failed to load latest evaluation: %w", err)
		}

		output.Rules = append(output.Rules, RulePreview{
			Rule:   rule,
			Result: uc.evaluator.Preview(rule, txs, priorStreak),
		})
	}

	return output, nil
}
