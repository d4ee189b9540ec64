package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
)

// ConfirmEvaluationInput represents the input for confirming an evaluation.
type ConfirmEvaluationInput struct {
	UserID                 uuid.UUID
	EvaluationID           uuid.UUID
	ExcludedTransactionIDs []uuid.UUID
}

// ConfirmEvaluationUseCase approves a pending evaluation for trading.
type ConfirmEvaluationUseCase struct {
	evaluationRepo  adapter.EvaluationRepository
	ruleRepo        adapter.RuleRepository
	transactionRepo adapter.TransactionRepository
	profileRepo     adapter.ProfileRepository
	orderRepo       adapter.OrderRepository
	evaluator       *service.Evaluator
	now             func() time.Time
}

// NewConfirmEvaluationUseCase creates a new ConfirmEvaluationUseCase instance.
func NewConfirmEvaluationUseCase(
	evaluationRepo adapter.EvaluationRepository,
	ruleRepo adapter.RuleRepository,
	transactionRepo adapter.TransactionRepository,
	profileRepo adapter.ProfileRepository,
	orderRepo adapter.OrderRepository,
	evaluator *service.Evaluator,
) *ConfirmEvaluationUseCase {
	return &ConfirmEvaluationUseCase{
		evaluationRepo:  evaluationRepo,
		ruleRepo:        ruleRepo,
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		orderRepo:       orderRepo,
		evaluator:       evaluator,
		now:             time.Now,
	}
}

// WithClock replaces the time source used for the month-to-date cap.
func (uc *ConfirmEvaluationUseCase) WithClock(now func() time.Time) *ConfirmEvaluationUseCase {
	uc.now = now
	return uc
}

// Execute confirms the evaluation. When transactions are excluded the amounts
// are recomputed first, and an evaluation whose recomputed invest is zero is
// skipped instead. Exclusions are only written once the status change won.
func (uc *ConfirmEvaluationUseCase) Execute(ctx context.Context, input ConfirmEvaluationInput) (*entity.Evaluation, error) {
	ev, err := findOwnedEvaluation(ctx, uc.evaluationRepo, input.UserID, input.EvaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != entity.EvaluationStatusPending {
		return nil, invalidTransition(ev, entity.EvaluationStatusConfirmed)
	}

	if len(input.ExcludedTransactionIDs) > 0 {
		if err := uc.recompute(ctx, ev, input.ExcludedTransactionIDs); err != nil {
			return nil, err
		}
	}

	now := uc.now().UTC()
	ev.UpdatedAt = now
	if ev.FinalInvest.IsPositive() {
		ev.Status = entity.EvaluationStatusConfirmed
		ev.ConfirmedAt = &now
	} else {
		ev.Status = entity.EvaluationStatusSkipped
		ev.SkippedAt = &now
	}

	ok, err := uc.evaluationRepo.Transition(ctx, ev, entity.EvaluationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm evaluation: %w", err)
	}
	if !ok {
		return nil, statusChanged()
	}

	if len(input.ExcludedTransactionIDs) > 0 {
		excluded, err := uc.transactionRepo.ExcludeMany(ctx, ev.UserID, input.ExcludedTransactionIDs)
		if err != nil {
			// The stored amounts already leave these transactions out.
			slog.Error("Failed to flag excluded transactions", "evaluation_id", ev.ID, "error", err)
		} else {
			slog.Debug("Excluded transactions on confirm", "evaluation_id", ev.ID, "count", excluded)
		}
	}

	slog.Info("Evaluation reviewed",
		"evaluation_id", ev.ID,
		"user_id", ev.UserID,
		"status", ev.Status,
		"final_invest", ev.FinalInvest.StringFixed(2),
	)
	return ev, nil
}

// recompute re-evaluates ev as if excludedIDs were already excluded. Nothing
// is written.
func (uc *ConfirmEvaluationUseCase) recompute(ctx context.Context, ev *entity.Evaluation, excludedIDs []uuid.UUID) error {
	rule, err := uc.ruleRepo.FindByID(ctx, ev.RuleID)
	if err != nil {
		if errors.Is(err, domainerror.ErrRuleNotFound) {
			return domainerror.NewRuleError(domainerror.ErrCodeRuleNotFound, "rule of evaluation no longer exists", err)
		}
		return fmt.Errorf("failed to load rule: %w", err)
	}

	profile, err := uc.profileRepo.FindByUserID(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	period := ev.Period()
	txs, err := uc.transactionRepo.FindByDateRange(ctx, ev.UserID, period.Start, period.End)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	for _, tx := range txs {
		if slices.Contains(excludedIDs, tx.ID) {
			tx.Excluded = true
		}
	}

	monthToDate, err := committedThisMonth(ctx, uc.orderRepo, uc.evaluationRepo, ev.UserID, uc.now(), ev.ID)
	if err != nil {
		return err
	}

	result := uc.evaluator.Evaluate(rule, txs, service.LimitsFromProfile(profile, monthToDate), ev.PriorStreak)
	ev.ActualSpend = result.ActualSpend
	ev.CalculatedInvest = result.CalculatedInvest
	ev.FinalInvest = result.FinalInvest
	ev.StreakCount = result.StreakCount
	ev.MatchedTransactionIDs = result.MatchedTransactionIDs
	return nil
}
