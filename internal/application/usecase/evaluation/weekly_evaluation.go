// Package evaluation contains the weekly evaluation batch and the user-facing
// evaluation review use cases.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// streakMilestones are the streak lengths that earn a streak notification.
var streakMilestones = []int{3, 5, 10, 25, 52}

// UserEvaluationResult summarizes one user's evaluation run.
type UserEvaluationResult struct {
	Period       valueobject.Period
	Created      []*entity.Evaluation
	PendingTotal decimal.Decimal
	Counts       job.Result
}

// WeeklyEvaluationUseCase creates the evaluations of the previous week.
type WeeklyEvaluationUseCase struct {
	profileRepo     adapter.ProfileRepository
	ruleRepo        adapter.RuleRepository
	transactionRepo adapter.TransactionRepository
	evaluationRepo  adapter.EvaluationRepository
	orderRepo       adapter.OrderRepository
	notifier        adapter.Notifier
	rewards         adapter.RewardRecorder
	evaluator       *service.Evaluator
	now             func() time.Time
}

// NewWeeklyEvaluationUseCase creates a new WeeklyEvaluationUseCase instance.
func NewWeeklyEvaluationUseCase(
	profileRepo adapter.ProfileRepository,
	ruleRepo adapter.RuleRepository,
	transactionRepo adapter.TransactionRepository,
	evaluationRepo adapter.EvaluationRepository,
	orderRepo adapter.OrderRepository,
	notifier adapter.Notifier,
	rewards adapter.RewardRecorder,
	evaluator *service.Evaluator,
) *WeeklyEvaluationUseCase {
	return &WeeklyEvaluationUseCase{
		profileRepo:     profileRepo,
		ruleRepo:        ruleRepo,
		transactionRepo: transactionRepo,
		evaluationRepo:  evaluationRepo,
		orderRepo:       orderRepo,
		notifier:        notifier,
		rewards:         rewards,
		evaluator:       evaluator,
		now:             time.Now,
	}
}

// WithClock replaces the time source used to pick the evaluated week.
func (uc *WeeklyEvaluationUseCase) WithClock(now func() time.Time) *WeeklyEvaluationUseCase {
	uc.now = now
	return uc
}

// EvaluateAll evaluates every onboarded user. Paused users are counted as
// skipped and a failing user never stops the batch.
func (uc *WeeklyEvaluationUseCase) EvaluateAll(ctx context.Context) (job.Result, error) {
	var total job.Result

	profiles, err := uc.profileRepo.FindOnboarded(ctx)
	if err != nil {
		return total, fmt.Errorf("failed to load profiles: %w", err)
	}

	period := valueobject.PreviousWeek(uc.now())
	slog.Info("Starting weekly evaluation",
		"period_start", period.Start.Format(time.DateOnly),
		"users", len(profiles),
	)

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if profile.InvestingPaused {
			total.Skipped++
			continue
		}

		result, err := uc.evaluateProfile(ctx, profile, period)
		if err != nil {
			total.Failed++
			slog.Error("Weekly evaluation failed for user", "user_id", profile.UserID, "error", err)
			continue
		}
		total.Merge(result.Counts)
	}

	slog.Info("Weekly evaluation finished", total.LogAttrs()...)
	return total, nil
}

// EvaluateUser evaluates one user for the previous week. Users that are paused
// or not onboarded are skipped without error.
func (uc *WeeklyEvaluationUseCase) EvaluateUser(ctx context.Context, userID uuid.UUID) (*UserEvaluationResult, error) {
	period := valueobject.PreviousWeek(uc.now())

	profile, err := uc.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerror.ErrProfileNotFound) {
			return nil, domainerror.NewProfileError(domainerror.ErrCodeProfileNotFound, "profile not found", err)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.CanEvaluate() {
		slog.Info("Skipping evaluation for user", "user_id", userID, "paused", profile.InvestingPaused)
		return &UserEvaluationResult{
			Period:       period,
			PendingTotal: decimal.Zero,
			Counts:       job.Result{Skipped: 1},
		}, nil
	}

	return uc.evaluateProfile(ctx, profile, period)
}

func (uc *WeeklyEvaluationUseCase) evaluateProfile(ctx context.Context, profile *entity.Profile, period valueobject.Period) (*UserEvaluationResult, error) {
	logger := slog.With("user_id", profile.UserID)
	result := &UserEvaluationResult{Period: period, PendingTotal: decimal.Zero}

	rules, err := uc.ruleRepo.FindActiveByUser(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) == 0 {
		return result, nil
	}

	txs, err := uc.transactionRepo.FindByDateRange(ctx, profile.UserID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	monthToDate, err := committedThisMonth(ctx, uc.orderRepo, uc.evaluationRepo, profile.UserID, uc.now(), uuid.Nil)
	if err != nil {
		return nil, err
	}

	milestone := 0
	for _, rule := range rules {
		// Amounts created earlier in this run count against the monthly cap.
		limits := service.LimitsFromProfile(profile, monthToDate.Add(result.PendingTotal))

		ev, created, err := uc.evaluateRule(ctx, profile.UserID, rule, txs, limits, period)
		if err != nil {
			result.Counts.Failed++
			logger.Error("Failed to evaluate rule", "rule_id", rule.ID, "error", err)
			continue
		}
		if !created {
			result.Counts.Skipped++
			logger.Debug("Evaluation already exists", "rule_id", rule.ID)
			continue
		}

		result.Counts.Succeeded++
		result.Created = append(result.Created, ev)
		if ev.Status == entity.EvaluationStatusPending {
			result.PendingTotal = result.PendingTotal.Add(ev.FinalInvest)
		}

		if ev.ActualSpend.LessThan(ev.TargetSpend) {
			if err := uc.rewards.OnTargetBeaten(ctx, profile.UserID, ev.SavedAmount(), ev.StreakCount); err != nil {
				logger.Warn("Failed to record beaten target", "evaluation_id", ev.ID, "error", err)
			}
			if rule.StreakEnabled && slices.Contains(streakMilestones, ev.StreakCount) && ev.StreakCount > milestone {
				milestone = ev.StreakCount
			}
		}
	}

	if milestone > 0 {
		uc.notifier.Notify(ctx, profile.UserID, entity.NotificationStreakBonus, map[string]interface{}{
			"streak":        milestone,
			"bonus_percent": milestone * 10,
		})
	}

	if result.PendingTotal.IsPositive() {
		uc.notifier.Notify(ctx, profile.UserID, entity.NotificationWeeklyReview, map[string]interface{}{
			"total_invest":  result.PendingTotal.StringFixed(2),
			"pending_count": countPending(result.Created),
			"period_start":  period.Start.Format(time.DateOnly),
		})
	}

	logger.Info("Evaluated user", result.Counts.LogAttrs()...)
	return result, nil
}

func (uc *WeeklyEvaluationUseCase) evaluateRule(
	ctx context.Context,
	userID uuid.UUID,
	rule *entity.Rule,
	txs []*entity.Transaction,
	limits service.Limits,
	period valueobject.Period,
) (*entity.Evaluation, bool, error) {
	priorStreak, err := uc.priorStreak(ctx, rule.ID, period)
	if err != nil {
		return nil, false, err
	}

	outcome := uc.evaluator.Evaluate(rule, txs, limits, priorStreak)
	ev := entity.NewEvaluation(userID, rule.ID, period, priorStreak, outcome)

	created, err := uc.evaluationRepo.CreateIfAbsent(ctx, ev)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store evaluation: %w", err)
	}
	return ev, created, nil
}

// priorStreak carries the streak of the week right before period. A missing
// week resets it.
func (uc *WeeklyEvaluationUseCase) priorStreak(ctx context.Context, ruleID uuid.UUID, period valueobject.Period) (int, error) {
	latest, err := uc.evaluationRepo.FindLatestByRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, domainerror.ErrEvaluationNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load latest evaluation: %w", err)
	}
	if !latest.Precedes(period) {
		return 0, nil
	}
	return latest.StreakCount, nil
}

func countPending(evs []*entity.Evaluation) int {
	n := 0
	for _, ev := range evs {
		if ev.Status == entity.EvaluationStatusPending {
			n++
		}
	}
	return n
}
