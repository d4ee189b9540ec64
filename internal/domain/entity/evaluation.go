package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/valueobject"
)

// EvaluationStatus is a state of the evaluation state machine.
//
//	pending -> confirmed -> executed
//	pending -> skipped
type EvaluationStatus string

const (
	EvaluationStatusPending   EvaluationStatus = "pending"
	EvaluationStatusConfirmed EvaluationStatus = "confirmed"
	EvaluationStatusSkipped   EvaluationStatus = "skipped"
	EvaluationStatusExecuted  EvaluationStatus = "executed"
)

// IsValid reports whether s is a known status.
func (s EvaluationStatus) IsValid() bool {
	switch s {
	case EvaluationStatusPending, EvaluationStatusConfirmed, EvaluationStatusSkipped, EvaluationStatusExecuted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s EvaluationStatus) IsTerminal() bool {
	return s == EvaluationStatusSkipped || s == EvaluationStatusExecuted
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s EvaluationStatus) CanTransitionTo(next EvaluationStatus) bool {
	switch s {
	case EvaluationStatusPending:
		return next == EvaluationStatusConfirmed || next == EvaluationStatusSkipped
	case EvaluationStatusConfirmed:
		return next == EvaluationStatusExecuted
	}
	return false
}

// EvaluationResult is the output of evaluating one rule over one period.
type EvaluationResult struct {
	ActualSpend           decimal.Decimal
	TargetSpend           decimal.Decimal
	CalculatedInvest      decimal.Decimal
	FinalInvest           decimal.Decimal
	StreakCount           int
	MatchedTransactionIDs []uuid.UUID
}

// TargetBeaten reports whether actual spend came in under target.
func (r EvaluationResult) TargetBeaten() bool {
	return r.ActualSpend.LessThan(r.TargetSpend)
}

// Evaluation is the persisted outcome of one rule for one period.
// At most one exists per (RuleID, PeriodStart).
type Evaluation struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	RuleID                uuid.UUID
	PeriodStart           time.Time
	PeriodEnd             time.Time
	ActualSpend           decimal.Decimal
	TargetSpend           decimal.Decimal
	CalculatedInvest      decimal.Decimal
	FinalInvest           decimal.Decimal
	StreakCount           int
	PriorStreak           int
	MatchedTransactionIDs []uuid.UUID
	Status                EvaluationStatus
	ConfirmedAt           *time.Time
	SkippedAt             *time.Time
	ExecutedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewEvaluation builds an evaluation from a result. Zero final invest is
// created directly as skipped.
func NewEvaluation(userID, ruleID uuid.UUID, period valueobject.Period, priorStreak int, result EvaluationResult) *Evaluation {
	now := time.Now().UTC()
	status := EvaluationStatusPending
	var skippedAt *time.Time
	if !result.FinalInvest.IsPositive() {
		status = EvaluationStatusSkipped
		skippedAt = &now
	}

	start, end := period.DateRange()
	return &Evaluation{
		ID:                    uuid.New(),
		UserID:                userID,
		RuleID:                ruleID,
		PeriodStart:           start,
		PeriodEnd:             end,
		ActualSpend:           result.ActualSpend,
		TargetSpend:           result.TargetSpend,
		CalculatedInvest:      result.CalculatedInvest,
		FinalInvest:           result.FinalInvest,
		StreakCount:           result.StreakCount,
		PriorStreak:           priorStreak,
		MatchedTransactionIDs: result.MatchedTransactionIDs,
		Status:                status,
		SkippedAt:             skippedAt,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// Period returns the evaluated window.
func (e *Evaluation) Period() valueobject.Period {
	return valueobject.Period{
		Start: e.PeriodStart,
		End:   e.PeriodEnd.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

// Precedes reports whether the evaluation covers the week right before p.
func (e *Evaluation) Precedes(p valueobject.Period) bool {
	prevStart, _ := p.Previous().DateRange()
	return valueobject.StartOfDay(e.PeriodStart).Equal(prevStart)
}

// SavedAmount returns how much was saved against the target, never negative.
func (e *Evaluation) SavedAmount() decimal.Decimal {
	saved := e.TargetSpend.Sub(e.ActualSpend)
	if saved.IsNegative() {
		return decimal.Zero
	}
	return saved
}
