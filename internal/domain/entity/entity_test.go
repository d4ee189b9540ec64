package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/valueobject"
)

func TestEvaluationStatusTransitions(t *testing.T) {
	tests := []struct {
		from EvaluationStatus
		to   EvaluationStatus
		want bool
	}{
		{EvaluationStatusPending, EvaluationStatusConfirmed, true},
		{EvaluationStatusPending, EvaluationStatusSkipped, true},
		{EvaluationStatusPending, EvaluationStatusExecuted, false},
		{EvaluationStatusConfirmed, EvaluationStatusExecuted, true},
		{EvaluationStatusConfirmed, EvaluationStatusPending, false},
		{EvaluationStatusConfirmed, EvaluationStatusSkipped, false},
		{EvaluationStatusSkipped, EvaluationStatusConfirmed, false},
		{EvaluationStatusSkipped, EvaluationStatusPending, false},
		{EvaluationStatusExecuted, EvaluationStatusConfirmed, false},
		{EvaluationStatusExecuted, EvaluationStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo = %v, want %v", got, tt.want)
			}
		})
	}

	for _, s := range []EvaluationStatus{EvaluationStatusSkipped, EvaluationStatusExecuted} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if EvaluationStatusConfirmed.IsTerminal() {
		t.Error("confirmed should not be terminal")
	}
}

func TestNewEvaluationStatus(t *testing.T) {
	period := valueobject.PreviousWeek(time.Date(2024, 6, 16, 6, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		final decimal.Decimal
		want  EvaluationStatus
	}{
		{"positive invest is pending", decimal.RequireFromString("18.00"), EvaluationStatusPending},
		{"zero invest is skipped", decimal.Zero, EvaluationStatusSkipped},
		{"negative invest is skipped", decimal.RequireFromString("-1"), EvaluationStatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluation(uuid.New(), uuid.New(), period, 0, EvaluationResult{FinalInvest: tt.final})
			if ev.Status != tt.want {
				t.Errorf("status = %s, want %s", ev.Status, tt.want)
			}
			if tt.want == EvaluationStatusSkipped && ev.SkippedAt == nil {
				t.Error("expected SkippedAt to be set")
			}
			if want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC); !ev.PeriodStart.Equal(want) {
				t.Errorf("period start = %v, want %v", ev.PeriodStart, want)
			}
			if want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC); !ev.PeriodEnd.Equal(want) {
				t.Errorf("period end = %v, want %v", ev.PeriodEnd, want)
			}
		})
	}
}

func TestEvaluationPrecedes(t *testing.T) {
	thisWeek := valueobject.PreviousWeek(time.Date(2024, 6, 16, 6, 0, 0, 0, time.UTC))
	lastWeek := thisWeek.Previous()
	twoWeeksAgo := lastWeek.Previous()

	prev := NewEvaluation(uuid.New(), uuid.New(), lastWeek, 0, EvaluationResult{})
	if !prev.Precedes(thisWeek) {
		t.Error("expected last week's evaluation to precede this week")
	}

	older := NewEvaluation(uuid.New(), uuid.New(), twoWeeksAgo, 0, EvaluationResult{})
	if older.Precedes(thisWeek) {
		t.Error("expected a gap week to break the chain")
	}
}

func TestEvaluationSavedAmount(t *testing.T) {
	ev := &Evaluation{TargetSpend: decimal.NewFromInt(50), ActualSpend: decimal.NewFromInt(32)}
	if got := ev.SavedAmount(); !got.Equal(decimal.NewFromInt(18)) {
		t.Errorf("saved = %s, want 18", got)
	}

	ev.ActualSpend = decimal.NewFromInt(70)
	if got := ev.SavedAmount(); !got.IsZero() {
		t.Errorf("saved = %s, want 0", got)
	}
}

func TestOrderLifecycle(t *testing.T) {
	order := NewOrder(uuid.New(), uuid.New(), "VTI", decimal.NewFromInt(18))
	if order.Status != OrderStatusPending || !order.Blocks() {
		t.Fatalf("new order should be pending and blocking, got %s", order.Status)
	}

	order.MarkSubmitted("brk-1", decimal.RequireFromString("0.0713"))
	if order.Status != OrderStatusSubmitted || order.SubmittedAt == nil || order.BrokerageOrderID != "brk-1" {
		t.Errorf("unexpected submitted order %+v", order)
	}

	order.MarkFilled(decimal.NullDecimal{}, decimal.NewNullDecimal(decimal.RequireFromString("252.40")))
	if order.Status != OrderStatusFilled || order.FilledAt == nil {
		t.Errorf("unexpected filled order %+v", order)
	}
	if !order.Units.Valid || order.Units.Decimal.String() != "0.0713" {
		t.Errorf("fill without units should keep submitted units, got %v", order.Units)
	}

	failed := NewOrder(uuid.New(), uuid.New(), "VTI", decimal.NewFromInt(1))
	failed.MarkFailed(errors.New("too small"))
	if failed.Blocks() || failed.ErrorMessage != "too small" {
		t.Errorf("failed order should not block retries, got %+v", failed)
	}
}

func TestNotificationJobRetries(t *testing.T) {
	job := NewNotificationJob(uuid.New(), NotificationOrderFailed, ChannelPush, nil)
	if job.Params == nil {
		t.Fatal("params should default to an empty map")
	}

	job.MarkFailed(errors.New("temporary"), false)
	if job.Status != NotificationStatusPending || job.Attempts != 1 {
		t.Errorf("expected retry after first failure, got %s/%d", job.Status, job.Attempts)
	}

	job.MarkFailed(errors.New("temporary"), false)
	job.MarkFailed(errors.New("temporary"), false)
	if job.Status != NotificationStatusFailed || job.CanRetry() {
		t.Errorf("expected failure after max attempts, got %s/%d", job.Status, job.Attempts)
	}

	permanent := NewNotificationJob(uuid.New(), NotificationWeeklyReview, ChannelEmail, nil)
	permanent.MarkFailed(errors.New("invalid"), true)
	if permanent.Status != NotificationStatusFailed || permanent.ProcessedAt == nil {
		t.Errorf("permanent failure should be terminal, got %s", permanent.Status)
	}
}

func TestProfileSymbol(t *testing.T) {
	var nilProfile *Profile
	if got := nilProfile.Symbol("VTI"); got != "VTI" {
		t.Errorf("nil profile symbol = %s", got)
	}

	p := NewProfile(uuid.New(), "", decimal.NewFromInt(100), decimal.NewFromInt(500))
	if got := p.Symbol("VTI"); got != "VTI" {
		t.Errorf("empty asset symbol = %s", got)
	}
	p.SelectedAsset = "VOO"
	if got := p.Symbol("VTI"); got != "VOO" {
		t.Errorf("selected symbol = %s", got)
	}

	if p.CanEvaluate() {
		t.Error("profile without onboarding should not be evaluated")
	}
	p.OnboardingCompleted = true
	if !p.CanEvaluate() {
		t.Error("onboarded profile should be evaluated")
	}
	p.InvestingPaused = true
	if p.CanEvaluate() {
		t.Error("paused profile should not be evaluated")
	}
}
