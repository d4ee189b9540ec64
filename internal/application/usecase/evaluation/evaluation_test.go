package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// sundayMorning is the weekly evaluation slot; the evaluated week is June 9-15.
var sundayMorning = time.Date(2024, 6, 16, 6, 0, 0, 0, time.UTC)

func clock() time.Time { return sundayMorning }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	userID      uuid.UUID
	profiles    *usecasetest.ProfileRepository
	rules       *usecasetest.RuleRepository
	txs         *usecasetest.TransactionRepository
	evaluations *usecasetest.EvaluationRepository
	orders      *usecasetest.OrderRepository
	notifier    *usecasetest.Notifier
	rewards     *usecasetest.RewardRecorder
	evaluator   *service.Evaluator
}

func newFixture() *fixture {
	userID := uuid.New()
	profile := entity.NewProfile(userID, "VTI", dec("100"), dec("500"))
	profile.OnboardingCompleted = true
	return &fixture{
		userID:      userID,
		profiles:    usecasetest.NewProfileRepository(profile),
		rules:       usecasetest.NewRuleRepository(),
		txs:         usecasetest.NewTransactionRepository(),
		evaluations: usecasetest.NewEvaluationRepository(),
		orders:      usecasetest.NewOrderRepository(),
		notifier:    &usecasetest.Notifier{},
		rewards:     &usecasetest.RewardRecorder{},
		evaluator:   service.NewEvaluator(service.NewClassifier()),
	}
}

func (f *fixture) weekly() *WeeklyEvaluationUseCase {
	return NewWeeklyEvaluationUseCase(f.profiles, f.rules, f.txs, f.evaluations, f.orders, f.notifier, f.rewards, f.evaluator).
		WithClock(clock)
}

func (f *fixture) addRule(investType entity.InvestType, target string, amount *string, streak bool) *entity.Rule {
	invest := decimal.NullDecimal{}
	if amount != nil {
		invest = decimal.NewNullDecimal(dec(*amount))
	}
	rule := entity.NewRule(f.userID, "Coffee", valueobject.CategoryCoffee, "", dec(target), investType, invest, streak)
	_ = f.rules.Create(context.Background(), rule)
	return rule
}

func (f *fixture) addCoffee(amount string, day int) *entity.Transaction {
	tx := entity.NewSyncedTransaction(f.userID, uuid.New(), uuid.NewString(), dec(amount), "Starbucks", nil,
		time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC))
	_, _ = f.txs.Upsert(context.Background(), []*entity.Transaction{tx})
	return tx
}

func (f *fixture) addOrder(amount string) {
	order := entity.NewOrder(f.userID, uuid.New(), "VTI", dec(amount))
	order.CreatedAt = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	_, _ = f.orders.Create(context.Background(), order)
}

// addOpenEvaluation stores an evaluation of another rule from earlier this month.
func (f *fixture) addOpenEvaluation(status entity.EvaluationStatus, final string) *entity.Evaluation {
	period := valueobject.PreviousWeek(sundayMorning.AddDate(0, 0, -7))
	ev := entity.NewEvaluation(f.userID, uuid.New(), period, 0, entity.EvaluationResult{FinalInvest: dec(final)})
	ev.Status = status
	f.evaluations.Evaluations[ev.ID] = ev
	return ev
}

func TestEvaluateUser_DifferenceRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addRule(entity.InvestTypeDifference, "50", nil, false)
	f.addCoffee("20", 10)
	f.addCoffee("12", 14)
	f.addCoffee("99", 16) // outside the evaluated week

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Counts.Succeeded != 1 || len(result.Created) != 1 {
		t.Fatalf("unexpected counts %+v", result.Counts)
	}

	ev := result.Created[0]
	if ev.Status != entity.EvaluationStatusPending {
		t.Errorf("status = %s, want pending", ev.Status)
	}
	if !ev.ActualSpend.Equal(dec("32")) || !ev.FinalInvest.Equal(dec("18")) || ev.StreakCount != 1 {
		t.Errorf("unexpected evaluation actual=%s final=%s streak=%d", ev.ActualSpend, ev.FinalInvest, ev.StreakCount)
	}
	if len(ev.MatchedTransactionIDs) != 2 {
		t.Errorf("matched = %d, want 2", len(ev.MatchedTransactionIDs))
	}
	if want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC); !ev.PeriodStart.Equal(want) {
		t.Errorf("period start = %v", ev.PeriodStart)
	}

	if got := f.notifier.Count(entity.NotificationWeeklyReview); got != 1 {
		t.Errorf("weekly reviews = %d, want 1", got)
	}
	if review := f.notifier.Sent[0]; review.Params["total_invest"] != "18.00" {
		t.Errorf("review params = %v", review.Params)
	}
	if len(f.rewards.TargetsBeat) != 1 || !f.rewards.TargetsBeat[0].Equal(dec("18")) {
		t.Errorf("rewards = %v", f.rewards.TargetsBeat)
	}

	// A second run for the same week creates nothing.
	again, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Counts.Skipped != 1 || again.Counts.Succeeded != 0 {
		t.Errorf("rerun counts = %+v", again.Counts)
	}
	if n := len(f.evaluations.All()); n != 1 {
		t.Errorf("evaluations = %d, want 1", n)
	}
	if got := f.notifier.Count(entity.NotificationWeeklyReview); got != 1 {
		t.Errorf("rerun sent another review")
	}
}

func TestEvaluateUser_StreakBonusAndMilestone(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	amount := "10"
	rule := f.addRule(entity.InvestTypeFixed, "50", &amount, true)
	f.addCoffee("32", 11)

	lastWeek := valueobject.PreviousWeek(sundayMorning).Previous()
	prev := entity.NewEvaluation(f.userID, rule.ID, lastWeek, 1, entity.EvaluationResult{FinalInvest: dec("11"), StreakCount: 2})
	_, _ = f.evaluations.CreateIfAbsent(ctx, prev)

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := result.Created[0]
	if ev.StreakCount != 3 || ev.PriorStreak != 2 {
		t.Errorf("streak = %d prior = %d", ev.StreakCount, ev.PriorStreak)
	}
	if !ev.CalculatedInvest.Equal(dec("12")) {
		t.Errorf("calculated = %s, want 12", ev.CalculatedInvest)
	}

	if got := f.notifier.Count(entity.NotificationStreakBonus); got != 1 {
		t.Fatalf("streak notifications = %d, want 1", got)
	}
	for _, n := range f.notifier.Sent {
		if n.Kind == entity.NotificationStreakBonus && (n.Params["streak"] != 3 || n.Params["bonus_percent"] != 30) {
			t.Errorf("streak params = %v", n.Params)
		}
	}
}

func TestEvaluateUser_GapResetsStreak(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	rule := f.addRule(entity.InvestTypeDifference, "50", nil, true)
	f.addCoffee("32", 11)

	twoWeeksAgo := valueobject.PreviousWeek(sundayMorning).Previous().Previous()
	old := entity.NewEvaluation(f.userID, rule.ID, twoWeeksAgo, 0, entity.EvaluationResult{StreakCount: 4})
	_, _ = f.evaluations.CreateIfAbsent(ctx, old)

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev := result.Created[0]; ev.StreakCount != 1 || !ev.FinalInvest.Equal(dec("18")) {
		t.Errorf("streak = %d final = %s", ev.StreakCount, ev.FinalInvest)
	}
}

func TestEvaluateUser_MonthlyCapSpansRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addOrder("475")
	f.addRule(entity.InvestTypeDifference, "50", nil, false)
	time.Sleep(time.Millisecond)
	f.addRule(entity.InvestTypeDifference, "60", nil, false)
	f.addCoffee("30", 12)

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 2 {
		t.Fatalf("created = %d, want 2", len(result.Created))
	}

	first, second := result.Created[0], result.Created[1]
	if !first.FinalInvest.Equal(dec("20")) || first.Status != entity.EvaluationStatusPending {
		t.Errorf("first final = %s status = %s", first.FinalInvest, first.Status)
	}
	if !second.FinalInvest.Equal(dec("5")) || !second.CalculatedInvest.Equal(dec("30")) {
		t.Errorf("second final = %s calculated = %s", second.FinalInvest, second.CalculatedInvest)
	}
	if !result.PendingTotal.Equal(dec("25")) {
		t.Errorf("pending total = %s", result.PendingTotal)
	}
}

func TestEvaluateUser_ExhaustedMonthSkips(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addOrder("500")
	f.addRule(entity.InvestTypeDifference, "50", nil, false)

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := result.Created[0]
	if ev.Status != entity.EvaluationStatusSkipped || !ev.FinalInvest.IsZero() {
		t.Errorf("status = %s final = %s", ev.Status, ev.FinalInvest)
	}
	if f.notifier.Count(entity.NotificationWeeklyReview) != 0 {
		t.Error("no review expected without a pending amount")
	}
}

func TestEvaluateUser_OpenEvaluationsCountTowardMonthlyCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addOpenEvaluation(entity.EvaluationStatusPending, "300")
	f.addOpenEvaluation(entity.EvaluationStatusConfirmed, "190")
	f.addOpenEvaluation(entity.EvaluationStatusSkipped, "400")
	f.addRule(entity.InvestTypeDifference, "50", nil, false)
	f.addCoffee("20", 10)

	result, err := f.weekly().EvaluateUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev := result.Created[0]
	if !ev.CalculatedInvest.Equal(dec("30")) || !ev.FinalInvest.Equal(dec("10")) {
		t.Errorf("calculated = %s final = %s, want 30 and 10", ev.CalculatedInvest, ev.FinalInvest)
	}
}

func TestEvaluateAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addRule(entity.InvestTypeDifference, "50", nil, false)

	paused := entity.NewProfile(uuid.New(), "VTI", dec("100"), dec("500"))
	paused.OnboardingCompleted = true
	paused.InvestingPaused = true
	_ = f.profiles.Create(ctx, paused)

	fresh := entity.NewProfile(uuid.New(), "VTI", dec("100"), dec("500"))
	_ = f.profiles.Create(ctx, fresh)

	total, err := f.weekly().EvaluateAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Succeeded != 1 || total.Skipped != 1 || total.Failed != 0 {
		t.Errorf("totals = %+v", total)
	}

	res, err := f.weekly().EvaluateUser(ctx, paused.UserID)
	if err != nil || res.Counts.Skipped != 1 {
		t.Errorf("paused single-user run = %+v, %v", res, err)
	}
}

func (f *fixture) pendingEvaluation(t *testing.T) (*entity.Evaluation, *entity.Transaction) {
	t.Helper()
	f.addRule(entity.InvestTypeDifference, "50", nil, false)
	f.addCoffee("20", 10)
	extra := f.addCoffee("12", 14)
	result, err := f.weekly().EvaluateUser(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result.Created[0], extra
}

func (f *fixture) confirm() *ConfirmEvaluationUseCase {
	return NewConfirmEvaluationUseCase(f.evaluations, f.rules, f.txs, f.profiles, f.orders, f.evaluator).WithClock(clock)
}

func TestConfirmEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, _ := f.pendingEvaluation(t)

	got, err := f.confirm().Execute(ctx, ConfirmEvaluationInput{UserID: f.userID, EvaluationID: ev.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != entity.EvaluationStatusConfirmed || got.ConfirmedAt == nil {
		t.Errorf("unexpected evaluation %+v", got)
	}
	if stored := f.evaluations.Get(ev.ID); stored.Status != entity.EvaluationStatusConfirmed {
		t.Errorf("stored status = %s", stored.Status)
	}

	_, err = f.confirm().Execute(ctx, ConfirmEvaluationInput{UserID: f.userID, EvaluationID: ev.ID})
	var evalErr *domainerror.EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Code != domainerror.ErrCodeInvalidTransition {
		t.Errorf("second confirm err = %v", err)
	}

	if _, err := NewSkipEvaluationUseCase(f.evaluations).Execute(ctx, f.userID, ev.ID); !errors.Is(err, domainerror.ErrInvalidTransition) {
		t.Errorf("skip after confirm err = %v", err)
	}
}

func TestConfirmEvaluation_WithExclusions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, extra := f.pendingEvaluation(t)

	got, err := f.confirm().Execute(ctx, ConfirmEvaluationInput{
		UserID:                 f.userID,
		EvaluationID:           ev.ID,
		ExcludedTransactionIDs: []uuid.UUID{extra.ID, uuid.New()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ActualSpend.Equal(dec("20")) || !got.FinalInvest.Equal(dec("30")) {
		t.Errorf("recomputed actual = %s final = %s", got.ActualSpend, got.FinalInvest)
	}
	if len(got.MatchedTransactionIDs) != 1 {
		t.Errorf("matched = %v", got.MatchedTransactionIDs)
	}
	if tx, _ := f.txs.FindByID(ctx, extra.ID); !tx.Excluded {
		t.Error("expected transaction to be excluded")
	}
}

func TestConfirmEvaluation_RecomputeCapsAgainstOtherOpenEvaluations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, extra := f.pendingEvaluation(t)
	f.addOpenEvaluation(entity.EvaluationStatusConfirmed, "480")

	got, err := f.confirm().Execute(ctx, ConfirmEvaluationInput{
		UserID:                 f.userID,
		EvaluationID:           ev.ID,
		ExcludedTransactionIDs: []uuid.UUID{extra.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.CalculatedInvest.Equal(dec("30")) || !got.FinalInvest.Equal(dec("20")) {
		t.Errorf("calculated = %s final = %s, want 30 and 20", got.CalculatedInvest, got.FinalInvest)
	}
}

// skipOnTransition moves the evaluation to skipped just before a transition
// lands, as a concurrent skip request would.
type skipOnTransition struct {
	*usecasetest.EvaluationRepository
}

func (r skipOnTransition) Transition(ctx context.Context, ev *entity.Evaluation, from entity.EvaluationStatus) (bool, error) {
	r.Get(ev.ID).Status = entity.EvaluationStatusSkipped
	return r.EvaluationRepository.Transition(ctx, ev, from)
}

func TestConfirmEvaluation_LostRaceKeepsTransactionsIncluded(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, extra := f.pendingEvaluation(t)
	uc := NewConfirmEvaluationUseCase(skipOnTransition{f.evaluations}, f.rules, f.txs, f.profiles, f.orders, f.evaluator).
		WithClock(clock)

	_, err := uc.Execute(ctx, ConfirmEvaluationInput{
		UserID:                 f.userID,
		EvaluationID:           ev.ID,
		ExcludedTransactionIDs: []uuid.UUID{extra.ID},
	})
	if !errors.Is(err, domainerror.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if tx, _ := f.txs.FindByID(ctx, extra.ID); tx.Excluded {
		t.Error("transaction excluded although the confirm lost")
	}
	if stored := f.evaluations.Get(ev.ID); stored.Status != entity.EvaluationStatusSkipped || !stored.FinalInvest.Equal(dec("18")) {
		t.Errorf("stored status = %s final = %s", stored.Status, stored.FinalInvest)
	}
}

func TestConfirmEvaluation_RecomputedToZeroSkips(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, extra := f.pendingEvaluation(t)
	f.addOrder("500")

	got, err := f.confirm().Execute(ctx, ConfirmEvaluationInput{
		UserID:                 f.userID,
		EvaluationID:           ev.ID,
		ExcludedTransactionIDs: []uuid.UUID{extra.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != entity.EvaluationStatusSkipped || got.SkippedAt == nil {
		t.Errorf("status = %s", got.Status)
	}
}

func TestSkipEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, _ := f.pendingEvaluation(t)
	uc := NewSkipEvaluationUseCase(f.evaluations)

	if _, err := uc.Execute(ctx, uuid.New(), ev.ID); !errors.Is(err, domainerror.ErrEvaluationNotFound) {
		t.Errorf("foreign skip err = %v", err)
	}

	got, err := uc.Execute(ctx, f.userID, ev.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != entity.EvaluationStatusSkipped {
		t.Errorf("status = %s", got.Status)
	}

	_, err = f.confirm().Execute(ctx, ConfirmEvaluationInput{UserID: f.userID, EvaluationID: ev.ID})
	if !errors.Is(err, domainerror.ErrInvalidTransition) {
		t.Errorf("confirm after skip err = %v", err)
	}
}

func TestListAndCurrentEvaluations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ev, _ := f.pendingEvaluation(t)

	older := entity.NewEvaluation(f.userID, uuid.New(), valueobject.PreviousWeek(sundayMorning).Previous(), 0,
		entity.EvaluationResult{FinalInvest: dec("5")})
	_, _ = f.evaluations.CreateIfAbsent(ctx, older)

	current, err := NewCurrentEvaluationsUseCase(f.evaluations).Execute(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(current) != 1 || current[0].ID != ev.ID {
		t.Errorf("current = %v", current)
	}

	list := NewListEvaluationsUseCase(f.evaluations)
	out, err := list.Execute(ctx, ListEvaluationsInput{UserID: f.userID, Status: "pending"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 || out.Evaluations[0].ID != ev.ID || out.PageSize != 20 {
		t.Errorf("list = %+v", out)
	}

	if _, err := list.Execute(ctx, ListEvaluationsInput{UserID: f.userID, Status: "done"}); !errors.Is(err, domainerror.ErrInvalidEvaluationStatus) {
		t.Errorf("bad status err = %v", err)
	}

	empty, err := NewCurrentEvaluationsUseCase(f.evaluations).Execute(ctx, uuid.New())
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty current = %v, %v", empty, err)
	}
}

func TestPreviewEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addRule(entity.InvestTypeDifference, "50", nil, false)
	f.addCoffee("15", 16)
	f.addCoffee("40", 12) // last week

	uc := NewPreviewEvaluationUseCase(f.rules, f.txs, f.evaluations, f.evaluator).
		WithClock(func() time.Time { return time.Date(2024, 6, 18, 9, 0, 0, 0, time.UTC) })

	out, err := uc.Execute(ctx, f.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Rules) != 1 {
		t.Fatalf("rules = %d", len(out.Rules))
	}
	if r := out.Rules[0].Result; !r.ActualSpend.Equal(dec("15")) || !r.CalculatedInvest.Equal(dec("35")) {
		t.Errorf("preview actual = %s calculated = %s", r.ActualSpend, r.CalculatedInvest)
	}
	if len(f.evaluations.All()) != 0 {
		t.Error("preview must not persist evaluations")
	}
}
