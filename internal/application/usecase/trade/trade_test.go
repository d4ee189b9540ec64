package trade

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	userID      uuid.UUID
	profiles    *usecasetest.ProfileRepository
	evaluations *usecasetest.EvaluationRepository
	orders      *usecasetest.OrderRepository
	connections *usecasetest.BrokerageConnectionRepository
	brokerage   *usecasetest.BrokerageClient
	notifier    *usecasetest.Notifier
	rewards     *usecasetest.RewardRecorder
}

func newFixture(price string) *fixture {
	userID := uuid.New()
	profile := entity.NewProfile(userID, "", dec("100"), dec("500"))
	profile.OnboardingCompleted = true

	conn := &entity.BrokerageConnection{
		ID:              uuid.New(),
		UserID:          userID,
		BrokerageUserID: "snap-user",
		AccountID:       "acct-1",
		CreatedAt:       time.Now().UTC(),
	}

	return &fixture{
		userID:      userID,
		profiles:    usecasetest.NewProfileRepository(profile),
		evaluations: usecasetest.NewEvaluationRepository(),
		orders:      usecasetest.NewOrderRepository(),
		connections: usecasetest.NewBrokerageConnectionRepository(conn),
		brokerage:   usecasetest.NewBrokerageClient(price),
		notifier:    &usecasetest.Notifier{},
		rewards:     &usecasetest.RewardRecorder{},
	}
}

func (f *fixture) executor() *ExecuteTradeUseCase {
	return NewExecuteTradeUseCase(f.evaluations, f.orders, f.profiles, f.connections, f.brokerage, f.notifier, f.rewards, "VTI")
}

func (f *fixture) evaluation(status entity.EvaluationStatus, final string) *entity.Evaluation {
	period := valueobject.PreviousWeek(time.Date(2024, 6, 16, 6, 0, 0, 0, time.UTC))
	ev := entity.NewEvaluation(f.userID, uuid.New(), period, 0, entity.EvaluationResult{
		ActualSpend:      dec("32"),
		TargetSpend:      dec("50"),
		CalculatedInvest: dec(final),
		FinalInvest:      dec(final),
		StreakCount:      1,
	})
	ev.Status = status
	_, _ = f.evaluations.CreateIfAbsent(context.Background(), ev)
	return ev
}

func TestExecute_Submitted(t *testing.T) {
	ctx := context.Background()
	f := newFixture("252.40")
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "18.00")

	out, err := f.executor().Execute(ctx, ev.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Outcome != OutcomeSubmitted {
		t.Fatalf("outcome = %s (%s)", out.Outcome, out.Reason)
	}

	order := out.Order
	if order.Status != entity.OrderStatusSubmitted || order.BrokerageOrderID != "brk-1" || order.SubmittedAt == nil {
		t.Errorf("unexpected order %+v", order)
	}
	if order.Symbol != "VTI" || !order.AmountDollars.Equal(dec("18")) {
		t.Errorf("symbol = %s amount = %s", order.Symbol, order.AmountDollars)
	}
	if want := dec("18").Div(dec("252.40")).Truncate(6); !order.Units.Decimal.Equal(want) {
		t.Errorf("units = %s, want %s", order.Units.Decimal, want)
	}

	stored := f.evaluations.Get(ev.ID)
	if stored.Status != entity.EvaluationStatusExecuted || stored.ExecutedAt == nil {
		t.Errorf("evaluation status = %s", stored.Status)
	}
	if f.notifier.Count(entity.NotificationOrderSubmitted) != 1 {
		t.Errorf("notifications = %v", f.notifier.Kinds())
	}
	if len(f.rewards.FirstFlags) != 1 || !f.rewards.FirstFlags[0] {
		t.Errorf("first-trade reward flags = %v", f.rewards.FirstFlags)
	}

	// Executing again is a no-op.
	again, err := f.executor().Execute(ctx, ev.ID)
	if err != nil || again.Outcome != OutcomeNoop {
		t.Errorf("second execute = %+v, %v", again, err)
	}
	if len(f.brokerage.Placed) != 1 {
		t.Errorf("placed = %d orders", len(f.brokerage.Placed))
	}
}

func TestExecute_WholeSharesTooSmall(t *testing.T) {
	ctx := context.Background()
	f := newFixture("50.30")
	f.brokerage.Notional = false
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "18.00")

	out, err := f.executor().Execute(ctx, ev.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Outcome != OutcomeFailed || !strings.Contains(out.Reason, "too small") {
		t.Errorf("outcome = %s reason = %q", out.Outcome, out.Reason)
	}
	if len(f.brokerage.Placed) != 0 {
		t.Error("place-order must not be called")
	}
	if f.evaluations.Get(ev.ID).Status != entity.EvaluationStatusConfirmed {
		t.Error("evaluation must stay confirmed")
	}
	if orders := f.orders.All(); len(orders) != 1 || orders[0].Status != entity.OrderStatusFailed {
		t.Errorf("orders = %+v", orders)
	}
	if f.notifier.Count(entity.NotificationOrderFailed) != 1 {
		t.Errorf("notifications = %v", f.notifier.Kinds())
	}
}

func TestExecute_WholeShares(t *testing.T) {
	f := newFixture("40")
	f.brokerage.Notional = false
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "100")

	out, err := f.executor().Execute(context.Background(), ev.ID)
	if err != nil || out.Outcome != OutcomeSubmitted {
		t.Fatalf("execute = %+v, %v", out, err)
	}
	if !out.Order.Units.Decimal.Equal(dec("2")) {
		t.Errorf("units = %s, want 2", out.Order.Units.Decimal)
	}
}

func TestExecute_FailuresAndRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(*fixture)
		wantReason string
	}{
		{
			name:       "placement rejected",
			setup:      func(f *fixture) { f.brokerage.PlaceErr = errors.New("insufficient buying power") },
			wantReason: "insufficient buying power",
		},
		{
			name:       "zero quote",
			setup:      func(f *fixture) { f.brokerage.Price = decimal.Zero },
			wantReason: domainerror.ErrInvalidQuote.Error(),
		},
		{
			name: "no brokerage",
			setup: func(f *fixture) {
				f.connections = usecasetest.NewBrokerageConnectionRepository()
			},
			wantReason: domainerror.ErrBrokerageNotConnected.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("100")
			tt.setup(f)
			ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")

			out, err := f.executor().Execute(ctx, ev.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Outcome != OutcomeFailed || !strings.Contains(out.Reason, tt.wantReason) {
				t.Fatalf("outcome = %s reason = %q", out.Outcome, out.Reason)
			}
			if f.evaluations.Get(ev.ID).Status != entity.EvaluationStatusConfirmed {
				t.Error("evaluation must stay confirmed")
			}

			// A failed order does not block the next attempt.
			f2 := *f
			f2.brokerage = usecasetest.NewBrokerageClient("100")
			f2.connections = usecasetest.NewBrokerageConnectionRepository(&entity.BrokerageConnection{
				ID: uuid.New(), UserID: f.userID, AccountID: "acct-1",
			})
			retry, err := f2.executor().Execute(ctx, ev.ID)
			if err != nil || retry.Outcome != OutcomeSubmitted {
				t.Fatalf("retry = %+v, %v", retry, err)
			}
			if n := len(f.orders.All()); n != 2 {
				t.Errorf("orders = %d, want 2", n)
			}
		})
	}
}

func TestExecute_NoopCases(t *testing.T) {
	ctx := context.Background()

	t.Run("pending evaluation", func(t *testing.T) {
		f := newFixture("100")
		ev := f.evaluation(entity.EvaluationStatusPending, "20")
		out, err := f.executor().Execute(ctx, ev.ID)
		if err != nil || out.Outcome != OutcomeNoop {
			t.Errorf("execute = %+v, %v", out, err)
		}
		if len(f.orders.All()) != 0 {
			t.Error("no order expected")
		}
	})

	t.Run("paused investing", func(t *testing.T) {
		f := newFixture("100")
		p, _ := f.profiles.FindByUserID(ctx, f.userID)
		p.InvestingPaused = true
		_ = f.profiles.Update(ctx, p)
		ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")

		out, err := f.executor().Execute(ctx, ev.ID)
		if err != nil || out.Outcome != OutcomeNoop {
			t.Errorf("execute = %+v, %v", out, err)
		}
		if f.brokerage.QuoteCalls != 0 || len(f.orders.All()) != 0 {
			t.Error("paused user must not reach the brokerage")
		}
	})

	t.Run("order in flight", func(t *testing.T) {
		f := newFixture("100")
		ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
		_, _ = f.orders.Create(ctx, entity.NewOrder(f.userID, ev.ID, "VTI", dec("20")))

		out, err := f.executor().Execute(ctx, ev.ID)
		if err != nil || out.Outcome != OutcomeNoop || out.Order == nil {
			t.Errorf("execute = %+v, %v", out, err)
		}
		if f.brokerage.QuoteCalls != 0 {
			t.Error("in-flight order must block a new attempt")
		}
	})

	t.Run("other user's evaluation", func(t *testing.T) {
		f := newFixture("100")
		ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
		if _, err := f.executor().ExecuteForUser(ctx, uuid.New(), ev.ID); !errors.Is(err, domainerror.ErrEvaluationNotFound) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestExecute_ConcurrentCallsPlaceOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
	uc := f.executor()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Execute(ctx, ev.ID)
		}()
	}
	wg.Wait()

	if len(f.brokerage.Placed) != 1 {
		t.Errorf("placed = %d, want 1", len(f.brokerage.Placed))
	}
}

// sharedHistoryOrders lets the first two FindByEvaluation callers read the
// order history before either of them can write, like two processes racing.
type sharedHistoryOrders struct {
	*usecasetest.OrderRepository
	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func (r *sharedHistoryOrders) FindByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*entity.Order, error) {
	attempts, err := r.OrderRepository.FindByEvaluation(ctx, evaluationID)

	r.mu.Lock()
	r.arrived++
	if r.arrived == 2 {
		close(r.release)
	}
	wait := r.arrived <= 2
	r.mu.Unlock()
	if wait {
		<-r.release
	}
	return attempts, err
}

func TestExecute_SeparateExecutorsPlaceOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
	orders := &sharedHistoryOrders{OrderRepository: f.orders, release: make(chan struct{})}

	// Each executor has its own in-process lock, as in separate processes.
	outs := make([]*ExecuteTradeOutput, 2)
	var wg sync.WaitGroup
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uc := NewExecuteTradeUseCase(f.evaluations, orders, f.profiles, f.connections, f.brokerage, f.notifier, f.rewards, "VTI")
			out, err := uc.Execute(ctx, ev.ID)
			if err != nil {
				t.Errorf("executor %d: %v", i, err)
				return
			}
			outs[i] = out
		}(i)
	}
	wg.Wait()

	if len(f.brokerage.Placed) != 1 {
		t.Fatalf("placed = %d, want 1", len(f.brokerage.Placed))
	}
	if n := len(f.orders.All()); n != 1 {
		t.Errorf("orders = %d, want 1", n)
	}
	submitted, skipped := 0, 0
	for _, out := range outs {
		switch {
		case out == nil:
		case out.Outcome == OutcomeSubmitted:
			submitted++
		case out.Outcome == OutcomeNoop && errors.Is(out.Err(), domainerror.ErrOrderInFlight):
			skipped++
		}
	}
	if submitted != 1 || skipped != 1 {
		t.Errorf("submitted = %d in-flight noops = %d, want 1 and 1", submitted, skipped)
	}
}

// cancelOnPlace cancels the caller's context while the order is being placed.
type cancelOnPlace struct {
	*usecasetest.BrokerageClient
	cancel context.CancelFunc
}

func (c cancelOnPlace) PlaceMarketBuy(ctx context.Context, conn *entity.BrokerageConnection, quote *adapter.Quote, units decimal.Decimal) (*adapter.PlacedOrder, error) {
	c.cancel()
	return c.BrokerageClient.PlaceMarketBuy(ctx, conn, quote, units)
}

// ctxOrders and ctxEvaluations refuse writes on a done context, as a database
// driver does.
type ctxOrders struct{ *usecasetest.OrderRepository }

func (r ctxOrders) Update(ctx context.Context, order *entity.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.OrderRepository.Update(ctx, order)
}

type ctxEvaluations struct{ *usecasetest.EvaluationRepository }

func (r ctxEvaluations) Transition(ctx context.Context, ev *entity.Evaluation, from entity.EvaluationStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.EvaluationRepository.Transition(ctx, ev, from)
}

func TestExecute_CancelledMidPlacementStillRecords(t *testing.T) {
	f := newFixture("100")
	ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uc := NewExecuteTradeUseCase(
		ctxEvaluations{f.evaluations}, ctxOrders{f.orders}, f.profiles, f.connections,
		cancelOnPlace{f.brokerage, cancel}, f.notifier, f.rewards, "VTI",
	)
	out, err := uc.Execute(ctx, ev.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Outcome != OutcomeSubmitted {
		t.Fatalf("outcome = %s (%s)", out.Outcome, out.Reason)
	}
	if ctx.Err() == nil {
		t.Fatal("context was not cancelled during placement")
	}

	if orders := f.orders.All(); len(orders) != 1 || orders[0].Status != entity.OrderStatusSubmitted {
		t.Errorf("orders = %+v", orders)
	}
	if stored := f.evaluations.Get(ev.ID); stored.Status != entity.EvaluationStatusExecuted {
		t.Errorf("evaluation status = %s, want executed", stored.Status)
	}
	if f.notifier.Count(entity.NotificationOrderSubmitted) != 1 {
		t.Errorf("notifications = %v", f.notifier.Kinds())
	}
}

func TestExecute_MonthlyLimitAtExecution(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		placed      string
		wantOutcome Outcome
		wantAmount  string
	}{
		{name: "room for the full amount", placed: "300", wantOutcome: OutcomeSubmitted, wantAmount: "20"},
		{name: "reduced to what is left", placed: "490", wantOutcome: OutcomeSubmitted, wantAmount: "10"},
		{name: "month used up", placed: "500", wantOutcome: OutcomeNoop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("100")
			earlier := entity.NewOrder(f.userID, uuid.New(), "VTI", dec(tt.placed))
			earlier.MarkSubmitted("brk-earlier", dec("1"))
			_, _ = f.orders.Create(ctx, earlier)
			ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")

			out, err := f.executor().Execute(ctx, ev.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Outcome != tt.wantOutcome {
				t.Fatalf("outcome = %s (%s), want %s", out.Outcome, out.Reason, tt.wantOutcome)
			}

			if tt.wantOutcome == OutcomeNoop {
				if !errors.Is(out.Err(), job.ErrSkipped) || !errors.Is(out.Err(), domainerror.ErrMonthlyLimitReached) {
					t.Errorf("err = %v", out.Err())
				}
				if f.brokerage.QuoteCalls != 0 {
					t.Error("brokerage must not be called once the month is used up")
				}
				return
			}
			if !out.Order.AmountDollars.Equal(dec(tt.wantAmount)) {
				t.Errorf("amount = %s, want %s", out.Order.AmountDollars, tt.wantAmount)
			}
			if stored := f.evaluations.Get(ev.ID); !stored.FinalInvest.Equal(dec(tt.wantAmount)) {
				t.Errorf("evaluation final = %s, want %s", stored.FinalInvest, tt.wantAmount)
			}
		})
	}
}

func TestExecuteOutput_Err(t *testing.T) {
	ctx := context.Background()

	t.Run("submitted", func(t *testing.T) {
		f := newFixture("100")
		ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
		out, _ := f.executor().Execute(ctx, ev.ID)
		if err := out.Err(); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})

	t.Run("rejected by the brokerage", func(t *testing.T) {
		f := newFixture("100")
		f.brokerage.PlaceErr = errors.New("insufficient buying power")
		ev := f.evaluation(entity.EvaluationStatusConfirmed, "20")
		out, _ := f.executor().Execute(ctx, ev.ID)

		var orderErr *domainerror.OrderError
		if !errors.As(out.Err(), &orderErr) || orderErr.Code != domainerror.ErrCodeBrokerageRequestFailed {
			t.Errorf("err = %v", out.Err())
		}
		if errors.Is(out.Err(), job.ErrSkipped) {
			t.Error("a failed order is not a skip")
		}
	})

	t.Run("not confirmed", func(t *testing.T) {
		f := newFixture("100")
		ev := f.evaluation(entity.EvaluationStatusExecuted, "20")
		out, _ := f.executor().Execute(ctx, ev.ID)

		var evalErr *domainerror.EvaluationError
		if !errors.As(out.Err(), &evalErr) || evalErr.Code != domainerror.ErrCodeInvalidTransition {
			t.Errorf("err = %v", out.Err())
		}
		if !errors.Is(out.Err(), job.ErrSkipped) || out.Reason != "evaluation is executed" {
			t.Errorf("err = %v reason = %q", out.Err(), out.Reason)
		}
	})
}

func TestCheckExecutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")
	confirmed := f.evaluation(entity.EvaluationStatusConfirmed, "20")
	pending := f.evaluation(entity.EvaluationStatusPending, "20")
	uc := f.executor()

	if err := uc.CheckExecutable(ctx, f.userID, confirmed.ID); err != nil {
		t.Errorf("confirmed err = %v", err)
	}
	if err := uc.CheckExecutable(ctx, f.userID, pending.ID); !errors.Is(err, domainerror.ErrInvalidTransition) {
		t.Errorf("pending err = %v", err)
	}
	if err := uc.CheckExecutable(ctx, uuid.New(), confirmed.ID); !errors.Is(err, domainerror.ErrEvaluationNotFound) {
		t.Errorf("foreign err = %v", err)
	}
	if err := uc.CheckExecutable(ctx, f.userID, uuid.New()); !errors.Is(err, domainerror.ErrEvaluationNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if len(f.orders.All()) != 0 {
		t.Error("checking must not place anything")
	}
}

func TestExecuteAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")
	f.evaluation(entity.EvaluationStatusConfirmed, "20")
	f.evaluation(entity.EvaluationStatusConfirmed, "0")
	f.evaluation(entity.EvaluationStatusPending, "20")

	other := uuid.New()
	_ = f.profiles.Create(ctx, entity.NewProfile(other, "VOO", dec("100"), dec("500")))
	otherEv := entity.NewEvaluation(other, uuid.New(), valueobject.PreviousWeek(time.Now()), 0, entity.EvaluationResult{FinalInvest: dec("30")})
	otherEv.Status = entity.EvaluationStatusConfirmed
	_, _ = f.evaluations.CreateIfAbsent(ctx, otherEv)

	total, err := f.executor().ExecuteAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Succeeded != 1 || total.Failed != 1 || total.Skipped != 0 {
		t.Errorf("totals = %+v", total)
	}
}

func TestRefreshOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")

	filled := entity.NewOrder(f.userID, uuid.New(), "VTI", dec("20"))
	filled.MarkSubmitted("brk-fill", dec("0.2"))
	rejected := entity.NewOrder(f.userID, uuid.New(), "VTI", dec("10"))
	rejected.MarkSubmitted("brk-reject", dec("0.1"))
	open := entity.NewOrder(f.userID, uuid.New(), "VTI", dec("5"))
	open.MarkSubmitted("brk-open", dec("0.05"))
	for _, o := range []*entity.Order{filled, rejected, open} {
		_, _ = f.orders.Create(ctx, o)
	}

	f.brokerage.Statuses["brk-fill"] = &adapter.BrokerageOrderStatus{
		Found:          true,
		Status:         "EXECUTED",
		FilledUnits:    decimal.NewNullDecimal(dec("0.1985")),
		ExecutionPrice: decimal.NewNullDecimal(dec("100.75")),
	}
	f.brokerage.Statuses["brk-reject"] = &adapter.BrokerageOrderStatus{Found: true, Status: "REJECTED"}
	f.brokerage.Statuses["brk-open"] = &adapter.BrokerageOrderStatus{Found: true, Status: "PENDING"}

	uc := NewRefreshOrdersUseCase(f.orders, f.connections, f.brokerage, f.notifier)
	total, err := uc.Execute(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Succeeded != 2 || total.Skipped != 1 {
		t.Errorf("totals = %+v", total)
	}

	got, _ := f.orders.FindByID(ctx, filled.ID)
	if got.Status != entity.OrderStatusFilled || !got.Units.Decimal.Equal(dec("0.1985")) || got.FilledAt == nil {
		t.Errorf("filled order = %+v", got)
	}
	got, _ = f.orders.FindByID(ctx, rejected.ID)
	if got.Status != entity.OrderStatusFailed || !strings.Contains(got.ErrorMessage, "REJECTED") {
		t.Errorf("rejected order = %+v", got)
	}
	if f.notifier.Count(entity.NotificationOrderFilled) != 1 || f.notifier.Count(entity.NotificationOrderFailed) != 1 {
		t.Errorf("notifications = %v", f.notifier.Kinds())
	}
}

func TestListAndGetOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture("100")
	order := entity.NewOrder(f.userID, uuid.New(), "VTI", dec("20"))
	_, _ = f.orders.Create(ctx, order)

	out, err := NewListOrdersUseCase(f.orders).Execute(ctx, ListOrdersInput{UserID: f.userID, Status: "pending"})
	if err != nil || out.Total != 1 {
		t.Fatalf("list = %+v, %v", out, err)
	}
	if _, err := NewListOrdersUseCase(f.orders).Execute(ctx, ListOrdersInput{UserID: f.userID, Status: "open"}); !errors.Is(err, domainerror.ErrInvalidOrderStatus) {
		t.Errorf("bad status err = %v", err)
	}

	get := NewGetOrderUseCase(f.orders)
	if _, err := get.Execute(ctx, f.userID, order.ID); err != nil {
		t.Errorf("get err = %v", err)
	}
	if _, err := get.Execute(ctx, uuid.New(), order.ID); !errors.Is(err, domainerror.ErrOrderNotFound) {
		t.Errorf("foreign get err = %v", err)
	}
}
