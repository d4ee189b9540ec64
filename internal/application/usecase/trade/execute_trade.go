// Package trade places brokerage orders for confirmed evaluations and keeps
// their status current.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// notionalPrecision is the number of unit decimals sent for fractional orders.
const notionalPrecision = 6

// Outcome describes what an execution attempt did.
type Outcome string

const (
	// OutcomeSubmitted means an order was placed and the evaluation executed.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeFailed means the attempt failed and the evaluation stays confirmed.
	OutcomeFailed Outcome = "failed"
	// OutcomeNoop means there was nothing to do.
	OutcomeNoop Outcome = "noop"
)

// ExecuteTradeOutput reports the result of one execution attempt.
type ExecuteTradeOutput struct {
	Outcome Outcome
	Reason  string
	Order   *entity.Order

	cause error
}

// Err returns nil for a submitted order, the typed cause of a failed one, and
// the reason nothing was placed wrapped in job.ErrSkipped.
func (o *ExecuteTradeOutput) Err() error {
	switch o.Outcome {
	case OutcomeSubmitted:
		return nil
	case OutcomeFailed:
		return o.cause
	default:
		return job.Skip(o.cause)
	}
}

// ExecuteTradeUseCase turns confirmed evaluations into brokerage orders.
type ExecuteTradeUseCase struct {
	evaluationRepo adapter.EvaluationRepository
	orderRepo      adapter.OrderRepository
	profileRepo    adapter.ProfileRepository
	connectionRepo adapter.BrokerageConnectionRepository
	brokerage      adapter.BrokerageClient
	notifier       adapter.Notifier
	rewards        adapter.RewardRecorder
	defaultSymbol  string
	locks          *keyedMutex
	now            func() time.Time
}

// NewExecuteTradeUseCase creates a new ExecuteTradeUseCase instance.
func NewExecuteTradeUseCase(
	evaluationRepo adapter.EvaluationRepository,
	orderRepo adapter.OrderRepository,
	profileRepo adapter.ProfileRepository,
	connectionRepo adapter.BrokerageConnectionRepository,
	brokerage adapter.BrokerageClient,
	notifier adapter.Notifier,
	rewards adapter.RewardRecorder,
	defaultSymbol string,
) *ExecuteTradeUseCase {
	return &ExecuteTradeUseCase{
		evaluationRepo: evaluationRepo,
		orderRepo:      orderRepo,
		profileRepo:    profileRepo,
		connectionRepo: connectionRepo,
		brokerage:      brokerage,
		notifier:       notifier,
		rewards:        rewards,
		defaultSymbol:  defaultSymbol,
		locks:          newKeyedMutex(),
		now:            time.Now,
	}
}

// WithClock replaces the time source used for the monthly limit.
func (uc *ExecuteTradeUseCase) WithClock(now func() time.Time) *ExecuteTradeUseCase {
	uc.now = now
	return uc
}

// ExecuteAll attempts every confirmed evaluation with a positive invest.
// Each evaluation is isolated from the others' failures, and cancellation is
// only honoured between evaluations.
func (uc *ExecuteTradeUseCase) ExecuteAll(ctx context.Context) (job.Result, error) {
	var total job.Result

	evaluations, err := uc.evaluationRepo.FindConfirmedWithInvest(ctx)
	if err != nil {
		return total, fmt.Errorf("failed to load confirmed evaluations: %w", err)
	}
	slog.Info("Starting trade execution", "evaluations", len(evaluations))

	for _, ev := range evaluations {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		out, err := uc.Execute(ctx, ev.ID)
		switch {
		case err != nil:
			total.Failed++
			slog.Error("Trade execution errored", "evaluation_id", ev.ID, "user_id", ev.UserID, "error", err)
		case out.Outcome == OutcomeSubmitted:
			total.Succeeded++
		case out.Outcome == OutcomeFailed:
			total.Failed++
		default:
			total.Skipped++
		}
	}

	slog.Info("Trade execution finished", total.LogAttrs()...)
	return total, nil
}

// ExecuteForUser executes an evaluation only if it belongs to userID.
func (uc *ExecuteTradeUseCase) ExecuteForUser(ctx context.Context, userID, evaluationID uuid.UUID) (*ExecuteTradeOutput, error) {
	if err := uc.VerifyOwner(ctx, userID, evaluationID); err != nil {
		return nil, err
	}
	return uc.Execute(ctx, evaluationID)
}

// VerifyOwner returns the not-found error unless the evaluation belongs to userID.
func (uc *ExecuteTradeUseCase) VerifyOwner(ctx context.Context, userID, evaluationID uuid.UUID) error {
	ev, err := uc.findEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if ev.UserID != userID {
		return evaluationNotFound()
	}
	return nil
}

// CheckExecutable returns the error a trigger answers with when the evaluation
// is not userID's or is not waiting to be traded.
func (uc *ExecuteTradeUseCase) CheckExecutable(ctx context.Context, userID, evaluationID uuid.UUID) error {
	ev, err := uc.findEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	switch {
	case ev.UserID != userID:
		return evaluationNotFound()
	case ev.Status != entity.EvaluationStatusConfirmed:
		return notExecutable("evaluation is " + string(ev.Status))
	case !ev.FinalInvest.IsPositive():
		return notExecutable("nothing to invest")
	}
	return nil
}

// Execute places the order of one confirmed evaluation. Brokerage failures are
// recorded on the order and reported through the output, not as an error.
//
// Cancelling ctx does not stop an attempt that has started: the order, the
// evaluation and the notification are always recorded together. Callers stop
// between evaluations instead.
func (uc *ExecuteTradeUseCase) Execute(ctx context.Context, evaluationID uuid.UUID) (*ExecuteTradeOutput, error) {
	ctx = context.WithoutCancel(ctx)

	unlock := uc.locks.Lock(evaluationID)
	defer unlock()

	ev, err := uc.findEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	logger := slog.With("evaluation_id", ev.ID, "user_id", ev.UserID)

	if ev.Status != entity.EvaluationStatusConfirmed {
		logger.Info("Evaluation is not confirmed, nothing to execute", "status", ev.Status)
		return noop(notExecutable("evaluation is " + string(ev.Status))), nil
	}
	if !ev.FinalInvest.IsPositive() {
		logger.Info("Evaluation has nothing to invest")
		return noop(notExecutable("nothing to invest")), nil
	}

	if out, err := uc.inFlight(ctx, ev.ID); out != nil || err != nil {
		return out, err
	}

	profile, err := uc.profileRepo.FindByUserID(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.InvestingPaused {
		logger.Info("Investing paused, not placing order")
		return noop(domainerror.NewOrderError(
			domainerror.ErrCodeInvestingPaused,
			domainerror.ErrInvestingPaused.Error(),
			domainerror.ErrInvestingPaused,
		)), nil
	}

	amount, err := uc.affordable(ctx, ev, profile)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		logger.Info("Monthly limit reached, not placing order", "max_per_month", profile.MaxPerMonth.StringFixed(2))
		return noop(domainerror.NewOrderError(
			domainerror.ErrCodeMonthlyLimitReached,
			domainerror.ErrMonthlyLimitReached.Error(),
			domainerror.ErrMonthlyLimitReached,
		)), nil
	}
	if amount.LessThan(ev.FinalInvest) {
		logger.Info("Order reduced to the monthly limit", "final_invest", ev.FinalInvest.StringFixed(2), "amount", amount.StringFixed(2))
	}

	order := entity.NewOrder(ev.UserID, ev.ID, profile.Symbol(uc.defaultSymbol), amount)
	created, err := uc.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if !created {
		// Another process claimed the evaluation between the check and the insert.
		if out, err := uc.inFlight(ctx, ev.ID); out != nil || err != nil {
			return out, err
		}
		return noop(orderInFlight()), nil
	}
	logger = logger.With("order_id", order.ID, "symbol", order.Symbol)

	placed, units, err := uc.place(ctx, order)
	if err != nil {
		logger.Warn("Order failed", "error", err)
		return uc.fail(ctx, order, err)
	}

	order.MarkSubmitted(placed.BrokerageOrderID, units)
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record submitted order: %w", err)
	}

	executed := *ev
	executed.Status = entity.EvaluationStatusExecuted
	executed.FinalInvest = order.AmountDollars
	executed.ExecutedAt = order.SubmittedAt
	executed.UpdatedAt = *order.SubmittedAt
	ok, err := uc.evaluationRepo.Transition(ctx, &executed, entity.EvaluationStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to mark evaluation executed: %w", err)
	}
	if !ok {
		logger.Error("Evaluation changed while its order was placed")
	}

	logger.Info("Order submitted",
		"brokerage_order_id", order.BrokerageOrderID,
		"amount", order.AmountDollars.StringFixed(2),
		"units", units.String(),
	)

	uc.notifier.Notify(ctx, ev.UserID, entity.NotificationOrderSubmitted, map[string]interface{}{
		"symbol": order.Symbol,
		"amount": order.AmountDollars.StringFixed(2),
		"units":  units.String(),
	})

	first, err := uc.profileRepo.MarkFirstTrade(ctx, ev.UserID)
	if err != nil {
		logger.Warn("Failed to record first trade", "error", err)
	}
	if err := uc.rewards.OnInvestmentFilled(ctx, ev.UserID, order.AmountDollars, first); err != nil {
		logger.Warn("Failed to record investment reward", "error", err)
	}

	return &ExecuteTradeOutput{Outcome: OutcomeSubmitted, Order: order}, nil
}

// inFlight returns a noop naming the evaluation's live order, or nil when
// every earlier attempt failed.
func (uc *ExecuteTradeUseCase) inFlight(ctx context.Context, evaluationID uuid.UUID) (*ExecuteTradeOutput, error) {
	attempts, err := uc.orderRepo.FindByEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	for _, attempt := range attempts {
		if attempt.Blocks() {
			slog.Warn("Order already in flight for evaluation",
				"evaluation_id", evaluationID,
				"order_id", attempt.ID,
				"status", attempt.Status,
			)
			out := noop(orderInFlight())
			out.Order = attempt
			return out, nil
		}
	}
	return nil, nil
}

// affordable caps the evaluation's invest to what the month still allows,
// counting only orders that were actually placed.
func (uc *ExecuteTradeUseCase) affordable(ctx context.Context, ev *entity.Evaluation, profile *entity.Profile) (decimal.Decimal, error) {
	ordered, err := uc.orderRepo.SumCommittedSince(ctx, ev.UserID, valueobject.MonthStart(uc.now()))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum month-to-date orders: %w", err)
	}
	remaining := profile.MaxPerMonth.Sub(ordered)
	if !remaining.IsPositive() {
		return decimal.Zero, nil
	}
	return decimal.Min(ev.FinalInvest, remaining).Round(2), nil
}

// place quotes, sizes and submits the order. Nothing is submitted when the
// amount buys no units.
func (uc *ExecuteTradeUseCase) place(ctx context.Context, order *entity.Order) (*adapter.PlacedOrder, decimal.Decimal, error) {
	conn, err := uc.connectionRepo.FindByUser(ctx, order.UserID)
	if err != nil && !errors.Is(err, domainerror.ErrBrokerageNotConnected) {
		return nil, decimal.Zero, fmt.Errorf("failed to load brokerage connection: %w", err)
	}
	if !conn.IsTradable() {
		return nil, decimal.Zero, domainerror.NewOrderError(
			domainerror.ErrCodeBrokerageNotConnected,
			"no brokerage account selected",
			domainerror.ErrBrokerageNotConnected,
		)
	}

	quote, err := uc.brokerage.GetQuote(ctx, conn, order.Symbol)
	if err != nil {
		return nil, decimal.Zero, domainerror.NewOrderError(domainerror.ErrCodeBrokerageRequestFailed, "quote failed", err)
	}
	if !quote.Price.IsPositive() {
		return nil, decimal.Zero, domainerror.NewOrderError(
			domainerror.ErrCodeInvalidQuote,
			fmt.Sprintf("quote for %s returned %s", order.Symbol, quote.Price),
			domainerror.ErrInvalidQuote,
		)
	}

	notional, err := uc.brokerage.SupportsNotional(ctx, conn)
	if err != nil {
		slog.Warn("Notional support lookup failed, using stored flag", "order_id", order.ID, "error", err)
		notional = conn.SupportsNotional
	}

	units := order.AmountDollars.Div(quote.Price)
	if notional {
		units = units.Truncate(notionalPrecision)
	} else {
		units = units.Floor()
	}
	if !units.IsPositive() {
		return nil, decimal.Zero, domainerror.NewOrderError(
			domainerror.ErrCodeOrderTooSmall,
			fmt.Sprintf("$%s buys no shares of %s at $%s", order.AmountDollars.StringFixed(2), order.Symbol, quote.Price),
			domainerror.ErrOrderTooSmall,
		)
	}

	placed, err := uc.brokerage.PlaceMarketBuy(ctx, conn, quote, units)
	if err != nil {
		return nil, decimal.Zero, domainerror.NewOrderError(domainerror.ErrCodeBrokerageRequestFailed, "order placement failed", err)
	}
	return placed, units, nil
}

func (uc *ExecuteTradeUseCase) fail(ctx context.Context, order *entity.Order, cause error) (*ExecuteTradeOutput, error) {
	order.MarkFailed(cause)
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record failed order: %w", err)
	}

	uc.notifier.Notify(ctx, order.UserID, entity.NotificationOrderFailed, map[string]interface{}{
		"symbol": order.Symbol,
		"amount": order.AmountDollars.StringFixed(2),
		"reason": order.ErrorMessage,
	})

	return &ExecuteTradeOutput{Outcome: OutcomeFailed, Reason: order.ErrorMessage, Order: order, cause: cause}, nil
}

func (uc *ExecuteTradeUseCase) findEvaluation(ctx context.Context, id uuid.UUID) (*entity.Evaluation, error) {
	ev, err := uc.evaluationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerror.ErrEvaluationNotFound) {
			return nil, evaluationNotFound()
		}
		return nil, fmt.Errorf("failed to load evaluation: %w", err)
	}
	return ev, nil
}

func evaluationNotFound() error {
	return domainerror.NewEvaluationError(
		domainerror.ErrCodeEvaluationNotFound,
		"evaluation not found",
		domainerror.ErrEvaluationNotFound,
	)
}

func notExecutable(message string) error {
	return domainerror.NewEvaluationError(
		domainerror.ErrCodeInvalidTransition,
		message,
		domainerror.ErrInvalidTransition,
	)
}

func orderInFlight() error {
	return domainerror.NewOrderError(
		domainerror.ErrCodeOrderInFlight,
		domainerror.ErrOrderInFlight.Error(),
		domainerror.ErrOrderInFlight,
	)
}

func noop(reason error) *ExecuteTradeOutput {
	message := reason.Error()
	var orderErr *domainerror.OrderError
	var evalErr *domainerror.EvaluationError
	switch {
	case errors.As(reason, &orderErr):
		message = orderErr.Message
	case errors.As(reason, &evalErr):
		message = evalErr.Message
	}
	return &ExecuteTradeOutput{Outcome: OutcomeNoop, Reason: message, cause: reason}
}
