//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cucumber/godog"

	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/test/integration/mock"
)

func registerProviderSteps(ctx *godog.ScenarioContext, t *TestContext) {
	ctx.Given(`^the brokerage quotes "([^"]*)" at "([^"]*)"$`, t.theBrokerageQuotesAt)
	ctx.Given(`^the brokerage rejects orders with status (\d+)$`, t.theBrokerageRejectsOrdersWithStatus)
	ctx.Given(`^the brokerage reports order "([^"]*)" as "([^"]*)" at "([^"]*)"$`, t.theBrokerageReportsOrderAsAt)
	ctx.Given(`^the bank returns the transactions:$`, t.theBankReturnsTheTransactions)
	ctx.Given(`^the push service accepts notifications$`, t.thePushServiceAcceptsNotifications)

	ctx.Then(`^the "([^"]*)" api should have received (\d+) "([^"]*)" requests? to "([^"]*)"$`, t.theAPIShouldHaveReceivedRequests)
	ctx.Then(`^the brokerage should have been asked to buy "([^"]*)" units of "([^"]*)" for the current user$`, t.theBrokerageShouldHaveBeenAskedToBuy)
}

func registerJobSteps(ctx *godog.ScenarioContext, t *TestContext) {
	ctx.When(`^the "([^"]*)" job runs$`, t.theJobRuns)
	ctx.When(`^the queued jobs are processed$`, t.theQueuedJobsAreProcessed)
	ctx.When(`^the notification worker runs$`, t.theNotificationWorkerRuns)
}

// theBrokerageQuotesAt prices symbol and accepts market orders for it.
func (t *TestContext) theBrokerageQuotesAt(symbol, price string) error {
	t.brokerage.SetResponse(-1, http.MethodGet, "/accounts/*/quotes", http.StatusOK, []any{
		map[string]any{
			"symbol":           map[string]any{"id": "usym-" + symbol, "symbol": symbol},
			"last_trade_price": price,
		},
	})
	t.brokerage.SetResponse(-1, http.MethodGet, "/accounts/*", http.StatusOK, map[string]any{
		"brokerage": map[string]any{"allows_fractional_units": true},
	})
	t.brokerage.SetResponse(-1, http.MethodPost, "/trade/place", http.StatusOK, map[string]any{
		"brokerage_order_id": "brk-order-1",
		"status":             "PENDING",
	})
	return nil
}

func (t *TestContext) theBrokerageRejectsOrdersWithStatus(status int) error {
	t.brokerage.SetResponse(-1, http.MethodPost, "/trade/place", status, map[string]any{
		"code":   "1063",
		"detail": "order rejected by brokerage",
	})
	return nil
}

func (t *TestContext) theBrokerageReportsOrderAsAt(brokerageOrderID, status, price string) error {
	t.brokerage.SetResponse(-1, http.MethodGet, "/accounts/*/orders", http.StatusOK, []any{
		map[string]any{
			"brokerage_order_id": brokerageOrderID,
			"status":             status,
			"execution_price":    price,
			"filled_quantity":    "1",
		},
	})
	return nil
}

// theBankReturnsTheTransactions answers /transactions/get with one page built
// from a table with the columns id, merchant, amount, date and category.
func (t *TestContext) theBankReturnsTheTransactions(table *godog.Table) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}

	transactions := make([]any, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, map[string]any{
			"transaction_id": row["id"],
			"amount":         row["amount"],
			"merchant_name":  row["merchant"],
			"name":           row["merchant"],
			"category":       splitCategory(row["category"]),
			"date":           row["date"],
			"pending":        row["pending"] == "true",
		})
	}

	t.bank.SetResponse(-1, http.MethodPost, "/transactions/get", http.StatusOK, map[string]any{
		"transactions":       transactions,
		"total_transactions": len(transactions),
	})
	return nil
}

func (t *TestContext) thePushServiceAcceptsNotifications() error {
	t.expo.SetResponse(-1, http.MethodPost, "/push/send", http.StatusOK, map[string]any{
		"data": []any{map[string]any{"status": "ok", "id": "ticket-1"}},
	})
	return nil
}

func (t *TestContext) theAPIShouldHaveReceivedRequests(api string, count int, method, path string) error {
	var server *mock.ApiMock
	switch api {
	case "brokerage":
		server = t.brokerage
	case "bank":
		server = t.bank
	case "push":
		server = t.expo
	default:
		return fmt.Errorf("unknown api %q", api)
	}

	if got := server.CallCount(method, path); got != count {
		return fmt.Errorf("expected %d %s %s requests to the %s api, got %d", count, method, path, api, got)
	}
	return nil
}

// theBrokerageShouldHaveBeenAskedToBuy checks the first order placed: its
// units and symbol, the user it was placed for and its signature.
func (t *TestContext) theBrokerageShouldHaveBeenAskedToBuy(units, symbol string) error {
	body := t.brokerage.GetRequestBody(http.MethodPost, "/trade/place", 0)
	if body == nil {
		return errors.New("no order was placed")
	}
	if got := fmt.Sprintf("%v", body["units"]); got != units {
		return fmt.Errorf("expected %s units, got %s", units, got)
	}
	if got := body["universal_symbol_id"]; got != "usym-"+symbol {
		return fmt.Errorf("expected symbol id usym-%s, got %v", symbol, got)
	}
	if got := body["action"]; got != "BUY" {
		return fmt.Errorf("expected a BUY order, got %v", got)
	}

	query := t.brokerage.GetRequestQueries(http.MethodPost, "/trade/place", 0)
	if want := "snap-" + t.currentUserID.String(); query["userId"] != want {
		return fmt.Errorf("expected userId %s, got %q", want, query["userId"])
	}
	if headers := t.brokerage.GetRequestHeaders(http.MethodPost, "/trade/place", 0); headers["Signature"] == "" {
		return errors.New("order request was not signed")
	}
	return nil
}

func (t *TestContext) theJobRuns(kind string) error {
	if _, err := t.injector.Runner.RunBatch(context.Background(), job.Kind(kind)); err != nil {
		return fmt.Errorf("job %s failed: %w", kind, err)
	}
	return nil
}

// theQueuedJobsAreProcessed drains the job queue on the calling goroutine.
func (t *TestContext) theQueuedJobsAreProcessed() error {
	ctx := context.Background()
	queue, ok := t.injector.Dispatcher.(interface {
		Len(ctx context.Context) (int64, error)
	})
	if !ok || t.injector.Consumer == nil {
		return fmt.Errorf("jobs are dispatched %s, not queued", t.injector.Dispatcher.Mode())
	}

	for {
		n, err := queue.Len(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := t.injector.Consumer.ProcessOne(ctx, time.Second); err != nil {
			return err
		}
	}
}

func (t *TestContext) theNotificationWorkerRuns() error {
	t.injector.NotificationWorker.ProcessNow(context.Background())
	return nil
}
