// Package bank implements the bank aggregation provider client.
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
)

const (
	transactionsPath = "/transactions/get"
	pageSize         = 500
	defaultTimeout   = 30 * time.Second
)

// APIError is an error response from Plaid.
type APIError struct {
	StatusCode   int
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: status %d: %s %s: %s", e.StatusCode, e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// PlaidClient implements adapter.BankClient over the Plaid REST API.
type PlaidClient struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	attempts   uint
	retryDelay time.Duration
}

// NewPlaidClient creates a new Plaid client.
func NewPlaidClient(baseURL, clientID, secret string, timeout time.Duration) *PlaidClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PlaidClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		secret:     secret,
		attempts:   3,
		retryDelay: 2 * time.Second,
	}
}

// WithRetry overrides the retry policy.
func (c *PlaidClient) WithRetry(attempts uint, delay time.Duration) *PlaidClient {
	c.attempts = attempts
	c.retryDelay = delay
	return c
}

type transactionsRequest struct {
	ClientID    string              `json:"client_id"`
	Secret      string              `json:"secret"`
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type transactionsOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsResponse struct {
	Transactions      []plaidTransaction `json:"transactions"`
	TotalTransactions int                `json:"total_transactions"`
}

type plaidTransaction struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	MerchantName  *string         `json:"merchant_name"`
	Name          string          `json:"name"`
	Category      []string        `json:"category"`
	Date          string          `json:"date"`
	Pending       bool            `json:"pending"`
}

// GetTransactions pages through every transaction of the item dated within [start, end].
func (c *PlaidClient) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]adapter.BankTransaction, error) {
	var out []adapter.BankTransaction

	for offset := 0; ; {
		page, err := c.fetchPage(ctx, transactionsRequest{
			ClientID:    c.clientID,
			Secret:      c.secret,
			AccessToken: accessToken,
			StartDate:   start.Format(time.DateOnly),
			EndDate:     end.Format(time.DateOnly),
			Options:     transactionsOptions{Count: pageSize, Offset: offset},
		})
		if err != nil {
			return nil, err
		}

		for _, tx := range page.Transactions {
			converted, err := toBankTransaction(tx)
			if err != nil {
				slog.Warn("Skipping malformed bank transaction", "transaction_id", tx.TransactionID, "error", err)
				continue
			}
			out = append(out, converted)
		}

		offset += len(page.Transactions)
		if len(page.Transactions) == 0 || offset >= page.TotalTransactions {
			break
		}
	}

	return out, nil
}

func (c *PlaidClient) fetchPage(ctx context.Context, body transactionsRequest) (*transactionsResponse, error) {
	var page transactionsResponse
	err := retry.Do(
		func() error {
			return c.post(ctx, transactionsPath, body, &page)
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Temporary()
			}
			return ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Plaid request failed, will retry", "attempt", n+1, "error", err)
		}),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *PlaidClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil {
			apiErr.ErrorMessage = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// toBankTransaction normalizes a Plaid row. Plaid reports outflows as
// positive and refunds as negative amounts; the magnitude is kept.
func toBankTransaction(tx plaidTransaction) (adapter.BankTransaction, error) {
	date, err := time.Parse(time.DateOnly, tx.Date)
	if err != nil {
		return adapter.BankTransaction{}, fmt.Errorf("failed to parse date %q: %w", tx.Date, err)
	}

	merchant := tx.Name
	if tx.MerchantName != nil && strings.TrimSpace(*tx.MerchantName) != "" {
		merchant = *tx.MerchantName
	}

	return adapter.BankTransaction{
		ProviderTransactionID: tx.TransactionID,
		Amount:                tx.Amount.Abs(),
		MerchantName:          merchant,
		Categories:            tx.Category,
		Date:                  date,
		Pending:               tx.Pending,
	}, nil
}

var _ adapter.BankClient = (*PlaidClient)(nil)
