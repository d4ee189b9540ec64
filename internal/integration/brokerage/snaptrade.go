// Package brokerage implements the brokerage aggregator client.
package brokerage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// APIError is a non-2xx response from SnapTrade.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("snaptrade: status %d", e.StatusCode)
	}
	return fmt.Sprintf("snaptrade: status %d: %s", e.StatusCode, e.Detail)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SnapTradeClient implements adapter.BrokerageClient over the SnapTrade REST API.
type SnapTradeClient struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	consumerKey string
	attempts    uint
	retryDelay  time.Duration
	now         func() time.Time
}

// NewSnapTradeClient creates a new SnapTrade client. baseURL includes the API
// version prefix, e.g. https://api.snaptrade.com/api/v1.
func NewSnapTradeClient(baseURL, clientID, consumerKey string, timeout time.Duration) *SnapTradeClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SnapTradeClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		clientID:    clientID,
		consumerKey: consumerKey,
		attempts:    defaultAttempts,
		retryDelay:  defaultRetryDelay,
		now:         time.Now,
	}
}

// WithRetry overrides the retry policy of read requests.
func (c *SnapTradeClient) WithRetry(attempts uint, delay time.Duration) *SnapTradeClient {
	c.attempts = attempts
	c.retryDelay = delay
	return c
}

type universalSymbol struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

type quoteResponse struct {
	Symbol         universalSymbol     `json:"symbol"`
	LastTradePrice decimal.NullDecimal `json:"last_trade_price"`
}

type placeOrderRequest struct {
	AccountID         string      `json:"account_id"`
	Action            string      `json:"action"`
	OrderType         string      `json:"order_type"`
	TimeInForce       string      `json:"time_in_force"`
	UniversalSymbolID string      `json:"universal_symbol_id"`
	Units             json.Number `json:"units"`
}

type placeOrderResponse struct {
	BrokerageOrderID string `json:"brokerage_order_id"`
	Status           string `json:"status"`
}

type accountOrder struct {
	BrokerageOrderID string              `json:"brokerage_order_id"`
	Status           string              `json:"status"`
	ExecutionPrice   decimal.NullDecimal `json:"execution_price"`
	FilledQuantity   decimal.NullDecimal `json:"filled_quantity"`
}

type accountDetails struct {
	Brokerage struct {
		AllowsFractionalUnits bool `json:"allows_fractional_units"`
	} `json:"brokerage"`
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// GetQuote returns the last trade price of symbol on the connection's account.
func (c *SnapTradeClient) GetQuote(ctx context.Context, conn *entity.BrokerageConnection, symbol string) (*adapter.Quote, error) {
	if !conn.IsTradable() {
		return nil, domainerror.ErrBrokerageNotConnected
	}

	query := url.Values{}
	query.Set("symbols", symbol)
	query.Set("use_ticker", "true")

	var quotes []quoteResponse
	path := "/accounts/" + url.PathEscape(conn.AccountID) + "/quotes"
	if err := c.getWithRetry(ctx, conn, path, query, &quotes); err != nil {
		return nil, err
	}

	for _, q := range quotes {
		if !strings.EqualFold(q.Symbol.Symbol, symbol) && len(quotes) > 1 {
			continue
		}
		return &adapter.Quote{
			Symbol:            strings.ToUpper(symbol),
			UniversalSymbolID: q.Symbol.ID,
			Price:             q.LastTradePrice.Decimal,
		}, nil
	}
	return nil, fmt.Errorf("no quote available for %s", symbol)
}

// PlaceMarketBuy submits a day market buy. Placement is never retried.
func (c *SnapTradeClient) PlaceMarketBuy(ctx context.Context, conn *entity.BrokerageConnection, quote *adapter.Quote, units decimal.Decimal) (*adapter.PlacedOrder, error) {
	if !conn.IsTradable() {
		return nil, domainerror.ErrBrokerageNotConnected
	}
	if quote == nil || quote.UniversalSymbolID == "" {
		return nil, errors.New("quote has no universal symbol id")
	}

	body := placeOrderRequest{
		AccountID:         conn.AccountID,
		Action:            "BUY",
		OrderType:         "Market",
		TimeInForce:       "Day",
		UniversalSymbolID: quote.UniversalSymbolID,
		Units:             json.Number(units.String()),
	}

	var resp placeOrderResponse
	if err := c.do(ctx, http.MethodPost, conn, "/trade/place", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.BrokerageOrderID == "" {
		return nil, errors.New("snaptrade: order response has no brokerage order id")
	}

	slog.Info("Placed brokerage order",
		"brokerage_order_id", resp.BrokerageOrderID,
		"symbol", quote.Symbol,
		"units", units.String(),
		"status", resp.Status,
	)
	return &adapter.PlacedOrder{BrokerageOrderID: resp.BrokerageOrderID, Status: resp.Status}, nil
}

// GetOrderStatus finds an order among the account's recent orders.
func (c *SnapTradeClient) GetOrderStatus(ctx context.Context, conn *entity.BrokerageConnection, brokerageOrderID string) (*adapter.BrokerageOrderStatus, error) {
	if !conn.IsTradable() {
		return nil, domainerror.ErrBrokerageNotConnected
	}

	query := url.Values{}
	query.Set("state", "all")
	query.Set("days", strconv.Itoa(30))

	var orders []accountOrder
	path := "/accounts/" + url.PathEscape(conn.AccountID) + "/orders"
	if err := c.getWithRetry(ctx, conn, path, query, &orders); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.BrokerageOrderID != brokerageOrderID {
			continue
		}
		return &adapter.BrokerageOrderStatus{
			Found:          true,
			Status:         strings.ToUpper(o.Status),
			ExecutionPrice: o.ExecutionPrice,
			FilledUnits:    o.FilledQuantity,
		}, nil
	}
	return &adapter.BrokerageOrderStatus{Found: false}, nil
}

// SupportsNotional reports whether the account's brokerage accepts fractional units.
func (c *SnapTradeClient) SupportsNotional(ctx context.Context, conn *entity.BrokerageConnection) (bool, error) {
	if !conn.IsTradable() {
		return false, domainerror.ErrBrokerageNotConnected
	}

	var details accountDetails
	if err := c.getWithRetry(ctx, conn, "/accounts/"+url.PathEscape(conn.AccountID), nil, &details); err != nil {
		return false, err
	}
	return details.Brokerage.AllowsFractionalUnits, nil
}

func (c *SnapTradeClient) getWithRetry(ctx context.Context, conn *entity.BrokerageConnection, path string, query url.Values, out interface{}) error {
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, conn, path, query, nil, out)
		},
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				if apiErr.Temporary() {
					slog.Warn("SnapTrade request failed, will retry", "path", path, "status", apiErr.StatusCode)
					return true
				}
				return false
			}
			return ctx.Err() == nil
		}),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *SnapTradeClient) do(ctx context.Context, method string, conn *entity.BrokerageConnection, path string, query url.Values, body, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("clientId", c.clientID)
	query.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	query.Set("userId", conn.BrokerageUserID)
	query.Set("userSecret", conn.BrokerageUserSecret)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to build url: %w", err)
	}
	endpoint.RawQuery = query.Encode()

	signature, err := sign(c.consumerKey, endpoint.Path, endpoint.RawQuery, payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Signature", signature)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp errorResponse
		if json.Unmarshal(raw, &errResp) == nil {
			apiErr.Code = errResp.Code
			apiErr.Detail = errResp.Detail
		}
		if apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type signaturePayload struct {
	Content json.RawMessage `json:"content"`
	Path    string          `json:"path"`
	Query   string          `json:"query"`
}

// sign returns the request signature: base64 HMAC-SHA256 of the compact JSON
// object {content, path, query} keyed by the consumer key.
func sign(consumerKey, path, rawQuery string, body []byte) (string, error) {
	content := json.RawMessage("null")
	if len(body) > 0 {
		content = body
	}
	msg, err := json.Marshal(signaturePayload{Content: content, Path: path, Query: rawQuery})
	if err != nil {
		return "", fmt.Errorf("failed to encode signature payload: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(consumerKey))
	mac.Write(msg)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

var _ adapter.BrokerageClient = (*SnapTradeClient)(nil)
