package brokerage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

const testConsumerKey = "consumer-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *SnapTradeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewSnapTradeClient(server.URL+"/api/v1", "client-id", testConsumerKey, time.Second).
		WithRetry(3, time.Millisecond)
	client.now = func() time.Time { return time.Unix(1718500000, 0) }
	return client
}

func testConnection() *entity.BrokerageConnection {
	return &entity.BrokerageConnection{
		BrokerageUserID:     "owninstead_u1",
		BrokerageUserSecret: "secret",
		AccountID:           "acct-1",
	}
}

func verifySignature(t *testing.T, r *http.Request, body []byte) {
	t.Helper()
	want, err := sign(testConsumerKey, r.URL.Path, r.URL.RawQuery, body)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := r.Header.Get("Signature"); got != want {
		t.Errorf("signature = %q, want %q", got, want)
	}
	q := r.URL.Query()
	if q.Get("clientId") != "client-id" || q.Get("userId") != "owninstead_u1" || q.Get("userSecret") != "secret" {
		t.Errorf("missing auth query params: %s", r.URL.RawQuery)
	}
	if q.Get("timestamp") != "1718500000" {
		t.Errorf("timestamp = %s", q.Get("timestamp"))
	}
}

func TestGetQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifySignature(t, r, nil)
		if r.URL.Path != "/api/v1/accounts/acct-1/quotes" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbols") != "VTI" || r.URL.Query().Get("use_ticker") != "true" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `[{"symbol":{"id":"sym-vti","symbol":"VTI"},"last_trade_price":252.40}]`)
	})

	quote, err := client.GetQuote(context.Background(), testConnection(), "VTI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.UniversalSymbolID != "sym-vti" || !quote.Price.Equal(decimal.RequireFromString("252.40")) {
		t.Errorf("unexpected quote %+v", quote)
	}
}

func TestGetQuoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[{"symbol":{"id":"sym-vti","symbol":"VTI"},"last_trade_price":"100"}]`)
	})

	quote, err := client.GetQuote(context.Background(), testConnection(), "VTI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if !quote.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("price = %s", quote.Price)
	}
}

func TestGetQuoteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"1076","detail":"Unable to verify signature"}`)
	})

	_, err := client.GetQuote(context.Background(), testConnection(), "VTI")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "1076" {
		t.Fatalf("expected APIError 401, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestPlaceMarketBuy(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/trade/place" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		verifySignature(t, r, body)

		var req map[string]interface{}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req["action"] != "BUY" || req["order_type"] != "Market" || req["time_in_force"] != "Day" {
			t.Errorf("unexpected order body %v", req)
		}
		if req["universal_symbol_id"] != "sym-vti" || req["account_id"] != "acct-1" {
			t.Errorf("unexpected order ids %v", req)
		}
		if units, ok := req["units"].(float64); !ok || units != 0.071315 {
			t.Errorf("units = %v", req["units"])
		}
		_, _ = io.WriteString(w, `{"brokerage_order_id":"brk-1","status":"PENDING"}`)
	})

	quote := &adapter.Quote{Symbol: "VTI", UniversalSymbolID: "sym-vti", Price: decimal.RequireFromString("252.40")}
	placed, err := client.PlaceMarketBuy(context.Background(), testConnection(), quote, decimal.RequireFromString("0.071315"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placed.BrokerageOrderID != "brk-1" || placed.Status != "PENDING" {
		t.Errorf("unexpected placed order %+v", placed)
	}
}

func TestPlaceMarketBuyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	quote := &adapter.Quote{Symbol: "VTI", UniversalSymbolID: "sym-vti", Price: decimal.NewFromInt(100)}
	if _, err := client.PlaceMarketBuy(context.Background(), testConnection(), quote, decimal.NewFromInt(1)); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGetOrderStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/acct-1/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[
			{"brokerage_order_id":"brk-0","status":"CANCELED"},
			{"brokerage_order_id":"brk-1","status":"executed","execution_price":252.1,"filled_quantity":0.0713}
		]`)
	})

	status, err := client.GetOrderStatus(context.Background(), testConnection(), "brk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.IsFilled() {
		t.Errorf("expected filled, got %+v", status)
	}
	if !status.FilledUnits.Valid || status.FilledUnits.Decimal.String() != "0.0713" {
		t.Errorf("filled units = %v", status.FilledUnits)
	}

	missing, err := client.GetOrderStatus(context.Background(), testConnection(), "brk-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing.Found {
		t.Error("expected unknown order to be not found")
	}
}

func TestSupportsNotional(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/acct-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":"acct-1","brokerage":{"name":"Alpaca","allows_fractional_units":true}}`)
	})

	ok, err := client.SupportsNotional(context.Background(), testConnection())
	if err != nil || !ok {
		t.Errorf("SupportsNotional = %v, %v", ok, err)
	}
}

func TestRequiresSelectedAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	conn := testConnection()
	conn.AccountID = ""
	if _, err := client.GetQuote(context.Background(), conn, "VTI"); !errors.Is(err, domainerror.ErrBrokerageNotConnected) {
		t.Errorf("expected ErrBrokerageNotConnected, got %v", err)
	}
}
