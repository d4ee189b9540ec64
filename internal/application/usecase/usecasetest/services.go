package usecasetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// Notification is one recorded Notify call.
type Notification struct {
	UserID uuid.UUID
	Kind   entity.NotificationKind
	Params map[string]interface{}
}

// Notifier records notifications instead of delivering them.
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *Notifier) Notify(_ context.Context, userID uuid.UUID, kind entity.NotificationKind, params map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{UserID: userID, Kind: kind, Params: params})
}

// Kinds returns the recorded kinds in order.
func (n *Notifier) Kinds() []entity.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]entity.NotificationKind, len(n.Sent))
	for i, s := range n.Sent {
		kinds[i] = s.Kind
	}
	return kinds
}

// Count returns how many notifications of kind were recorded.
func (n *Notifier) Count(kind entity.NotificationKind) int {
	count := 0
	for _, k := range n.Kinds() {
		if k == kind {
			count++
		}
	}
	return count
}

// RewardRecorder records reward events in memory.
type RewardRecorder struct {
	mu          sync.Mutex
	TargetsBeat []decimal.Decimal
	Streaks     []int
	Invested    []decimal.Decimal
	FirstFlags  []bool
	Err         error
}

func (r *RewardRecorder) OnTargetBeaten(_ context.Context, _ uuid.UUID, saved decimal.Decimal, streak int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TargetsBeat = append(r.TargetsBeat, saved)
	r.Streaks = append(r.Streaks, streak)
	return r.Err
}

func (r *RewardRecorder) OnInvestmentFilled(_ context.Context, _ uuid.UUID, amount decimal.Decimal, isFirst bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invested = append(r.Invested, amount)
	r.FirstFlags = append(r.FirstFlags, isFirst)
	return r.Err
}

func (r *RewardRecorder) Stats(_ context.Context, _ uuid.UUID) (*adapter.RewardStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &adapter.RewardStats{TotalSaved: decimal.Zero, TotalInvested: decimal.Zero}
	for _, s := range r.TargetsBeat {
		stats.TotalSaved = stats.TotalSaved.Add(s)
		stats.TargetsBeaten++
	}
	for _, s := range r.Streaks {
		if int64(s) > stats.BestStreak {
			stats.BestStreak = int64(s)
		}
	}
	for i, a := range r.Invested {
		stats.TotalInvested = stats.TotalInvested.Add(a)
		stats.Investments++
		if r.FirstFlags[i] {
			stats.FirstInvested = true
		}
	}
	return stats, r.Err
}

// BrokerageClient is a scriptable adapter.BrokerageClient.
type BrokerageClient struct {
	mu sync.Mutex

	Price      decimal.Decimal
	Notional   bool
	QuoteErr   error
	PlaceErr   error
	NotionErr  error
	Statuses   map[string]*adapter.BrokerageOrderStatus
	StatusErr  error
	Placed     []decimal.Decimal
	QuoteCalls int
}

// NewBrokerageClient returns a client quoting price with fractional support.
func NewBrokerageClient(price string) *BrokerageClient {
	return &BrokerageClient{
		Price:    decimal.RequireFromString(price),
		Notional: true,
		Statuses: make(map[string]*adapter.BrokerageOrderStatus),
	}
}

func (c *BrokerageClient) GetQuote(_ context.Context, _ *entity.BrokerageConnection, symbol string) (*adapter.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuoteCalls++
	if c.QuoteErr != nil {
		return nil, c.QuoteErr
	}
	return &adapter.Quote{Symbol: symbol, UniversalSymbolID: "usid-" + symbol, Price: c.Price}, nil
}

func (c *BrokerageClient) PlaceMarketBuy(_ context.Context, _ *entity.BrokerageConnection, _ *adapter.Quote, units decimal.Decimal) (*adapter.PlacedOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PlaceErr != nil {
		return nil, c.PlaceErr
	}
	c.Placed = append(c.Placed, units)
	return &adapter.PlacedOrder{BrokerageOrderID: fmt.Sprintf("brk-%d", len(c.Placed)), Status: "PENDING"}, nil
}

func (c *BrokerageClient) GetOrderStatus(_ context.Context, _ *entity.BrokerageConnection, id string) (*adapter.BrokerageOrderStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StatusErr != nil {
		return nil, c.StatusErr
	}
	if s, ok := c.Statuses[id]; ok {
		return s, nil
	}
	return &adapter.BrokerageOrderStatus{Found: false}, nil
}

func (c *BrokerageClient) SupportsNotional(_ context.Context, _ *entity.BrokerageConnection) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Notional, c.NotionErr
}

// BankClient returns canned transactions per access token.
type BankClient struct {
	mu           sync.Mutex
	Transactions map[string][]adapter.BankTransaction
	Errors       map[string]error
	Calls        []string
}

func NewBankClient() *BankClient {
	return &BankClient{
		Transactions: make(map[string][]adapter.BankTransaction),
		Errors:       make(map[string]error),
	}
}

func (c *BankClient) GetTransactions(_ context.Context, accessToken string, _, _ time.Time) ([]adapter.BankTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, accessToken)
	if err := c.Errors[accessToken]; err != nil {
		return nil, err
	}
	return c.Transactions[accessToken], nil
}

// PasswordService hashes by prefixing, for tests that do not need bcrypt.
type PasswordService struct{}

func (PasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (PasswordService) VerifyPassword(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func (PasswordService) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("too short")
	}
	return nil
}

// TokenService issues opaque tokens. A refresh token redeems once.
type TokenService struct {
	mu      sync.Mutex
	refresh map[string]*adapter.TokenClaims
	revoked map[string]bool
	issued  int
}

func NewTokenService() *TokenService {
	return &TokenService{
		refresh: make(map[string]*adapter.TokenClaims),
		revoked: make(map[string]bool),
	}
}

func (s *TokenService) GenerateTokenPair(_ context.Context, userID uuid.UUID, email string) (*adapter.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	refresh := fmt.Sprintf("refresh-%d", s.issued)
	s.refresh[refresh] = &adapter.TokenClaims{UserID: userID, Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	return &adapter.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", s.issued),
		RefreshToken: refresh,
		ExpiresIn:    15 * time.Minute,
	}, nil
}

func (s *TokenService) ValidateAccessToken(_ context.Context, _ string) (*adapter.TokenClaims, error) {
	return nil, errors.New("not supported")
}

func (s *TokenService) RedeemRefreshToken(_ context.Context, token string) (*adapter.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	claims, ok := s.refresh[token]
	if !ok || s.revoked[token] {
		return nil, fmt.Errorf("%w: unknown or spent token", domainerror.ErrInvalidToken)
	}
	s.revoked[token] = true
	return claims, nil
}

func (s *TokenService) RevokeRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
	return nil
}

var (
	_ adapter.Notifier        = (*Notifier)(nil)
	_ adapter.RewardRecorder  = (*RewardRecorder)(nil)
	_ adapter.BrokerageClient = (*BrokerageClient)(nil)
	_ adapter.BankClient      = (*BankClient)(nil)
	_ adapter.PasswordService = PasswordService{}
	_ adapter.TokenService    = (*TokenService)(nil)
)
