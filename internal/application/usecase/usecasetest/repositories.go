// Package usecasetest provides in-memory fakes of the adapter interfaces for
// use case tests.
package usecasetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// UserRepository is an in-memory adapter.UserRepository.
type UserRepository struct {
	mu    sync.Mutex
	Users map[uuid.UUID]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{Users: make(map[uuid.UUID]*entity.User)}
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.Users[user.ID] = &cp
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, domainerror.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

// ProfileRepository is an in-memory adapter.ProfileRepository.
type ProfileRepository struct {
	mu       sync.Mutex
	Profiles map[uuid.UUID]*entity.Profile
}

func NewProfileRepository(profiles ...*entity.Profile) *ProfileRepository {
	r := &ProfileRepository{Profiles: make(map[uuid.UUID]*entity.Profile)}
	for _, p := range profiles {
		r.Profiles[p.UserID] = p
	}
	return r
}

func (r *ProfileRepository) Create(_ context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.Profiles[profile.UserID] = &cp
	return nil
}

func (r *ProfileRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Profiles[userID]
	if !ok {
		return nil, domainerror.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProfileRepository) Update(_ context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Profiles[profile.UserID]; !ok {
		return domainerror.ErrProfileNotFound
	}
	cp := *profile
	r.Profiles[profile.UserID] = &cp
	return nil
}

func (r *ProfileRepository) FindOnboarded(_ context.Context) ([]*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Profile
	for _, p := range r.Profiles {
		if p.OnboardingCompleted {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (r *ProfileRepository) ClearPushToken(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Profiles[userID]; ok && p.PushToken == token {
		p.PushToken = ""
	}
	return nil
}

func (r *ProfileRepository) MarkFirstTrade(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Profiles[userID]
	if !ok || p.FirstTradeAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	p.FirstTradeAt = &now
	return true, nil
}

// RuleRepository is an in-memory adapter.RuleRepository.
type RuleRepository struct {
	mu    sync.Mutex
	Rules map[uuid.UUID]*entity.Rule
}

func NewRuleRepository(rules ...*entity.Rule) *RuleRepository {
	r := &RuleRepository{Rules: make(map[uuid.UUID]*entity.Rule)}
	for _, rule := range rules {
		r.Rules[rule.ID] = rule
	}
	return r
}

func (r *RuleRepository) Create(_ context.Context, rule *entity.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	r.Rules[rule.ID] = &cp
	return nil
}

func (r *RuleRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.Rules[id]
	if !ok {
		return nil, domainerror.ErrRuleNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *RuleRepository) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.Rule, error) {
	return r.filter(func(rule *entity.Rule) bool { return rule.UserID == userID }), nil
}

func (r *RuleRepository) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*entity.Rule, error) {
	return r.filter(func(rule *entity.Rule) bool { return rule.UserID == userID && rule.IsActive }), nil
}

func (r *RuleRepository) filter(keep func(*entity.Rule) bool) []*entity.Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Rule
	for _, rule := range r.Rules {
		if keep(rule) {
			cp := *rule
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *RuleRepository) Update(_ context.Context, rule *entity.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	r.Rules[rule.ID] = &cp
	return nil
}

func (r *RuleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Rules[id]; !ok {
		return domainerror.ErrRuleNotFound
	}
	delete(r.Rules, id)
	return nil
}

// TransactionRepository is an in-memory adapter.TransactionRepository.
type TransactionRepository struct {
	mu           sync.Mutex
	Transactions map[uuid.UUID]*entity.Transaction
	UpsertErr    error
}

func NewTransactionRepository(txs ...*entity.Transaction) *TransactionRepository {
	r := &TransactionRepository{Transactions: make(map[uuid.UUID]*entity.Transaction)}
	for _, tx := range txs {
		r.Transactions[tx.ID] = tx
	}
	return r
}

func (r *TransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.Transactions[id]
	if !ok {
		return nil, domainerror.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *TransactionRepository) FindByDateRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*entity.Transaction, error) {
	start, end = valueobject.StartOfDay(start), valueobject.StartOfDay(end)
	return r.filter(func(tx *entity.Transaction) bool {
		d := valueobject.StartOfDay(tx.Date)
		return tx.UserID == userID && !d.Before(start) && !d.After(end)
	}), nil
}

func (r *TransactionRepository) FindByFilter(
	_ context.Context,
	filter adapter.TransactionFilter,
	pagination adapter.TransactionPagination,
) (*adapter.TransactionListResult, error) {
	all := r.filter(func(tx *entity.Transaction) bool {
		if tx.UserID != filter.UserID {
			return false
		}
		if filter.StartDate != nil && tx.Date.Before(valueobject.StartOfDay(*filter.StartDate)) {
			return false
		}
		if filter.EndDate != nil && tx.Date.After(valueobject.StartOfDay(*filter.EndDate)) {
			return false
		}
		return true
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	page, limit := pagination.Page, pagination.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	total := int64(len(all))
	return &adapter.TransactionListResult{
		Transactions: all[start:end],
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (r *TransactionRepository) filter(keep func(*entity.Transaction) bool) []*entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range r.Transactions {
		if keep(tx) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *TransactionRepository) SetExcluded(_ context.Context, id, userID uuid.UUID, excluded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.Transactions[id]
	if !ok || tx.UserID != userID {
		return domainerror.ErrTransactionNotFound
	}
	tx.Excluded = excluded
	return nil
}

func (r *TransactionRepository) ExcludeMany(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if tx, ok := r.Transactions[id]; ok && tx.UserID == userID {
			tx.Excluded = true
			n++
		}
	}
	return n, nil
}

func (r *TransactionRepository) Upsert(_ context.Context, txs []*entity.Transaction) (int, error) {
	if r.UpsertErr != nil {
		return 0, r.UpsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range txs {
		var existing *entity.Transaction
		for _, stored := range r.Transactions {
			if stored.ProviderTransactionID == tx.ProviderTransactionID {
				existing = stored
				break
			}
		}
		if existing != nil {
			existing.Amount = tx.Amount
			existing.MerchantName = tx.MerchantName
			existing.ProviderCategory = tx.ProviderCategory
			existing.Date = tx.Date
			continue
		}
		cp := *tx
		r.Transactions[tx.ID] = &cp
	}
	return len(txs), nil
}

// EvaluationRepository is an in-memory adapter.EvaluationRepository with the
// same uniqueness and compare-and-swap semantics as the database.
type EvaluationRepository struct {
	mu          sync.Mutex
	Evaluations map[uuid.UUID]*entity.Evaluation
}

func NewEvaluationRepository(evals ...*entity.Evaluation) *EvaluationRepository {
	r := &EvaluationRepository{Evaluations: make(map[uuid.UUID]*entity.Evaluation)}
	for _, ev := range evals {
		r.Evaluations[ev.ID] = ev
	}
	return r
}

func (r *EvaluationRepository) CreateIfAbsent(_ context.Context, ev *entity.Evaluation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.Evaluations {
		if stored.RuleID == ev.RuleID && stored.PeriodStart.Equal(ev.PeriodStart) {
			return false, nil
		}
	}
	cp := *ev
	r.Evaluations[ev.ID] = &cp
	return true, nil
}

func (r *EvaluationRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.Evaluations[id]
	if !ok {
		return nil, domainerror.ErrEvaluationNotFound
	}
	cp := *ev
	return &cp, nil
}

func (r *EvaluationRepository) FindByFilter(
	_ context.Context,
	filter adapter.EvaluationFilter,
	pagination adapter.Pagination,
) (*adapter.EvaluationListResult, error) {
	all := r.filter(func(ev *entity.Evaluation) bool {
		if ev.UserID != filter.UserID {
			return false
		}
		if filter.RuleID != nil && ev.RuleID != *filter.RuleID {
			return false
		}
		return filter.Status == nil || ev.Status == *filter.Status
	})
	start := pagination.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + pagination.PageSize
	if end > len(all) {
		end = len(all)
	}
	return &adapter.EvaluationListResult{
		Evaluations: all[start:end],
		Total:       int64(len(all)),
		Page:        pagination.Page,
		PageSize:    pagination.PageSize,
	}, nil
}

func (r *EvaluationRepository) FindLatestByRule(_ context.Context, ruleID uuid.UUID) (*entity.Evaluation, error) {
	all := r.filter(func(ev *entity.Evaluation) bool { return ev.RuleID == ruleID })
	if len(all) == 0 {
		return nil, domainerror.ErrEvaluationNotFound
	}
	return all[0], nil
}

func (r *EvaluationRepository) FindPendingByUser(_ context.Context, userID uuid.UUID) ([]*entity.Evaluation, error) {
	return r.filter(func(ev *entity.Evaluation) bool {
		return ev.UserID == userID && ev.Status == entity.EvaluationStatusPending
	}), nil
}

func (r *EvaluationRepository) FindConfirmedWithInvest(_ context.Context) ([]*entity.Evaluation, error) {
	return r.filter(func(ev *entity.Evaluation) bool {
		return ev.Status == entity.EvaluationStatusConfirmed && ev.FinalInvest.IsPositive()
	}), nil
}

func (r *EvaluationRepository) SumOpenSince(_ context.Context, userID uuid.UUID, since time.Time, except uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ev := range r.filter(func(ev *entity.Evaluation) bool {
		open := ev.Status == entity.EvaluationStatusPending || ev.Status == entity.EvaluationStatusConfirmed
		return ev.UserID == userID && ev.ID != except && open && !ev.CreatedAt.Before(since)
	}) {
		total = total.Add(ev.FinalInvest)
	}
	return total, nil
}

// filter returns matching copies, newest period first.
func (r *EvaluationRepository) filter(keep func(*entity.Evaluation) bool) []*entity.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Evaluation
	for _, ev := range r.Evaluations {
		if keep(ev) {
			cp := *ev
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.After(out[j].PeriodStart) })
	return out
}

func (r *EvaluationRepository) Transition(_ context.Context, ev *entity.Evaluation, from entity.EvaluationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.Evaluations[ev.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	cp := *ev
	r.Evaluations[ev.ID] = &cp
	return true, nil
}

// Get returns the stored evaluation without copying.
func (r *EvaluationRepository) Get(id uuid.UUID) *entity.Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Evaluations[id]
}

// All returns every stored evaluation.
func (r *EvaluationRepository) All() []*entity.Evaluation {
	return r.filter(func(*entity.Evaluation) bool { return true })
}

// OrderRepository is an in-memory adapter.OrderRepository. Like the orders
// table, it holds at most one non-failed order per evaluation.
type OrderRepository struct {
	mu     sync.Mutex
	Orders map[uuid.UUID]*entity.Order
}

func NewOrderRepository(orders ...*entity.Order) *OrderRepository {
	r := &OrderRepository{Orders: make(map[uuid.UUID]*entity.Order)}
	for _, o := range orders {
		r.Orders[o.ID] = o
	}
	return r
}

func (r *OrderRepository) Create(_ context.Context, order *entity.Order) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.Orders {
		if stored.EvaluationID == order.EvaluationID && stored.Blocks() {
			return false, nil
		}
	}
	cp := *order
	r.Orders[order.ID] = &cp
	return true, nil
}

func (r *OrderRepository) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Orders[order.ID]; !ok {
		return domainerror.ErrOrderNotFound
	}
	cp := *order
	r.Orders[order.ID] = &cp
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.Orders[id]
	if !ok {
		return nil, domainerror.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *OrderRepository) FindByFilter(_ context.Context, filter adapter.OrderFilter, pagination adapter.Pagination) (*adapter.OrderListResult, error) {
	all := r.filter(func(o *entity.Order) bool {
		return o.UserID == filter.UserID && (filter.Status == nil || o.Status == *filter.Status)
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := pagination.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + pagination.PageSize
	if end > len(all) {
		end = len(all)
	}
	return &adapter.OrderListResult{
		Orders:   all[start:end],
		Total:    int64(len(all)),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

func (r *OrderRepository) FindByEvaluation(_ context.Context, evaluationID uuid.UUID) ([]*entity.Order, error) {
	return r.filter(func(o *entity.Order) bool { return o.EvaluationID == evaluationID }), nil
}

func (r *OrderRepository) FindByStatus(_ context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	return r.filter(func(o *entity.Order) bool { return o.Status == status }), nil
}

func (r *OrderRepository) SumCommittedSince(_ context.Context, userID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range r.filter(func(o *entity.Order) bool {
		return o.UserID == userID && o.Status != entity.OrderStatusFailed && !o.CreatedAt.Before(since)
	}) {
		total = total.Add(o.AmountDollars)
	}
	return total, nil
}

func (r *OrderRepository) filter(keep func(*entity.Order) bool) []*entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.Orders {
		if keep(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// All returns every stored order, oldest first.
func (r *OrderRepository) All() []*entity.Order {
	return r.filter(func(*entity.Order) bool { return true })
}

// BankConnectionRepository is an in-memory adapter.BankConnectionRepository.
type BankConnectionRepository struct {
	mu          sync.Mutex
	Connections []*entity.BankConnection
}

func NewBankConnectionRepository(conns ...*entity.BankConnection) *BankConnectionRepository {
	return &BankConnectionRepository{Connections: conns}
}

func (r *BankConnectionRepository) Create(_ context.Context, c *entity.BankConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Connections = append(r.Connections, c)
	return nil
}

func (r *BankConnectionRepository) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.BankConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BankConnection
	for _, c := range r.Connections {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *BankConnectionRepository) FindAllForSync(_ context.Context) ([]*entity.BankConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.BankConnection, 0, len(r.Connections))
	for _, c := range r.Connections {
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastSyncedAt, out[j].LastSyncedAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (r *BankConnectionRepository) MarkSynced(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Connections {
		if c.ID == id {
			t := at
			c.LastSyncedAt = &t
		}
	}
	return nil
}

// BrokerageConnectionRepository is an in-memory adapter.BrokerageConnectionRepository.
type BrokerageConnectionRepository struct {
	mu          sync.Mutex
	Connections map[uuid.UUID]*entity.BrokerageConnection
}

func NewBrokerageConnectionRepository(conns ...*entity.BrokerageConnection) *BrokerageConnectionRepository {
	r := &BrokerageConnectionRepository{Connections: make(map[uuid.UUID]*entity.BrokerageConnection)}
	for _, c := range conns {
		r.Connections[c.UserID] = c
	}
	return r
}

func (r *BrokerageConnectionRepository) Create(_ context.Context, c *entity.BrokerageConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Connections[c.UserID] = c
	return nil
}

func (r *BrokerageConnectionRepository) FindByUser(_ context.Context, userID uuid.UUID) (*entity.BrokerageConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Connections[userID]
	if !ok {
		return nil, domainerror.ErrBrokerageNotConnected
	}
	cp := *c
	return &cp, nil
}

var (
	_ adapter.UserRepository                = (*UserRepository)(nil)
	_ adapter.ProfileRepository             = (*ProfileRepository)(nil)
	_ adapter.RuleRepository                = (*RuleRepository)(nil)
	_ adapter.TransactionRepository         = (*TransactionRepository)(nil)
	_ adapter.EvaluationRepository          = (*EvaluationRepository)(nil)
	_ adapter.OrderRepository               = (*OrderRepository)(nil)
	_ adapter.BankConnectionRepository      = (*BankConnectionRepository)(nil)
	_ adapter.BrokerageConnectionRepository = (*BrokerageConnectionRepository)(nil)
)
