package banksync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

var syncTime = time.Date(2024, 6, 20, 18, 0, 0, 0, time.UTC)

func bankTx(id, amount, merchant string, pending bool) adapter.BankTransaction {
	return adapter.BankTransaction{
		ProviderTransactionID: id,
		Amount:                decimal.RequireFromString(amount),
		MerchantName:          merchant,
		Categories:            []string{"Food and Drink", "Coffee Shop"},
		Date:                  time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
		Pending:               pending,
	}
}

func TestSyncAll(t *testing.T) {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	synced := syncTime.Add(-12 * time.Hour)

	aliceOld := entity.NewBankConnection(alice, "item-a1", "token-a1", "Chase")
	aliceOld.LastSyncedAt = &synced
	aliceNew := entity.NewBankConnection(alice, "item-a2", "token-a2", "Amex")
	bobConn := entity.NewBankConnection(bob, "item-b", "token-b", "Chase")

	connections := usecasetest.NewBankConnectionRepository(aliceOld, bobConn, aliceNew)
	txs := usecasetest.NewTransactionRepository()
	bank := usecasetest.NewBankClient()
	bank.Transactions["token-a1"] = []adapter.BankTransaction{
		bankTx("p1", "-4.50", "Starbucks", false),
		bankTx("p2", "12.00", "Blue Bottle", true),
	}
	bank.Transactions["token-a2"] = []adapter.BankTransaction{bankTx("p3", "30", "DoorDash", false)}
	bank.Errors["token-b"] = errors.New("ITEM_LOGIN_REQUIRED")

	uc := NewSyncTransactionsUseCase(connections, txs, bank, time.Millisecond).
		WithClock(func() time.Time { return syncTime })

	total, err := uc.SyncAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Succeeded != 2 || total.Failed != 1 {
		t.Errorf("totals = %+v", total)
	}

	// Never-synced connections go first and a user's connections stay together.
	want := []string{"token-b", "token-a2", "token-a1"}
	if len(bank.Calls) != len(want) {
		t.Fatalf("calls = %v", bank.Calls)
	}
	for i := range want {
		if bank.Calls[i] != want[i] {
			t.Errorf("calls = %v, want %v", bank.Calls, want)
			break
		}
	}

	stored, _ := txs.FindByDateRange(ctx, alice, syncTime.AddDate(0, 0, -30), syncTime)
	if len(stored) != 2 {
		t.Fatalf("stored = %d, want 2 (pending rows are skipped)", len(stored))
	}
	for _, tx := range stored {
		if tx.Amount.IsNegative() {
			t.Errorf("amount %s should be a magnitude", tx.Amount)
		}
	}

	for _, c := range connections.Connections {
		switch c.ID {
		case bobConn.ID:
			if c.LastSyncedAt != nil {
				t.Error("failed connection must not be marked synced")
			}
		default:
			if c.LastSyncedAt == nil || !c.LastSyncedAt.Equal(syncTime) {
				t.Errorf("connection %s last synced = %v", c.ItemID, c.LastSyncedAt)
			}
		}
	}
}

func TestSyncUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	conn := entity.NewBankConnection(userID, "item", "token", "Chase")
	connections := usecasetest.NewBankConnectionRepository(conn)
	txs := usecasetest.NewTransactionRepository()
	bank := usecasetest.NewBankClient()
	bank.Transactions["token"] = []adapter.BankTransaction{bankTx("p1", "4.50", "Starbucks", false)}

	uc := NewSyncTransactionsUseCase(connections, txs, bank, 0).WithClock(func() time.Time { return syncTime })

	if _, err := uc.SyncUser(ctx, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-syncing keeps the user's exclusion.
	stored, _ := txs.FindByDateRange(ctx, userID, syncTime.AddDate(0, 0, -30), syncTime)
	if err := txs.SetExcluded(ctx, stored[0].ID, userID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bank.Transactions["token"][0].Amount = decimal.RequireFromString("5.25")
	if _, err := uc.SyncUser(ctx, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := txs.FindByID(ctx, stored[0].ID)
	if !got.Excluded || !got.Amount.Equal(decimal.RequireFromString("5.25")) {
		t.Errorf("resynced tx = %+v", got)
	}

	if _, err := uc.SyncUser(ctx, uuid.New()); !errors.Is(err, domainerror.ErrBankNotConnected) {
		t.Errorf("no connection err = %v", err)
	}
}

func TestSyncAll_UpsertFailureKeepsConnectionDue(t *testing.T) {
	ctx := context.Background()
	conn := entity.NewBankConnection(uuid.New(), "item", "token", "Chase")
	connections := usecasetest.NewBankConnectionRepository(conn)
	txs := usecasetest.NewTransactionRepository()
	txs.UpsertErr = errors.New("database is locked")
	bank := usecasetest.NewBankClient()
	bank.Transactions["token"] = []adapter.BankTransaction{bankTx("p1", "4.50", "Starbucks", false)}

	total, err := NewSyncTransactionsUseCase(connections, txs, bank, 0).SyncAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Failed != 1 || connections.Connections[0].LastSyncedAt != nil {
		t.Errorf("totals = %+v last synced = %v", total, connections.Connections[0].LastSyncedAt)
	}
}

func TestSyncAll_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	connections := usecasetest.NewBankConnectionRepository(
		entity.NewBankConnection(uuid.New(), "a", "token-a", "Chase"),
		entity.NewBankConnection(uuid.New(), "b", "token-b", "Chase"),
	)
	bank := usecasetest.NewBankClient()
	uc := NewSyncTransactionsUseCase(connections, usecasetest.NewTransactionRepository(), bank, time.Hour)

	cancel()
	if _, err := uc.SyncAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(bank.Calls) != 1 {
		t.Errorf("calls = %v, want only the first user", bank.Calls)
	}
}
