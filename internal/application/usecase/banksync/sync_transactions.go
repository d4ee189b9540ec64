// Package banksync pulls posted transactions from the bank provider.
package banksync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
)

// syncWindow is how far back each sync reads.
const syncWindow = 30 * 24 * time.Hour

// SyncTransactionsUseCase upserts provider transactions per bank connection.
type SyncTransactionsUseCase struct {
	connectionRepo  adapter.BankConnectionRepository
	transactionRepo adapter.TransactionRepository
	bank            adapter.BankClient
	userDelay       time.Duration
	now             func() time.Time
}

// NewSyncTransactionsUseCase creates a new SyncTransactionsUseCase instance.
// userDelay is waited between users during a full sync.
func NewSyncTransactionsUseCase(
	connectionRepo adapter.BankConnectionRepository,
	transactionRepo adapter.TransactionRepository,
	bank adapter.BankClient,
	userDelay time.Duration,
) *SyncTransactionsUseCase {
	return &SyncTransactionsUseCase{
		connectionRepo:  connectionRepo,
		transactionRepo: transactionRepo,
		bank:            bank,
		userDelay:       userDelay,
		now:             time.Now,
	}
}

// WithClock replaces the time source that anchors the sync window.
func (uc *SyncTransactionsUseCase) WithClock(now func() time.Time) *SyncTransactionsUseCase {
	uc.now = now
	return uc
}

// SyncAll syncs every connection, least recently synced first. Each
// connection succeeds or fails on its own.
func (uc *SyncTransactionsUseCase) SyncAll(ctx context.Context) (job.Result, error) {
	var total job.Result

	connections, err := uc.connectionRepo.FindAllForSync(ctx)
	if err != nil {
		return total, fmt.Errorf("failed to load bank connections: %w", err)
	}

	users := make([]uuid.UUID, 0)
	byUser := make(map[uuid.UUID][]*entity.BankConnection)
	for _, conn := range connections {
		if _, seen := byUser[conn.UserID]; !seen {
			users = append(users, conn.UserID)
		}
		byUser[conn.UserID] = append(byUser[conn.UserID], conn)
	}

	slog.Info("Starting transaction sync", "users", len(users), "connections", len(connections))

	for i, userID := range users {
		if i > 0 && uc.userDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(uc.userDelay):
			}
		}
		total.Merge(uc.syncConnections(ctx, byUser[userID]))
	}

	slog.Info("Transaction sync finished", total.LogAttrs()...)
	return total, nil
}

// SyncUser syncs all of one user's connections.
func (uc *SyncTransactionsUseCase) SyncUser(ctx context.Context, userID uuid.UUID) (job.Result, error) {
	connections, err := uc.connectionRepo.FindByUser(ctx, userID)
	if err != nil {
		return job.Result{}, fmt.Errorf("failed to load bank connections: %w", err)
	}
	if len(connections) == 0 {
		return job.Result{}, domainerror.NewOrderError(
			domainerror.ErrCodeBankNotConnected,
			"no bank account linked",
			domainerror.ErrBankNotConnected,
		)
	}
	return uc.syncConnections(ctx, connections), nil
}

func (uc *SyncTransactionsUseCase) syncConnections(ctx context.Context, connections []*entity.BankConnection) job.Result {
	var result job.Result
	for _, conn := range connections {
		logger := slog.With("user_id", conn.UserID, "connection_id", conn.ID)

		count, err := uc.syncConnection(ctx, conn)
		if err != nil {
			result.Failed++
			logger.Error("Transaction sync failed", "error", err)
			continue
		}
		result.Succeeded++
		logger.Info("Transactions synced", "count", count)
	}
	return result
}

// syncConnection marks the connection synced only when every step succeeded.
func (uc *SyncTransactionsUseCase) syncConnection(ctx context.Context, conn *entity.BankConnection) (int, error) {
	now := uc.now().UTC()

	records, err := uc.bank.GetTransactions(ctx, conn.AccessToken, now.Add(-syncWindow), now)
	if err != nil {
		return 0, domainerror.NewOrderError(domainerror.ErrCodeBankRequestFailed, "fetching transactions failed", err)
	}

	txs := make([]*entity.Transaction, 0, len(records))
	for _, r := range records {
		if r.Pending || r.ProviderTransactionID == "" {
			continue
		}
		txs = append(txs, entity.NewSyncedTransaction(
			conn.UserID,
			conn.ID,
			r.ProviderTransactionID,
			r.Amount,
			r.MerchantName,
			r.Categories,
			r.Date,
		))
	}

	count := 0
	if len(txs) > 0 {
		count, err = uc.transactionRepo.Upsert(ctx, txs)
		if err != nil {
			return 0, fmt.Errorf("failed to store transactions: %w", err)
		}
	}

	if err := uc.connectionRepo.MarkSynced(ctx, conn.ID, now); err != nil {
		return count, fmt.Errorf("failed to mark connection synced: %w", err)
	}
	return count, nil
}
