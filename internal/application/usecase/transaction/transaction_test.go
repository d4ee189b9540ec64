package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	coffee := entity.NewSyncedTransaction(userID, uuid.New(), "p1", decimal.NewFromInt(6), "Starbucks #12", nil, day)
	coffee.Excluded = true
	dinner := entity.NewSyncedTransaction(userID, uuid.New(), "p2", decimal.NewFromInt(40), "Local Bistro", []string{"Food and Drink", "Restaurants"}, day.AddDate(0, 0, 1))
	other := entity.NewSyncedTransaction(uuid.New(), uuid.New(), "p3", decimal.NewFromInt(1), "Lyft", nil, day)

	repo := usecasetest.NewTransactionRepository(coffee, dinner, other)
	uc := NewListTransactionsUseCase(repo, service.NewClassifier())

	out, err := uc.Execute(ctx, ListTransactionsInput{UserID: userID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Pagination.Total != 2 || len(out.Transactions) != 2 {
		t.Fatalf("unexpected result %+v", out.Pagination)
	}

	byID := map[uuid.UUID]*TransactionOutput{}
	for _, tx := range out.Transactions {
		byID[tx.ID] = tx
	}
	if got := byID[coffee.ID]; got.Category != valueobject.CategoryCoffee || !got.Excluded {
		t.Errorf("excluded coffee shows %+v", got)
	}
	if got := byID[dinner.ID]; got.Category != valueobject.CategoryRestaurants {
		t.Errorf("dinner category = %q", got.Category)
	}

	start, end := day.AddDate(0, 0, 1), day
	_, err = uc.Execute(ctx, ListTransactionsInput{UserID: userID, StartDate: &start, EndDate: &end})
	var txErr *domainerror.TransactionError
	if !errors.As(err, &txErr) || !errors.Is(err, domainerror.ErrInvalidTransactionDate) {
		t.Fatalf("inverted range err = %v", err)
	}
	if txErr.Field != "end_date" || txErr.Code != domainerror.ErrCodeInvalidTransactionDate {
		t.Errorf("inverted range reported %+v", txErr)
	}
}

func TestSetExcluded(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tx := entity.NewSyncedTransaction(userID, uuid.New(), "p1", decimal.NewFromInt(6), "DoorDash", nil, time.Now())
	repo := usecasetest.NewTransactionRepository(tx)
	uc := NewSetExcludedUseCase(repo, service.NewClassifier())

	out, err := uc.Execute(ctx, SetExcludedInput{UserID: userID, TransactionID: tx.ID, Excluded: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Excluded || out.Category != valueobject.CategoryDelivery {
		t.Errorf("unexpected output %+v", out)
	}

	_, err = uc.Execute(ctx, SetExcludedInput{UserID: uuid.New(), TransactionID: tx.ID, Excluded: false})
	if !errors.Is(err, domainerror.ErrTransactionNotFound) {
		t.Errorf("other user's transaction err = %v", err)
	}
}
