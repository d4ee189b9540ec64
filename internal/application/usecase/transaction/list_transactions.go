// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// ListTransactionsInput represents the input for listing transactions.
type ListTransactionsInput struct {
	UserID    uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// TransactionOutput represents a single transaction with its classification.
type TransactionOutput struct {
	ID               uuid.UUID
	Date             time.Time
	MerchantName     string
	Amount           decimal.Decimal
	ProviderCategory []string
	Category         valueobject.Category
	Excluded         bool
}

// PaginationOutput represents pagination information in the output.
type PaginationOutput struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// ListTransactionsOutput represents the output of listing transactions.
type ListTransactionsOutput struct {
	Transactions []*TransactionOutput
	Pagination   PaginationOutput
}

// ListTransactionsUseCase handles listing transactions logic.
type ListTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
	classifier      *service.Classifier
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(transactionRepo adapter.TransactionRepository, classifier *service.Classifier) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		transactionRepo: transactionRepo,
		classifier:      classifier,
	}
}

// Execute performs the transaction listing.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, domainerror.InvalidTransactionDate("end_date", "must not be before start_date")
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	result, err := uc.transactionRepo.FindByFilter(ctx,
		adapter.TransactionFilter{
			UserID:    input.UserID,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
		},
		adapter.TransactionPagination{Page: page, Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	output := &ListTransactionsOutput{
		Transactions: make([]*TransactionOutput, len(result.Transactions)),
		Pagination: PaginationOutput{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}
	for i, tx := range result.Transactions {
		output.Transactions[i] = uc.toOutput(tx)
	}
	return output, nil
}

func (uc *ListTransactionsUseCase) toOutput(tx *entity.Transaction) *TransactionOutput {
	return &TransactionOutput{
		ID:               tx.ID,
		Date:             tx.Date,
		MerchantName:     tx.MerchantName,
		Amount:           tx.Amount,
		ProviderCategory: tx.ProviderCategory,
		Category:         classifyIgnoringExclusion(uc.classifier, tx),
		Excluded:         tx.Excluded,
	}
}

// classifyIgnoringExclusion shows the category a transaction would count toward
// even while the user has excluded it.
func classifyIgnoringExclusion(c *service.Classifier, tx *entity.Transaction) valueobject.Category {
	cp := *tx
	cp.Excluded = false
	return c.Classify(&cp)
}
