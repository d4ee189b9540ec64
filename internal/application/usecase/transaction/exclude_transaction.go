package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/adapter"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/service"
)

// SetExcludedInput toggles whether a transaction counts toward rules.
type SetExcludedInput struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Excluded      bool
}

// SetExcludedUseCase updates the only user-editable transaction field.
type SetExcludedUseCase struct {
	transactionRepo adapter.TransactionRepository
	classifier      *service.Classifier
}

// NewSetExcludedUseCase creates a new SetExcludedUseCase instance.
func NewSetExcludedUseCase(transactionRepo adapter.TransactionRepository, classifier *service.Classifier) *SetExcludedUseCase {
	return &SetExcludedUseCase{
		transactionRepo: transactionRepo,
		classifier:      classifier,
	}
}

// Execute sets the flag. Evaluations already created are not recomputed.
func (uc *SetExcludedUseCase) Execute(ctx context.Context, input SetExcludedInput) (*TransactionOutput, error) {
	if err := uc.transactionRepo.SetExcluded(ctx, input.TransactionID, input.UserID, input.Excluded); err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, domainerror.TransactionNotFound()
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	tx, err := uc.transactionRepo.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}

	return &TransactionOutput{
		ID:               tx.ID,
		Date:             tx.Date,
		MerchantName:     tx.MerchantName,
		Amount:           tx.Amount,
		ProviderCategory: tx.ProviderCategory,
		Category:         classifyIgnoringExclusion(uc.classifier, tx),
		Excluded:         tx.Excluded,
	}, nil
}
