package dto

import (
	"time"

	"github.com/owninstead/backend/internal/application/usecase/transaction"
)

// ListTransactionsQuery represents the query string of GET /transactions.
type ListTransactionsQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// UpdateTransactionRequest represents the request body for PATCH /transactions/:id.
type UpdateTransactionRequest struct {
	Excluded *bool `json:"excluded" binding:"required"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID               string   `json:"id"`
	Date             string   `json:"date"`
	MerchantName     string   `json:"merchant_name"`
	Amount           string   `json:"amount"`
	ProviderCategory []string `json:"provider_category"`
	Category         string   `json:"category,omitempty"`
	Excluded         bool     `json:"excluded"`
}

// PaginationResponse represents pagination information in API responses.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationResponse    `json:"pagination"`
}

// ToTransactionResponse converts a transaction output to a TransactionResponse DTO.
func ToTransactionResponse(tx *transaction.TransactionOutput) TransactionResponse {
	labels := tx.ProviderCategory
	if labels == nil {
		labels = []string{}
	}
	return TransactionResponse{
		ID:               tx.ID.String(),
		Date:             tx.Date.Format(time.DateOnly),
		MerchantName:     tx.MerchantName,
		Amount:           tx.Amount.StringFixed(2),
		ProviderCategory: labels,
		Category:         tx.Category.String(),
		Excluded:         tx.Excluded,
	}
}

// ToTransactionListResponse converts the list output to a TransactionListResponse DTO.
func ToTransactionListResponse(output *transaction.ListTransactionsOutput) TransactionListResponse {
	txs := make([]TransactionResponse, len(output.Transactions))
	for i, tx := range output.Transactions {
		txs[i] = ToTransactionResponse(tx)
	}
	return TransactionListResponse{
		Transactions: txs,
		Pagination: PaginationResponse{
			Page:       output.Pagination.Page,
			Limit:      output.Pagination.Limit,
			Total:      output.Pagination.Total,
			TotalPages: output.Pagination.TotalPages,
		},
	}
}
