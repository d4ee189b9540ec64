package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/application/usecase/transaction"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	listUseCase        *transaction.ListTransactionsUseCase
	setExcludedUseCase *transaction.SetExcludedUseCase
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(
	listUseCase *transaction.ListTransactionsUseCase,
	setExcludedUseCase *transaction.SetExcludedUseCase,
) *TransactionController {
	return &TransactionController{
		listUseCase:        listUseCase,
		setExcludedUseCase: setExcludedUseCase,
	}
}

// List handles GET /transactions requests.
func (c *TransactionController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var query dto.ListTransactionsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid query parameters",
			Code:  string(domainerror.ErrCodeMissingTransactionFields),
		})
		return
	}

	input := transaction.ListTransactionsInput{
		UserID: userID,
		Page:   query.Page,
		Limit:  query.Limit,
	}

	var err error
	if input.StartDate, err = parseDate(query.StartDate); err != nil {
		invalidDate(ctx, "start_date")
		return
	}
	if input.EndDate, err = parseDate(query.EndDate); err != nil {
		invalidDate(ctx, "end_date")
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionListResponse(output))
}

// Update handles PATCH /transactions/:id requests. Only the excluded flag is
// editable.
func (c *TransactionController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	txID, ok := pathID(ctx, "id", "transaction")
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: excluded is required",
			Code:  string(domainerror.ErrCodeMissingTransactionFields),
		})
		return
	}

	output, err := c.setExcludedUseCase.Execute(ctx.Request.Context(), transaction.SetExcludedInput{
		UserID:        userID,
		TransactionID: txID,
		Excluded:      *req.Excluded,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTransactionResponse(output))
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func invalidDate(ctx *gin.Context, field string) {
	handleError(ctx, domainerror.InvalidTransactionDate(field, "expected YYYY-MM-DD"))
}
