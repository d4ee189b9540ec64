package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/usecase/evaluation"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// EvaluationController handles the weekly evaluation review endpoints.
type EvaluationController struct {
	listUseCase    *evaluation.ListEvaluationsUseCase
	currentUseCase *evaluation.CurrentEvaluationsUseCase
	previewUseCase *evaluation.PreviewEvaluationUseCase
	confirmUseCase *evaluation.ConfirmEvaluationUseCase
	skipUseCase    *evaluation.SkipEvaluationUseCase
}

// NewEvaluationController creates a new evaluation controller instance.
func NewEvaluationController(
	listUseCase *evaluation.ListEvaluationsUseCase,
	currentUseCase *evaluation.CurrentEvaluationsUseCase,
	previewUseCase *evaluation.PreviewEvaluationUseCase,
	confirmUseCase *evaluation.ConfirmEvaluationUseCase,
	skipUseCase *evaluation.SkipEvaluationUseCase,
) *EvaluationController {
	return &EvaluationController{
		listUseCase:    listUseCase,
		currentUseCase: currentUseCase,
		previewUseCase: previewUseCase,
		confirmUseCase: confirmUseCase,
		skipUseCase:    skipUseCase,
	}
}

// List handles GET /evaluations requests.
func (c *EvaluationController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var query dto.ListEvaluationsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid query parameters: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidEvaluationStatus),
		})
		return
	}

	input := evaluation.ListEvaluationsInput{
		UserID:   userID,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.RuleID != "" {
		ruleID := uuid.MustParse(query.RuleID)
		input.RuleID = &ruleID
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.EvaluationListResponse{
		Evaluations: dto.ToEvaluationResponses(output.Evaluations),
		Total:       output.Total,
		Page:        output.Page,
		PageSize:    output.PageSize,
	})
}

// Current handles GET /evaluations/current requests.
func (c *EvaluationController) Current(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	evs, err := c.currentUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"evaluations": dto.ToEvaluationResponses(evs)})
}

// Preview handles GET /evaluations/preview requests.
func (c *EvaluationController) Preview(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	output, err := c.previewUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToPreviewResponse(output))
}

// Confirm handles POST /evaluations/:id/confirm requests. The body is optional.
func (c *EvaluationController) Confirm(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	evaluationID, ok := pathID(ctx, "id", "evaluation")
	if !ok {
		return
	}

	var req dto.ConfirmEvaluationRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid request body: " + err.Error(),
			})
			return
		}
	}

	excluded := make([]uuid.UUID, 0, len(req.ExcludedTransactionIDs))
	for _, raw := range req.ExcludedTransactionIDs {
		excluded = append(excluded, uuid.MustParse(raw))
	}

	ev, err := c.confirmUseCase.Execute(ctx.Request.Context(), evaluation.ConfirmEvaluationInput{
		UserID:                 userID,
		EvaluationID:           evaluationID,
		ExcludedTransactionIDs: excluded,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToEvaluationResponse(ev))
}

// Skip handles POST /evaluations/:id/skip requests.
func (c *EvaluationController) Skip(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	evaluationID, ok := pathID(ctx, "id", "evaluation")
	if !ok {
		return
	}

	ev, err := c.skipUseCase.Execute(ctx.Request.Context(), userID, evaluationID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToEvaluationResponse(ev))
}
