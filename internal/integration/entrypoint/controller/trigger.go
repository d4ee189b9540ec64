package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/owninstead/backend/internal/application/job"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// ExecutionChecker rejects a trade trigger before dispatch when the evaluation
// is not the user's or is not confirmed.
type ExecutionChecker interface {
	CheckExecutable(ctx context.Context, userID, evaluationID uuid.UUID) error
}

// TriggerController lets a user run their own evaluation, trade or sync job
// without waiting for the schedule.
type TriggerController struct {
	dispatcher  job.Dispatcher
	evaluations ExecutionChecker
}

// NewTriggerController creates a new trigger controller instance.
func NewTriggerController(dispatcher job.Dispatcher, evaluations ExecutionChecker) *TriggerController {
	return &TriggerController{
		dispatcher:  dispatcher,
		evaluations: evaluations,
	}
}

// Evaluate handles POST /triggers/evaluate requests.
func (c *TriggerController) Evaluate(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.dispatch(ctx, job.NewTask(job.KindWeeklyEvaluation, userID))
}

// Execute handles POST /triggers/evaluations/:id/execute requests.
func (c *TriggerController) Execute(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	evaluationID, ok := pathID(ctx, "id", "evaluation")
	if !ok {
		return
	}

	if err := c.evaluations.CheckExecutable(ctx.Request.Context(), userID, evaluationID); err != nil {
		handleError(ctx, err)
		return
	}
	c.dispatch(ctx, job.NewTask(job.KindTradeExecution, evaluationID))
}

// Sync handles POST /triggers/sync requests.
func (c *TriggerController) Sync(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.dispatch(ctx, job.NewTask(job.KindTransactionSync, userID))
}

// dispatch answers 200 when the task already ran and 202 when it was queued.
// An inline task that was skipped or failed answers with its typed error.
func (c *TriggerController) dispatch(ctx *gin.Context, task job.Task) {
	if err := c.dispatcher.Dispatch(ctx.Request.Context(), task); err != nil {
		handleError(ctx, err)
		return
	}

	response := dto.TriggerResponse{
		Job:    string(task.Kind),
		Status: dto.TriggerStatusCompleted,
		TaskID: task.ID.String(),
	}
	status := http.StatusOK
	if c.dispatcher.Mode() == job.ModeQueued {
		response.Status = dto.TriggerStatusQueued
		status = http.StatusAccepted
	}
	ctx.JSON(status, response)
}
