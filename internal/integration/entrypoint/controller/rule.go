package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/application/usecase/rule"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// RuleController handles rule endpoints.
type RuleController struct {
	listUseCase   *rule.ListRulesUseCase
	createUseCase *rule.CreateRuleUseCase
	getUseCase    *rule.GetRuleUseCase
	updateUseCase *rule.UpdateRuleUseCase
	deleteUseCase *rule.DeleteRuleUseCase
}

// NewRuleController creates a new rule controller instance.
func NewRuleController(
	listUseCase *rule.ListRulesUseCase,
	createUseCase *rule.CreateRuleUseCase,
	getUseCase *rule.GetRuleUseCase,
	updateUseCase *rule.UpdateRuleUseCase,
	deleteUseCase *rule.DeleteRuleUseCase,
) *RuleController {
	return &RuleController{
		listUseCase:   listUseCase,
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List handles GET /rules requests.
func (c *RuleController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRuleListResponse(output.Rules))
}

// Create handles POST /rules requests.
func (c *RuleController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingRuleFields),
		})
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), rule.CreateRuleInput{
		UserID:          userID,
		Name:            req.Name,
		Category:        req.Category,
		MerchantPattern: req.MerchantPattern,
		Period:          req.Period,
		TargetSpend:     req.TargetSpend,
		InvestType:      req.InvestType,
		InvestAmount:    req.InvestAmount,
		StreakEnabled:   req.StreakEnabled,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRuleResponse(output.Rule))
}

// Get handles GET /rules/:id requests.
func (c *RuleController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	ruleID, ok := pathID(ctx, "id", "rule")
	if !ok {
		return
	}

	r, err := c.getUseCase.Execute(ctx.Request.Context(), userID, ruleID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRuleResponse(r))
}

// Update handles PATCH /rules/:id requests.
func (c *RuleController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	ruleID, ok := pathID(ctx, "id", "rule")
	if !ok {
		return
	}

	var req dto.UpdateRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingRuleFields),
		})
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), rule.UpdateRuleInput{
		UserID:            userID,
		RuleID:            ruleID,
		Name:              req.Name,
		Category:          req.Category,
		MerchantPattern:   req.MerchantPattern,
		TargetSpend:       req.TargetSpend,
		InvestType:        req.InvestType,
		InvestAmount:      req.InvestAmount,
		ClearInvestAmount: req.ClearInvestAmount,
		StreakEnabled:     req.StreakEnabled,
		IsActive:          req.IsActive,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRuleResponse(output.Rule))
}

// Delete handles DELETE /rules/:id requests.
func (c *RuleController) Delete(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	ruleID, ok := pathID(ctx, "id", "rule")
	if !ok {
		return
	}

	if err := c.deleteUseCase.Execute(ctx.Request.Context(), userID, ruleID); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
