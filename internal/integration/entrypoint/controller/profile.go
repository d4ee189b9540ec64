package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/application/usecase/profile"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// ProfileController handles the investing profile endpoints.
type ProfileController struct {
	getUseCase        *profile.GetProfileUseCase
	updateUseCase     *profile.UpdateProfileUseCase
	onboardingUseCase *profile.CompleteOnboardingUseCase
}

// NewProfileController creates a new profile controller instance.
func NewProfileController(
	getUseCase *profile.GetProfileUseCase,
	updateUseCase *profile.UpdateProfileUseCase,
	onboardingUseCase *profile.CompleteOnboardingUseCase,
) *ProfileController {
	return &ProfileController{
		getUseCase:        getUseCase,
		updateUseCase:     updateUseCase,
		onboardingUseCase: onboardingUseCase,
	}
}

// Get handles GET /profile requests.
func (c *ProfileController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	p, err := c.getUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(p))
}

// Update handles PATCH /profile requests.
func (c *ProfileController) Update(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingProfileData),
		})
		return
	}

	p, err := c.updateUseCase.Execute(ctx.Request.Context(), profile.UpdateProfileInput{
		UserID:          userID,
		SelectedAsset:   req.SelectedAsset,
		MaxPerTrade:     req.MaxPerTrade,
		MaxPerMonth:     req.MaxPerMonth,
		InvestingPaused: req.InvestingPaused,
		PushToken:       req.PushToken,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(p))
}

// CompleteOnboarding handles POST /profile/complete-onboarding requests.
func (c *ProfileController) CompleteOnboarding(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	p, err := c.onboardingUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProfileResponse(p))
}
