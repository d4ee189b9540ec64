package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/application/usecase/reward"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// StatsController serves reward totals.
type StatsController struct {
	getStatsUseCase *reward.GetStatsUseCase
}

func NewStatsController(getStatsUseCase *reward.GetStatsUseCase) *StatsController {
	return &StatsController{getStatsUseCase: getStatsUseCase}
}

// Get handles GET /stats requests.
func (c *StatsController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := c.getStatsUseCase.Execute(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StatsResponse{
		TotalSaved:    stats.TotalSaved.StringFixed(2),
		TotalInvested: stats.TotalInvested.StringFixed(2),
		TargetsBeaten: stats.TargetsBeaten,
		Investments:   stats.Investments,
		BestStreak:    stats.BestStreak,
		FirstInvested: stats.FirstInvested,
	})
}
