package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owninstead/backend/internal/application/usecase/trade"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
)

// OrderController handles order history endpoints.
type OrderController struct {
	listUseCase *trade.ListOrdersUseCase
	getUseCase  *trade.GetOrderUseCase
}

// NewOrderController creates a new order controller instance.
func NewOrderController(listUseCase *trade.ListOrdersUseCase, getUseCase *trade.GetOrderUseCase) *OrderController {
	return &OrderController{
		listUseCase: listUseCase,
		getUseCase:  getUseCase,
	}
}

// List handles GET /orders requests.
func (c *OrderController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var query dto.ListOrdersQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid query parameters: " + err.Error(),
			Code:  string(domainerror.ErrCodeInvalidOrderStatus),
		})
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), trade.ListOrdersInput{
		UserID:   userID,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.OrderListResponse{
		Orders:   dto.ToOrderResponses(output.Orders),
		Total:    output.Total,
		Page:     output.Page,
		PageSize: output.PageSize,
	})
}

// Get handles GET /orders/:id requests.
func (c *OrderController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	orderID, ok := pathID(ctx, "id", "order")
	if !ok {
		return
	}

	order, err := c.getUseCase.Execute(ctx.Request.Context(), userID, orderID)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToOrderResponse(order))
}
