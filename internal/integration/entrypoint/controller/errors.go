package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/entrypoint/dto"
	"github.com/owninstead/backend/internal/integration/entrypoint/middleware"
)

// handleError maps typed domain errors to HTTP responses. Anything else is
// logged and reported as a generic 500.
func handleError(ctx *gin.Context, err error) {
	var (
		authErr  *domainerror.AuthError
		ruleErr  *domainerror.RuleError
		txErr    *domainerror.TransactionError
		profErr  *domainerror.ProfileError
		evalErr  *domainerror.EvaluationError
		orderErr *domainerror.OrderError
	)

	switch {
	case errors.As(err, &authErr):
		ctx.JSON(authStatus(authErr.Code), dto.ErrorResponse{Error: authErr.Message, Code: string(authErr.Code)})
	case errors.As(err, &ruleErr):
		ctx.JSON(ruleStatus(ruleErr.Code), dto.ErrorResponse{Error: ruleErr.Message, Code: string(ruleErr.Code)})
	case errors.As(err, &txErr):
		ctx.JSON(transactionStatus(txErr.Code), dto.ErrorResponse{Error: transactionMessage(txErr), Code: string(txErr.Code)})
	case errors.As(err, &profErr):
		ctx.JSON(profileStatus(profErr.Code), dto.ErrorResponse{Error: profErr.Message, Code: string(profErr.Code)})
	case errors.As(err, &evalErr):
		ctx.JSON(evaluationStatus(evalErr.Code), dto.ErrorResponse{Error: evalErr.Message, Code: string(evalErr.Code)})
	case errors.As(err, &orderErr):
		ctx.JSON(orderStatus(orderErr.Code), dto.ErrorResponse{Error: orderErr.Message, Code: string(orderErr.Code)})
	default:
		slog.Error("Unhandled request error", "path", ctx.FullPath(), "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
	}
}

func authStatus(code domainerror.AuthErrorCode) int {
	switch code {
	case domainerror.ErrCodeEmailExists:
		return http.StatusConflict
	case domainerror.ErrCodeWeakPassword,
		domainerror.ErrCodeInvalidEmail,
		domainerror.ErrCodeMissingFields:
		return http.StatusBadRequest
	case domainerror.ErrCodeInvalidCredentials,
		domainerror.ErrCodeUserNotFound,
		domainerror.ErrCodeInvalidToken,
		domainerror.ErrCodeExpiredToken,
		domainerror.ErrCodeMissingToken:
		return http.StatusUnauthorized
	case domainerror.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func ruleStatus(code domainerror.RuleErrorCode) int {
	if code == domainerror.ErrCodeRuleNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func transactionStatus(code domainerror.TransactionErrorCode) int {
	if code == domainerror.ErrCodeTransactionNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func transactionMessage(err *domainerror.TransactionError) string {
	if err.Field == "" {
		return err.Message
	}
	return "Invalid " + err.Field + ": " + err.Message
}

func profileStatus(code domainerror.ProfileErrorCode) int {
	if code == domainerror.ErrCodeProfileNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func evaluationStatus(code domainerror.EvaluationErrorCode) int {
	switch code {
	case domainerror.ErrCodeEvaluationNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidTransition, domainerror.ErrCodeAlreadyEvaluated:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func orderStatus(code domainerror.OrderErrorCode) int {
	switch code {
	case domainerror.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeInvalidOrderStatus:
		return http.StatusBadRequest
	case domainerror.ErrCodeOrderInFlight,
		domainerror.ErrCodeInvestingPaused,
		domainerror.ErrCodeMonthlyLimitReached,
		domainerror.ErrCodeBrokerageNotConnected,
		domainerror.ErrCodeBankNotConnected:
		return http.StatusConflict
	case domainerror.ErrCodeOrderTooSmall:
		return http.StatusUnprocessableEntity
	case domainerror.ErrCodeInvalidQuote,
		domainerror.ErrCodeBrokerageRequestFailed,
		domainerror.ErrCodeBankRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// currentUser reads the authenticated user, answering 401 when it is missing.
func currentUser(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
	}
	return userID, ok
}

// pathID parses a UUID path parameter, answering 400 when it is malformed.
func pathID(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + label + " ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}
