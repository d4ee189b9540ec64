package dto

import (
	"time"

	"github.com/owninstead/backend/internal/application/usecase/evaluation"
	"github.com/owninstead/backend/internal/domain/entity"
)

// ListEvaluationsQuery represents the query string of GET /evaluations.
type ListEvaluationsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed skipped executed"`
	RuleID   string `form:"rule_id" binding:"omitempty,uuid"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ConfirmEvaluationRequest represents the request body for confirming an evaluation.
type ConfirmEvaluationRequest struct {
	ExcludedTransactionIDs []string `json:"excluded_transaction_ids" binding:"omitempty,dive,uuid"`
}

// EvaluationResponse represents a single evaluation in API responses.
type EvaluationResponse struct {
	ID                    string     `json:"id"`
	RuleID                string     `json:"rule_id"`
	PeriodStart           string     `json:"period_start"`
	PeriodEnd             string     `json:"period_end"`
	ActualSpend           string     `json:"actual_spend"`
	TargetSpend           string     `json:"target_spend"`
	CalculatedInvest      string     `json:"calculated_invest"`
	FinalInvest           string     `json:"final_invest"`
	StreakCount           int        `json:"streak_count"`
	MatchedTransactionIDs []string   `json:"matched_transaction_ids"`
	Status                string     `json:"status"`
	ConfirmedAt           *time.Time `json:"confirmed_at,omitempty"`
	SkippedAt             *time.Time `json:"skipped_at,omitempty"`
	ExecutedAt            *time.Time `json:"executed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// EvaluationListResponse represents the response for listing evaluations.
type EvaluationListResponse struct {
	Evaluations []EvaluationResponse `json:"evaluations"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// RulePreviewResponse is the running outcome of one rule for the current week.
type RulePreviewResponse struct {
	RuleID           string `json:"rule_id"`
	RuleName         string `json:"rule_name"`
	Category         string `json:"category"`
	ActualSpend      string `json:"actual_spend"`
	TargetSpend      string `json:"target_spend"`
	CalculatedInvest string `json:"calculated_invest"`
	StreakCount      int    `json:"streak_count"`
	TargetBeaten     bool   `json:"target_beaten"`
}

// PreviewResponse represents the current-week preview.
type PreviewResponse struct {
	PeriodStart string                `json:"period_start"`
	PeriodEnd   string                `json:"period_end"`
	Rules       []RulePreviewResponse `json:"rules"`
}

// ToEvaluationResponse converts a domain Evaluation entity to an EvaluationResponse DTO.
func ToEvaluationResponse(ev *entity.Evaluation) EvaluationResponse {
	ids := make([]string, len(ev.MatchedTransactionIDs))
	for i, id := range ev.MatchedTransactionIDs {
		ids[i] = id.String()
	}
	return EvaluationResponse{
		ID:                    ev.ID.String(),
		RuleID:                ev.RuleID.String(),
		PeriodStart:           ev.PeriodStart.Format(time.DateOnly),
		PeriodEnd:             ev.PeriodEnd.Format(time.DateOnly),
		ActualSpend:           ev.ActualSpend.StringFixed(2),
		TargetSpend:           ev.TargetSpend.StringFixed(2),
		CalculatedInvest:      ev.CalculatedInvest.StringFixed(2),
		FinalInvest:           ev.FinalInvest.StringFixed(2),
		StreakCount:           ev.StreakCount,
		MatchedTransactionIDs: ids,
		Status:                string(ev.Status),
		ConfirmedAt:           ev.ConfirmedAt,
		SkippedAt:             ev.SkippedAt,
		ExecutedAt:            ev.ExecutedAt,
		CreatedAt:             ev.CreatedAt,
	}
}

// ToEvaluationResponses converts a slice of evaluations.
func ToEvaluationResponses(evs []*entity.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, len(evs))
	for i, ev := range evs {
		responses[i] = ToEvaluationResponse(ev)
	}
	return responses
}

// ToPreviewResponse converts the preview output to a PreviewResponse DTO.
func ToPreviewResponse(output *evaluation.PreviewOutput) PreviewResponse {
	start, end := output.Period.DateRange()
	rules := make([]RulePreviewResponse, len(output.Rules))
	for i, p := range output.Rules {
		rules[i] = RulePreviewResponse{
			RuleID:           p.Rule.ID.String(),
			RuleName:         p.Rule.Name,
			Category:         p.Rule.Category.String(),
			ActualSpend:      p.Result.ActualSpend.StringFixed(2),
			TargetSpend:      p.Result.TargetSpend.StringFixed(2),
			CalculatedInvest: p.Result.CalculatedInvest.StringFixed(2),
			StreakCount:      p.Result.StreakCount,
			TargetBeaten:     p.Result.TargetBeaten(),
		}
	}
	return PreviewResponse{
		PeriodStart: start.Format(time.DateOnly),
		PeriodEnd:   end.Format(time.DateOnly),
		Rules:       rules,
	}
}
