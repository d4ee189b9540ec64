package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// EvaluationModel represents the evaluations table in the database.
// The (rule_id, period_start) unique index is what makes weekly creation idempotent.
type EvaluationModel struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	RuleID                uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_rule_period,priority:1"`
	PeriodStart           time.Time       `gorm:"type:date;not null;uniqueIndex:idx_evaluations_rule_period,priority:2"`
	PeriodEnd             time.Time       `gorm:"type:date;not null"`
	ActualSpend           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TargetSpend           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CalculatedInvest      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	FinalInvest           decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	StreakCount           int             `gorm:"not null;default:0"`
	PriorStreak           int             `gorm:"not null;default:0"`
	MatchedTransactionIDs StringArray     `gorm:"not null"`
	Status                string          `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt           *time.Time      `gorm:"type:timestamp"`
	SkippedAt             *time.Time      `gorm:"type:timestamp"`
	ExecutedAt            *time.Time      `gorm:"type:timestamp"`
	CreatedAt             time.Time       `gorm:"not null"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for the EvaluationModel.
func (EvaluationModel) TableName() string {
	return "evaluations"
}

// ToEntity converts an EvaluationModel to a domain Evaluation entity.
func (m *EvaluationModel) ToEntity() *entity.Evaluation {
	return &entity.Evaluation{
		ID:                    m.ID,
		UserID:                m.UserID,
		RuleID:                m.RuleID,
		PeriodStart:           m.PeriodStart.UTC(),
		PeriodEnd:             m.PeriodEnd.UTC(),
		ActualSpend:           m.ActualSpend,
		TargetSpend:           m.TargetSpend,
		CalculatedInvest:      m.CalculatedInvest,
		FinalInvest:           m.FinalInvest,
		StreakCount:           m.StreakCount,
		PriorStreak:           m.PriorStreak,
		MatchedTransactionIDs: m.MatchedTransactionIDs.UUIDs(),
		Status:                entity.EvaluationStatus(m.Status),
		ConfirmedAt:           m.ConfirmedAt,
		SkippedAt:             m.SkippedAt,
		ExecutedAt:            m.ExecutedAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// EvaluationModelFromEntity creates an EvaluationModel from a domain Evaluation entity.
func EvaluationModelFromEntity(e *entity.Evaluation) *EvaluationModel {
	return &EvaluationModel{
		ID:                    e.ID,
		UserID:                e.UserID,
		RuleID:                e.RuleID,
		PeriodStart:           e.PeriodStart,
		PeriodEnd:             e.PeriodEnd,
		ActualSpend:           e.ActualSpend,
		TargetSpend:           e.TargetSpend,
		CalculatedInvest:      e.CalculatedInvest,
		FinalInvest:           e.FinalInvest,
		StreakCount:           e.StreakCount,
		PriorStreak:           e.PriorStreak,
		MatchedTransactionIDs: StringArrayFromUUIDs(e.MatchedTransactionIDs),
		Status:                string(e.Status),
		ConfirmedAt:           e.ConfirmedAt,
		SkippedAt:             e.SkippedAt,
		ExecutedAt:            e.ExecutedAt,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}
