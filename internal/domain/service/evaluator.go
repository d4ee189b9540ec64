package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
)

// streakBonusRate is the bonus added per consecutive beaten period.
var streakBonusRate = decimal.RequireFromString("0.10")

// Limits are the safety caps applied to an evaluation.
type Limits struct {
	MaxPerTrade decimal.Decimal
	MaxPerMonth decimal.Decimal
	// MonthToDate is the amount already committed this calendar month.
	MonthToDate decimal.Decimal
}

// LimitsFromProfile builds Limits from a profile and the month-to-date amount.
func LimitsFromProfile(profile *entity.Profile, monthToDate decimal.Decimal) Limits {
	return Limits{
		MaxPerTrade: profile.MaxPerTrade,
		MaxPerMonth: profile.MaxPerMonth,
		MonthToDate: monthToDate,
	}
}

// Evaluator computes rule outcomes.
type Evaluator struct {
	classifier *Classifier
}

// NewEvaluator creates an Evaluator using classifier for matching.
func NewEvaluator(classifier *Classifier) *Evaluator {
	return &Evaluator{classifier: classifier}
}

// Classifier returns the classifier used for matching.
func (e *Evaluator) Classifier() *Classifier {
	return e.classifier
}

// Evaluate computes the full result for one rule over one period, caps included.
func (e *Evaluator) Evaluate(rule *entity.Rule, txs []*entity.Transaction, limits Limits, priorStreak int) entity.EvaluationResult {
	result := e.Preview(rule, txs, priorStreak)
	result.FinalInvest = ApplyCaps(result.CalculatedInvest, limits)
	return result
}

// Preview computes actual spend, calculated invest and the new streak without
// applying caps. FinalInvest equals CalculatedInvest.
func (e *Evaluator) Preview(rule *entity.Rule, txs []*entity.Transaction, priorStreak int) entity.EvaluationResult {
	actual := decimal.Zero
	matched := make([]uuid.UUID, 0)
	for _, tx := range txs {
		if !e.classifier.Matches(tx, rule) {
			continue
		}
		actual = actual.Add(tx.Amount)
		matched = append(matched, tx.ID)
	}

	result := entity.EvaluationResult{
		ActualSpend:           actual,
		TargetSpend:           rule.TargetSpend,
		CalculatedInvest:      decimal.Zero,
		FinalInvest:           decimal.Zero,
		StreakCount:           0,
		MatchedTransactionIDs: matched,
	}

	if !actual.LessThan(rule.TargetSpend) {
		return result
	}

	var invest decimal.Decimal
	switch rule.InvestType {
	case entity.InvestTypeFixed:
		invest = rule.FixedAmount()
	default:
		invest = rule.TargetSpend.Sub(actual)
	}

	if rule.StreakEnabled && priorStreak > 0 {
		bonus := invest.Mul(decimal.NewFromInt(int64(priorStreak))).Mul(streakBonusRate)
		invest = invest.Add(bonus)
	}

	result.CalculatedInvest = invest
	result.FinalInvest = invest
	result.StreakCount = priorStreak + 1
	return result
}

// ApplyCaps limits amount by the per-trade cap and the remaining monthly budget
// and rounds to cents.
func ApplyCaps(amount decimal.Decimal, limits Limits) decimal.Decimal {
	capped := decimal.Min(amount, limits.MaxPerTrade)

	remaining := limits.MaxPerMonth.Sub(limits.MonthToDate)
	if !remaining.IsPositive() {
		return decimal.Zero.Round(2)
	}

	return decimal.Min(capped, remaining).Round(2)
}
