package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func noLimits() Limits {
	return Limits{MaxPerTrade: dec("100000"), MaxPerMonth: dec("100000"), MonthToDate: decimal.Zero}
}

func coffeeRule(investType entity.InvestType, target string) *entity.Rule {
	return &entity.Rule{
		Category:    valueobject.CategoryCoffee,
		Period:      entity.RulePeriodWeekly,
		TargetSpend: dec(target),
		InvestType:  investType,
		IsActive:    true,
	}
}

func TestEvaluateScenarios(t *testing.T) {
	e := NewEvaluator(NewClassifier())
	spend32 := []*entity.Transaction{
		tx("Starbucks", "12.00"),
		tx("Dunkin", "20.00"),
		tx("Lyft", "45.00"),
	}

	t.Run("difference without streak", func(t *testing.T) {
		got := e.Evaluate(coffeeRule(entity.InvestTypeDifference, "50"), spend32, noLimits(), 0)

		if !got.ActualSpend.Equal(dec("32")) {
			t.Errorf("actual = %s, want 32", got.ActualSpend)
		}
		if got.FinalInvest.StringFixed(2) != "18.00" {
			t.Errorf("final = %s, want 18.00", got.FinalInvest.StringFixed(2))
		}
		if got.StreakCount != 1 {
			t.Errorf("streak = %d, want 1", got.StreakCount)
		}
		if len(got.MatchedTransactionIDs) != 2 {
			t.Errorf("matched = %d, want 2", len(got.MatchedTransactionIDs))
		}
	})

	t.Run("fixed with streak bonus", func(t *testing.T) {
		rule := coffeeRule(entity.InvestTypeFixed, "50")
		rule.InvestAmount = decimal.NewNullDecimal(dec("10"))
		rule.StreakEnabled = true

		got := e.Evaluate(rule, spend32, noLimits(), 3)

		if !got.CalculatedInvest.Equal(dec("13")) {
			t.Errorf("calculated = %s, want 13", got.CalculatedInvest)
		}
		if got.FinalInvest.StringFixed(2) != "13.00" {
			t.Errorf("final = %s, want 13.00", got.FinalInvest.StringFixed(2))
		}
		if got.StreakCount != 4 {
			t.Errorf("streak = %d, want 4", got.StreakCount)
		}
	})

	t.Run("monthly cap leaves remainder", func(t *testing.T) {
		rule := coffeeRule(entity.InvestTypeFixed, "50")
		rule.InvestAmount = decimal.NewNullDecimal(dec("20"))
		limits := Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("495")}

		got := e.Evaluate(rule, spend32, limits, 0)

		if !got.CalculatedInvest.Equal(dec("20")) {
			t.Errorf("calculated = %s, want 20", got.CalculatedInvest)
		}
		if got.FinalInvest.StringFixed(2) != "5.00" {
			t.Errorf("final = %s, want 5.00", got.FinalInvest.StringFixed(2))
		}
	})

	t.Run("monthly budget exhausted", func(t *testing.T) {
		limits := Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("500")}

		got := e.Evaluate(coffeeRule(entity.InvestTypeDifference, "50"), spend32, limits, 0)

		if !got.FinalInvest.IsZero() {
			t.Errorf("final = %s, want 0", got.FinalInvest)
		}
		if !got.CalculatedInvest.Equal(dec("18")) {
			t.Errorf("calculated = %s, want 18", got.CalculatedInvest)
		}
	})
}

func TestEvaluateTargetMissed(t *testing.T) {
	e := NewEvaluator(NewClassifier())
	rule := coffeeRule(entity.InvestTypeDifference, "30")
	rule.StreakEnabled = true

	tests := []struct {
		name string
		txs  []*entity.Transaction
	}{
		{"over target", []*entity.Transaction{tx("Starbucks", "31.00")}},
		{"exactly target", []*entity.Transaction{tx("Starbucks", "30.00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(rule, tt.txs, noLimits(), 5)
			if !got.CalculatedInvest.IsZero() || !got.FinalInvest.IsZero() {
				t.Errorf("expected zero invest, got %s/%s", got.CalculatedInvest, got.FinalInvest)
			}
			if got.StreakCount != 0 {
				t.Errorf("streak = %d, want reset to 0", got.StreakCount)
			}
			if got.TargetBeaten() {
				t.Error("target should not be beaten")
			}
		})
	}
}

func TestEvaluateIgnoresExcluded(t *testing.T) {
	e := NewEvaluator(NewClassifier())
	big := tx("Starbucks", "45.00")
	big.Excluded = true

	got := e.Evaluate(coffeeRule(entity.InvestTypeDifference, "50"), []*entity.Transaction{big, tx("Peet's", "10.00")}, noLimits(), 0)

	if !got.ActualSpend.Equal(dec("10")) {
		t.Errorf("actual = %s, want 10", got.ActualSpend)
	}
	if len(got.MatchedTransactionIDs) != 1 {
		t.Errorf("matched = %d, want 1", len(got.MatchedTransactionIDs))
	}
}

func TestEvaluateNoTransactions(t *testing.T) {
	e := NewEvaluator(NewClassifier())

	got := e.Evaluate(coffeeRule(entity.InvestTypeDifference, "25"), nil, noLimits(), 0)

	if got.FinalInvest.StringFixed(2) != "25.00" {
		t.Errorf("final = %s, want 25.00", got.FinalInvest.StringFixed(2))
	}
	if got.MatchedTransactionIDs == nil {
		t.Error("matched ids should be an empty slice, not nil")
	}
}

func TestStreakBonusProperty(t *testing.T) {
	e := NewEvaluator(NewClassifier())
	rule := coffeeRule(entity.InvestTypeDifference, "40")
	rule.StreakEnabled = true
	txs := []*entity.Transaction{tx("Starbucks", "15.00")}
	base := dec("25")

	for n := 0; n <= 10; n++ {
		got := e.Preview(rule, txs, n)
		want := base.Mul(decimal.NewFromInt(1).Add(dec("0.10").Mul(decimal.NewFromInt(int64(n)))))
		if !got.CalculatedInvest.Equal(want) {
			t.Errorf("priorStreak=%d: calculated = %s, want %s", n, got.CalculatedInvest, want)
		}
	}

	rule.StreakEnabled = false
	if got := e.Preview(rule, txs, 4); !got.CalculatedInvest.Equal(base) {
		t.Errorf("disabled streak: calculated = %s, want %s", got.CalculatedInvest, base)
	}
}

func TestApplyCaps(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		limits Limits
		want   string
	}{
		{"under all caps", "18", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("0")}, "18.00"},
		{"per-trade cap", "150", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("0")}, "100.00"},
		{"per-trade then monthly", "150", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("450")}, "50.00"},
		{"month overspent", "10", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("520")}, "0.00"},
		{"rounds half away from zero", "10.125", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("0")}, "10.13"},
		{"rounds down", "10.124", Limits{MaxPerTrade: dec("100"), MaxPerMonth: dec("500"), MonthToDate: dec("0")}, "10.12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyCaps(dec(tt.amount), tt.limits)
			if got.StringFixed(2) != tt.want {
				t.Errorf("ApplyCaps() = %s, want %s", got.StringFixed(2), tt.want)
			}
			if got.GreaterThan(tt.limits.MaxPerTrade) {
				t.Errorf("final %s exceeds per-trade cap %s", got, tt.limits.MaxPerTrade)
			}
		})
	}
}
