// Package rule contains spending rule use cases.
package rule

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

const maxMerchantPatternLength = 100

var (
	maxTargetSpend  = decimal.NewFromInt(10000)
	minInvestAmount = decimal.NewFromInt(1)
	maxInvestAmount = decimal.NewFromInt(1000)
)

// validateRule checks a fully populated rule before it is stored.
func validateRule(rule *entity.Rule) error {
	if rule.Period != entity.RulePeriodWeekly {
		return domainerror.NewRuleError(domainerror.ErrCodeInvalidRulePeriod, "period must be weekly", domainerror.ErrInvalidRulePeriod)
	}

	if !rule.Category.IsValid() {
		return domainerror.NewRuleError(domainerror.ErrCodeInvalidCategory, "unknown category "+string(rule.Category), domainerror.ErrInvalidCategory)
	}

	if rule.Category == valueobject.CategoryCustom && rule.MerchantPattern == "" {
		return domainerror.NewRuleError(domainerror.ErrCodeMerchantPatternRequired, "custom rules need a merchant pattern", domainerror.ErrMerchantPatternRequired)
	}

	if utf8.RuneCountInString(rule.MerchantPattern) > maxMerchantPatternLength {
		return domainerror.NewRuleError(domainerror.ErrCodeMerchantPatternTooLong, "merchant pattern must be at most 100 characters", domainerror.ErrMerchantPatternTooLong)
	}

	if rule.TargetSpend.IsNegative() || rule.TargetSpend.GreaterThan(maxTargetSpend) {
		return domainerror.NewRuleError(domainerror.ErrCodeInvalidTargetSpend, "target spend out of range", domainerror.ErrInvalidTargetSpend)
	}

	if !rule.InvestType.IsValid() {
		return domainerror.NewRuleError(domainerror.ErrCodeInvalidInvestType, "invest type must be fixed or difference", domainerror.ErrInvalidInvestType)
	}

	if rule.InvestType == entity.InvestTypeFixed && !rule.InvestAmount.Valid {
		return domainerror.NewRuleError(domainerror.ErrCodeInvestAmountRequired, "fixed rules need an invest amount", domainerror.ErrInvestAmountRequired)
	}

	if rule.InvestAmount.Valid {
		amount := rule.InvestAmount.Decimal
		if amount.LessThan(minInvestAmount) || amount.GreaterThan(maxInvestAmount) {
			return domainerror.NewRuleError(domainerror.ErrCodeInvalidInvestAmount, "invest amount out of range", domainerror.ErrInvalidInvestAmount)
		}
	}

	return nil
}

// defaultName names a rule after its pattern or category when the user gave none.
func defaultName(category valueobject.Category, pattern string) string {
	if pattern != "" {
		return pattern
	}
	name := string(category)
	if name == "" {
		return "Rule"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
