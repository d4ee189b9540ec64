// Package service contains pure domain logic shared by the use cases.
package service

import (
	"strings"

	"github.com/owninstead/backend/internal/domain/entity"
	"github.com/owninstead/backend/internal/domain/valueobject"
)

// Classifier maps transactions to spending categories.
type Classifier struct {
	merchants []valueobject.MerchantGroup
	providers []valueobject.ProviderMapping
}

// NewClassifier creates a Classifier over the built-in merchant and provider tables.
func NewClassifier() *Classifier {
	return NewClassifierWithTables(valueobject.MerchantTable, valueobject.ProviderTable)
}

// NewClassifierWithTables creates a Classifier over custom tables. Table order is
// the match priority. Entries are lowercased so matching stays case-insensitive
// whatever casing the tables use.
func NewClassifierWithTables(merchants []valueobject.MerchantGroup, providers []valueobject.ProviderMapping) *Classifier {
	c := &Classifier{
		merchants: make([]valueobject.MerchantGroup, len(merchants)),
		providers: make([]valueobject.ProviderMapping, len(providers)),
	}
	for i, group := range merchants {
		names := make([]string, len(group.Merchants))
		for j, name := range group.Merchants {
			names[j] = strings.ToLower(name)
		}
		c.merchants[i] = valueobject.MerchantGroup{Category: group.Category, Merchants: names}
	}
	for i, mapping := range providers {
		c.providers[i] = valueobject.ProviderMapping{Path: strings.ToLower(mapping.Path), Category: mapping.Category}
	}
	return c
}

// Classify returns the category of tx, or CategoryNone.
func (c *Classifier) Classify(tx *entity.Transaction) valueobject.Category {
	if tx == nil || tx.Excluded {
		return valueobject.CategoryNone
	}

	merchant := strings.ToLower(tx.MerchantName)
	if merchant != "" {
		for _, group := range c.merchants {
			for _, name := range group.Merchants {
				if strings.Contains(merchant, name) {
					return group.Category
				}
			}
		}
	}

	path := strings.ToLower(tx.CategoryPath())
	if path == "" {
		return valueobject.CategoryNone
	}
	for _, mapping := range c.providers {
		if strings.Contains(path, mapping.Path) {
			return mapping.Category
		}
	}

	return valueobject.CategoryNone
}

// Matches reports whether tx counts toward rule.
// A merchant pattern takes precedence over the rule's category.
func (c *Classifier) Matches(tx *entity.Transaction, rule *entity.Rule) bool {
	if tx == nil || rule == nil || tx.Excluded {
		return false
	}

	if rule.HasMerchantPattern() {
		return strings.Contains(strings.ToLower(tx.MerchantName), strings.ToLower(rule.MerchantPattern))
	}

	category := c.Classify(tx)
	return category != valueobject.CategoryNone && category == rule.Category
}
