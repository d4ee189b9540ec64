// Package valueobject contains immutable value types shared by the domain layer.
package valueobject

import "strings"

// Category is a spending category a rule can target.
type Category string

const (
	CategoryDelivery      Category = "delivery"
	CategoryCoffee        Category = "coffee"
	CategoryRideshare     Category = "rideshare"
	CategoryRestaurants   Category = "restaurants"
	CategoryBars          Category = "bars"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategorySubscriptions Category = "subscriptions"
	CategoryCustom        Category = "custom"

	// CategoryNone is the result of a transaction that matched nothing.
	CategoryNone Category = ""
)

// AllCategories lists every category a rule may use, in display order.
var AllCategories = []Category{
	CategoryDelivery,
	CategoryCoffee,
	CategoryRideshare,
	CategoryRestaurants,
	CategoryBars,
	CategoryShopping,
	CategoryEntertainment,
	CategorySubscriptions,
	CategoryCustom,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// MerchantGroup is one entry of the curated merchant table.
type MerchantGroup struct {
	Category  Category
	Merchants []string
}

// ProviderMapping maps a bank provider category path to a category.
type ProviderMapping struct {
	Path     string
	Category Category
}

// MerchantTable is consulted first during classification. Order is significant:
// delivery precedes rideshare so "uber eats" never lands on "uber".
var MerchantTable = []MerchantGroup{
	{Category: CategoryDelivery, Merchants: []string{"doordash", "uber eats", "ubereats", "grubhub", "postmates", "seamless", "caviar", "instacart"}},
	{Category: CategoryCoffee, Merchants: []string{"starbucks", "dunkin", "peet", "blue bottle", "philz", "coffee bean", "caribou coffee"}},
	{Category: CategoryRideshare, Merchants: []string{"uber", "lyft", "via"}},
	{Category: CategoryRestaurants, Merchants: nil},
	{Category: CategoryBars, Merchants: []string{"bar", "pub", "tavern", "brewery", "winery"}},
	{Category: CategoryShopping, Merchants: []string{"amazon", "target", "walmart", "costco", "best buy"}},
	{Category: CategoryEntertainment, Merchants: []string{"netflix", "spotify", "hulu", "disney+", "hbo", "apple tv"}},
	{Category: CategorySubscriptions, Merchants: nil},
}

// ProviderTable is the fallback used when no merchant entry matched.
var ProviderTable = []ProviderMapping{
	{Path: "food and drink > restaurants", Category: CategoryRestaurants},
	{Path: "food and drink > coffee shop", Category: CategoryCoffee},
	{Path: "food and drink > bar", Category: CategoryBars},
	{Path: "travel > taxi", Category: CategoryRideshare},
	{Path: "shops > supermarkets and groceries", Category: CategoryShopping},
	{Path: "recreation > arts and entertainment", Category: CategoryEntertainment},
	{Path: "service > subscription", Category: CategorySubscriptions},
}

// JoinCategoryPath joins provider labels the way the provider table expects.
func JoinCategoryPath(labels []string) string {
	return strings.Join(labels, " > ")
}
