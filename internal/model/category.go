package model

import "strings"

// Category is the closed set of spending categories used for classification.
type Category string

const (
	CategoryGroceries       Category = "Groceries"
	CategoryDining          Category = "Dining"
	CategoryShopping        Category = "Shopping"
	CategoryHealthWellness  Category = "Health & Wellness"
	CategoryEntertainment   Category = "Entertainment"
	CategoryTravelTransport Category = "Travel & Transport"
	CategoryBillsUtilities  Category = "Bills & Utilities"
	CategoryIncome          Category = "Income"
	CategoryOthers          Category = "Others"
)

// Categories lists every category in prompt order.
var Categories = []Category{
	CategoryGroceries,
	CategoryDining,
	CategoryShopping,
	CategoryHealthWellness,
	CategoryEntertainment,
	CategoryTravelTransport,
	CategoryBillsUtilities,
	CategoryIncome,
	CategoryOthers,
}

var categoryLookup = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[categoryKey(string(c))] = c
	}
	// Common spellings the oracle produces for the ampersand categories.
	m[categoryKey("Health and Wellness")] = CategoryHealthWellness
	m[categoryKey("Travel and Transport")] = CategoryTravelTransport
	m[categoryKey("Bills and Utilities")] = CategoryBillsUtilities
	m[categoryKey("Other")] = CategoryOthers
	return m
}()

func categoryKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeCategory maps free-form text onto the closed category set.
// Anything it does not recognise becomes Others.
func NormalizeCategory(s string) Category {
	if c, ok := categoryLookup[categoryKey(s)]; ok {
		return c
	}
	return CategoryOthers
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
