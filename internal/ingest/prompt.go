package ingest

import (
	"fmt"
	"strings"

	"github.com/spendwise/backend/internal/model"
)

var categoryExamples = map[model.Category]string{
	model.CategoryGroceries:       "FOOD LION, COSTCO, WALMART",
	model.CategoryDining:          "restaurants, cafes, fast food, Starbucks",
	model.CategoryShopping:        "Amazon, online stores, retail purchases",
	model.CategoryHealthWellness:  "pharmacies, herbal stores, clinics",
	model.CategoryEntertainment:   "movies, games, subscriptions",
	model.CategoryTravelTransport: "Uber, gas stations, airlines",
	model.CategoryBillsUtilities:  "electricity, internet, water bills",
	model.CategoryIncome:          "salary, cashback, statement credit",
	model.CategoryOthers:          "anything that fits no other category",
}

func classificationPrompt(lines []model.RawLine) string {
	var b strings.Builder
	b.WriteString("Classify each of the following bank statement transactions.\n")
	b.WriteString("For every line, in the same order, return an object with:\n")
	b.WriteString("- transaction_date: the date as YYYY-MM-DD\n")
	b.WriteString("- category: exactly one of the categories below\n")
	b.WriteString("- amount: the exact signed amount as a number\n")
	b.WriteString("- type: \"Credit\" for a positive amount, \"Debit\" for a negative amount\n\n")

	b.WriteString("Categories:\n")
	for _, c := range model.Categories {
		fmt.Fprintf(&b, "- %s (e.g. %s)\n", c, categoryExamples[c])
	}

	b.WriteString("\nReturn only a JSON array, one object per line:\n")
	b.WriteString(`[{"transaction_date": "YYYY-MM-DD", "category": "Category Name", "amount": -12.34, "type": "Debit"}]`)
	b.WriteString("\n\nTransactions (date | description | amount):\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s | %s | %s\n", i+1, l.Date, l.Description, l.Amount.String())
	}
	return b.String()
}
