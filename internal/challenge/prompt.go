package challenge

import (
	"fmt"
	"strings"

	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/model"
)

func evaluationPrompt(active []*model.Challenge, history []*model.Transaction, lines []model.RawLine) string {
	var b strings.Builder
	b.WriteString("You track savings challenges for a user. Decide for each active challenge below ")
	b.WriteString("whether it is Completed (the user stayed within the target for its category and period), ")
	b.WriteString("Failed (the target was exceeded), or still Active (the period has not ended and the target is not yet exceeded).\n\n")

	b.WriteString("Active challenges (id | name | category | target | start | end | description):\n")
	for _, c := range active {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s | %s\n",
			c.ID, c.Name, c.Category, c.TargetAmount.StringFixed(2), c.StartDate, c.EndDate, c.Description)
	}

	b.WriteString("\nPreviously imported transactions (date | category | amount | type):\n")
	if len(history) == 0 {
		b.WriteString("none\n")
	}
	for _, t := range history {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", t.TransactionDate, t.Category, t.Amount.String(), t.Type)
	}

	b.WriteString("\nNew statement (date | description | amount):\n")
	writeLines(&b, lines)

	b.WriteString("\nReturn only a JSON array with one object per challenge:\n")
	b.WriteString(`[{"id": "challenge id", "status": "Completed"}]`)
	b.WriteString("\nstatus must be one of Active, Completed, Failed.\n")
	return b.String()
}

func generationPrompt(policy config.ChallengePolicy, lines []model.RawLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the bank statement below, propose exactly %d savings challenges that help the user spend less.\n", policy.PerCycle)
	fmt.Fprintf(&b, "Each challenge covers the next %d days and targets one spending category.\n", policy.PeriodDays)
	fmt.Fprintf(&b, "target_amount is the most the user should spend in that category and must be below %s.\n\n", policy.MaxTarget.String())

	b.WriteString("Categories: ")
	names := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		names = append(names, string(c))
	}
	b.WriteString(strings.Join(names, ", "))

	b.WriteString("\n\nStatement (date | description | amount):\n")
	writeLines(&b, lines)

	b.WriteString("\nReturn only a JSON array:\n")
	b.WriteString(`[{"name": "Short title", "description": "What to do", "target_amount": 25.00, "category": "Dining"}]`)
	b.WriteString("\n")
	return b.String()
}

func writeLines(b *strings.Builder, lines []model.RawLine) {
	if len(lines) == 0 {
		b.WriteString("none\n")
	}
	for _, l := range lines {
		fmt.Fprintf(b, "%s | %s | %s\n", l.Date, l.Description, l.Amount.String())
	}
}
