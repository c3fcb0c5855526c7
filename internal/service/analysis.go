package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/reasoner"
)

// CategoryTotal is the signed sum and count of one category.
type CategoryTotal struct {
	Category model.Category  `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MonthlyTotal is the signed sum of one YYYY-MM month.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Summary aggregates a user's whole history.
type Summary struct {
	Categories []CategoryTotal `json:"categories"`
	Monthly    []MonthlyTotal  `json:"monthly"`
	Message    string          `json:"message"`
}

// Summary totals userID's transactions per category and per month.
func (s *FinanceService) Summary(ctx context.Context, userID string) (*Summary, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "", "")
	if err != nil {
		return nil, storeError("service.Summary", err)
	}
	return summarize(txs), nil
}

func summarize(txs []*model.Transaction) *Summary {
	byCategory := make(map[model.Category]*CategoryTotal)
	byMonth := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		ct, ok := byCategory[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byCategory[tx.Category] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++

		if len(tx.TransactionDate) >= 7 {
			month := tx.TransactionDate[:7]
			byMonth[month] = byMonth[month].Add(tx.Amount)
		}
	}

	sum := &Summary{
		Categories: make([]CategoryTotal, 0, len(byCategory)),
		Monthly:    make([]MonthlyTotal, 0, len(byMonth)),
		Message:    "Summary generated successfully",
	}
	for _, ct := range byCategory {
		sum.Categories = append(sum.Categories, *ct)
	}
	sort.Slice(sum.Categories, func(i, j int) bool {
		return sum.Categories[i].Category < sum.Categories[j].Category
	})
	for month, total := range byMonth {
		sum.Monthly = append(sum.Monthly, MonthlyTotal{Month: month, Total: total})
	}
	sort.Slice(sum.Monthly, func(i, j int) bool { return sum.Monthly[i].Month < sum.Monthly[j].Month })
	return sum
}

// InsightItem is one flagged spending pattern.
type InsightItem struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Suggestion  string `json:"suggestion"`
}

// Insights is the oracle's analysis of a user's spending.
type Insights struct {
	UnnecessarySpending []InsightItem  `json:"unnecessary_spending"`
	Recommendations     []string       `json:"recommendations"`
	CashFlowAnalysis    map[string]any `json:"cash_flow_analysis"`
	Anomalies           []InsightItem  `json:"anomalies"`
	Message             string         `json:"message"`
}

type insightsReply struct {
	UnnecessarySpending []json.RawMessage `json:"unnecessary_spending"`
	Recommendations     []json.RawMessage `json:"recommendations"`
	CashFlowAnalysis    map[string]any    `json:"cash_flow_analysis"`
	Anomalies           []json.RawMessage `json:"anomalies"`
	Message             string            `json:"message"`
}

// Insights asks the oracle to analyse userID's transactions in the range.
func (s *FinanceService) Insights(ctx context.Context, userID, startDate, endDate string) (*Insights, error) {
	const op = "service.Insights"

	txs, err := s.ListTransactions(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return &Insights{
			UnnecessarySpending: []InsightItem{},
			Recommendations:     []string{},
			CashFlowAnalysis:    map[string]any{},
			Anomalies:           []InsightItem{},
			Message:             "No transactions found for analysis",
		}, nil
	}

	completion, err := s.reasoner.Generate(ctx, insightsPrompt(txs))
	if err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "insight request failed", err)
	}

	var reply insightsReply
	if err := reasoner.DecodeObject(completion, &reply); err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "unparsable insight response", err)
	}

	out := &Insights{
		UnnecessarySpending: coerceItems(reply.UnnecessarySpending),
		Recommendations:     coerceStrings(reply.Recommendations),
		CashFlowAnalysis:    reply.CashFlowAnalysis,
		Anomalies:           coerceItems(reply.Anomalies),
		Message:             reply.Message,
	}
	if out.CashFlowAnalysis == nil {
		out.CashFlowAnalysis = map[string]any{
			"monthly_income":    "0",
			"total_spent":       "0",
			"savings_potential": "0",
			"cash_flow_trends":  []string{},
		}
	}
	if out.Message == "" {
		out.Message = "Analysis completed successfully"
	}
	return out, nil
}

// coerceItems keeps objects and turns any other element into a description.
func coerceItems(raw []json.RawMessage) []InsightItem {
	items := make([]InsightItem, 0, len(raw))
	for _, r := range raw {
		var obj struct {
			Description looseString `json:"description"`
			Amount      looseString `json:"amount"`
			Suggestion  looseString `json:"suggestion"`
		}
		if trimmed := strings.TrimSpace(string(r)); strings.HasPrefix(trimmed, "{") && json.Unmarshal(r, &obj) == nil {
			items = append(items, InsightItem{
				Description: string(obj.Description),
				Amount:      string(obj.Amount),
				Suggestion:  string(obj.Suggestion),
			})
			continue
		}
		items = append(items, InsightItem{Description: scalarText(r), Amount: "N/A", Suggestion: "N/A"})
	}
	return items
}

func coerceStrings(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, scalarText(r))
	}
	return out
}

func scalarText(r json.RawMessage) string {
	var s string
	if json.Unmarshal(r, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(r))
}

func insightsPrompt(txs []*model.Transaction) string {
	var b strings.Builder
	b.WriteString("You are a financial advisor analysing a user's spending. Review the transactions below and report:\n")
	b.WriteString("1. Unnecessary spending: rarely used subscriptions and overspent categories, with a suggestion for each.\n")
	b.WriteString("2. Recommendations: concrete ways to save money.\n")
	b.WriteString("3. Cash flow analysis: monthly income against total spending, savings potential and trends.\n")
	b.WriteString("4. Anomalies: unusual or one-off spending.\n\n")
	b.WriteString("Return only a JSON object with this structure:\n")
	b.WriteString(`{"unnecessary_spending": [{"description": "", "amount": "", "suggestion": ""}], `)
	b.WriteString(`"recommendations": [""], `)
	b.WriteString(`"cash_flow_analysis": {"monthly_income": "", "total_spent": "", "savings_potential": "", "cash_flow_trends": [""]}, `)
	b.WriteString(`"anomalies": [{"description": "", "amount": "", "suggestion": ""}], "message": "summary"}`)
	b.WriteString("\n\nTransactions (date | description | category | amount | type):\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s\n", tx.TransactionDate, tx.Description, tx.Category, tx.Amount.String(), tx.Type)
	}
	return b.String()
}
