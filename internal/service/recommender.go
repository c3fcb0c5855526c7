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

const (
	creditCardLimit      = 100
	recommenderTxnsLimit = 100
)

// CategorySpend is the total outflow of one category.
type CategorySpend struct {
	Category model.Category  `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CardSuggestion is one advisory recommendation from the oracle.
type CardSuggestion struct {
	CardName  string          `json:"card_name"`
	Provider  string          `json:"provider"`
	Cashback  json.RawMessage `json:"cashback,omitempty"`
	AnnualFee looseString     `json:"annual_fee"`
	APR       looseString     `json:"apr"`
	Benefits  looseString     `json:"benefits"`
	Reason    string          `json:"reason"`
}

// CardRecommendations answers /api/recommender/suggest-credit-cards.
type CardRecommendations struct {
	TopCategories []CategorySpend  `json:"top_categories"`
	Suggestions   []CardSuggestion `json:"suggestions"`
}

// SuggestCreditCards matches userID's spending against the card catalogue.
func (s *FinanceService) SuggestCreditCards(ctx context.Context, userID string) (*CardRecommendations, error) {
	const op = "service.SuggestCreditCards"

	txs, err := s.store.ListTransactions(ctx, userID, "", "")
	if err != nil {
		return nil, storeError(op, err)
	}
	cards, err := s.store.ListCreditCards(ctx, creditCardLimit)
	if err != nil {
		return nil, storeError(op, err)
	}

	out := &CardRecommendations{
		TopCategories: topSpendingCategories(txs),
		Suggestions:   []CardSuggestion{},
	}
	if len(txs) == 0 || len(cards) == 0 {
		return out, nil
	}

	// Most recent transactions only.
	if len(txs) > recommenderTxnsLimit {
		txs = txs[len(txs)-recommenderTxnsLimit:]
	}

	completion, err := s.reasoner.Generate(ctx, recommenderPrompt(txs, out.TopCategories, cards))
	if err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "recommendation request failed", err)
	}

	var reply struct {
		Suggestions []CardSuggestion `json:"suggestions"`
	}
	if err := reasoner.DecodeObject(completion, &reply); err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "unparsable recommendation response", err)
	}
	if reply.Suggestions != nil {
		out.Suggestions = reply.Suggestions
	}
	return out, nil
}

// topSpendingCategories sums debit outflows per category, largest first.
func topSpendingCategories(txs []*model.Transaction) []CategorySpend {
	totals := make(map[model.Category]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != model.TransactionTypeDebit {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
	}

	out := make([]CategorySpend, 0, len(totals))
	for c, total := range totals {
		out = append(out, CategorySpend{Category: c, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func recommenderPrompt(txs []*model.Transaction, top []CategorySpend, cards []*model.CreditCard) string {
	var b strings.Builder
	b.WriteString("You are a financial assistant. Suggest the credit cards below that best fit the user's spending, ")
	b.WriteString("favouring high cashback in their top categories and otherwise broad cashback, low APR or valuable benefits. ")
	b.WriteString("Give a short reason for every suggestion.\n\n")

	b.WriteString("Transactions (date | category | amount | type):\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", tx.TransactionDate, tx.Category, tx.Amount.String(), tx.Type)
	}

	b.WriteString("\nTop spending categories:\n")
	for _, c := range top {
		fmt.Fprintf(&b, "%s: %s\n", c.Category, c.Total.StringFixed(2))
	}

	b.WriteString("\nCredit cards:\n")
	for _, card := range cards {
		cashback, _ := json.Marshal(card.Cashback)
		fmt.Fprintf(&b, "Card Name: %s, Provider: %s, Cashback Categories: %s, Annual Fee: %s, APR: %s, Benefits: %s\n",
			card.Name, card.Provider, cashback, card.AnnualFee, card.APR, card.Benefits)
	}

	b.WriteString("\nReturn only a JSON object:\n")
	b.WriteString(`{"suggestions": [{"card_name": "", "provider": "", "cashback": {}, "annual_fee": "", "apr": "", "benefits": "", "reason": ""}]}`)
	b.WriteString("\n")
	return b.String()
}
