package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/statement"
	"github.com/spendwise/backend/internal/store"
)

// Indexer receives newly inserted transactions, e.g. a search index.
type Indexer interface {
	IndexTransactions(ctx context.Context, txs []*model.Transaction) error
}

// Classified is one statement line after the oracle has labelled it.
type Classified struct {
	TransactionDate string
	Description     string
	Category        model.Category
	Amount          decimal.Decimal
	Type            model.TransactionType
}

// Result summarises a Persist call.
type Result struct {
	Inserted       []*model.Transaction
	InsertedCount  int
	DuplicateCount int
}

// Pipeline classifies statement lines and persists them without duplicates.
type Pipeline struct {
	reasoner reasoner.Reasoner
	store    store.Store
	indexer  Indexer
	now      func() time.Time
	log      logrus.FieldLogger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithIndexer hands newly inserted transactions to idx.
func WithIndexer(idx Indexer) Option {
	return func(p *Pipeline) { p.indexer = idx }
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline over the given oracle and store.
func NewPipeline(r reasoner.Reasoner, s store.Store, log logrus.FieldLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		reasoner: r,
		store:    s,
		now:      time.Now,
		log:      log.WithField("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// classificationRecord is the shape the oracle is asked to return. Amount is
// kept raw because models emit both numbers and strings.
type classificationRecord struct {
	TransactionDate string          `json:"transaction_date"`
	Category        string          `json:"category"`
	Amount          json.RawMessage `json:"amount"`
	Type            string          `json:"type"`
}

// Classify labels every line with one oracle request.
func (p *Pipeline) Classify(ctx context.Context, lines []model.RawLine) ([]Classified, error) {
	const op = "ingest.Classify"
	if len(lines) == 0 {
		return nil, nil
	}

	completion, err := p.reasoner.Generate(ctx, classificationPrompt(lines))
	if err != nil {
		return nil, model.NewError(model.ErrClassification, op, "classification request failed", err)
	}

	var records []classificationRecord
	if err := reasoner.DecodeArray(completion, &records); err != nil {
		return nil, model.NewError(model.ErrClassification, op, "unparsable classification response", err)
	}
	// Records pair with lines by index, so any other count is untrustworthy.
	if len(records) != len(lines) {
		p.log.WithFields(logrus.Fields{
			"lines":   len(lines),
			"records": len(records),
		}).Warn("Ingest.Classify.CountMismatch")
		return nil, model.Errorf(model.ErrClassification, op,
			"classifier returned %d records for %d statement lines", len(records), len(lines))
	}

	out := make([]Classified, 0, len(records))
	for i, rec := range records {
		c, err := toClassified(rec, lines[i])
		if err != nil {
			return nil, model.NewError(model.ErrClassification, op, fmt.Sprintf("record %d", i), err)
		}
		out = append(out, c)
	}
	return out, nil
}

func toClassified(rec classificationRecord, line model.RawLine) (Classified, error) {
	var c Classified

	rawDate := rec.TransactionDate
	if strings.TrimSpace(rawDate) == "" {
		rawDate = line.Date
	}
	date, err := NormalizeDate(rawDate)
	if err != nil {
		return c, err
	}
	c.TransactionDate = date

	amount, ok, err := parseRecordAmount(rec.Amount)
	if err != nil {
		return c, err
	}
	if !ok {
		amount = line.Amount
	}
	c.Amount = amount

	c.Category = model.NormalizeCategory(rec.Category)
	c.Type = normalizeType(rec.Type, amount)
	c.Description = line.Description
	return c, nil
}

// parseRecordAmount accepts a JSON number or a string. ok is false when the
// field is absent or null.
func parseRecordAmount(raw json.RawMessage) (decimal.Decimal, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, false, fmt.Errorf("amount: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return decimal.Zero, false, nil
		}
	}
	amount, err := statement.ParseAmount(text)
	if err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}

func normalizeType(s string, amount decimal.Decimal) model.TransactionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit":
		return model.TransactionTypeCredit
	case "debit":
		return model.TransactionTypeDebit
	}
	if amount.IsPositive() {
		return model.TransactionTypeCredit
	}
	return model.TransactionTypeDebit
}

// Persist fingerprints the classified records and writes the ones not
// already stored for userID.
func (p *Pipeline) Persist(ctx context.Context, userID string, classified []Classified) (*Result, error) {
	const op = "ingest.Persist"
	result := &Result{}
	createdAt := p.now().UTC()

	seen := make(map[string]struct{}, len(classified))
	candidates := make([]*model.Transaction, 0, len(classified))
	for _, c := range classified {
		hash := Fingerprint(c.TransactionDate, c.Amount, c.Type)
		if _, dup := seen[hash]; dup {
			result.DuplicateCount++
			continue
		}
		seen[hash] = struct{}{}

		exists, err := p.store.TransactionExists(ctx, userID, hash)
		if err != nil {
			return nil, model.NewError(model.ErrPersistence, op, "duplicate check failed", err)
		}
		if exists {
			result.DuplicateCount++
			continue
		}

		candidates = append(candidates, &model.Transaction{
			TransactionDate: c.TransactionDate,
			Description:     c.Description,
			Category:        c.Category,
			Amount:          c.Amount,
			Type:            c.Type,
			Hash:            hash,
			UserID:          userID,
			CreatedAt:       createdAt,
		})
	}

	if len(candidates) > 0 {
		written, err := p.store.InsertTransactions(ctx, candidates)
		if err != nil {
			return nil, model.NewError(model.ErrPersistence, op, "insert failed", err)
		}
		result.Inserted = written.Inserted
		result.DuplicateCount += len(written.Duplicates)
	}
	result.InsertedCount = len(result.Inserted)

	p.log.WithFields(logrus.Fields{
		"userId":     userID,
		"inserted":   result.InsertedCount,
		"duplicates": result.DuplicateCount,
	}).Info("Ingest.Persist.Complete")

	if p.indexer != nil && len(result.Inserted) > 0 {
		if err := p.indexer.IndexTransactions(ctx, result.Inserted); err != nil {
			p.log.WithError(err).Warn("Ingest.Index.Error")
		}
	}
	return result, nil
}

// Ingest classifies and persists lines for userID.
func (p *Pipeline) Ingest(ctx context.Context, userID string, lines []model.RawLine) (*Result, error) {
	classified, err := p.Classify(ctx, lines)
	if err != nil {
		return nil, err
	}
	return p.Persist(ctx, userID, classified)
}
