// Package search keeps an Algolia index of imported transactions and queries
// it on behalf of one user at a time.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/model"
)

// Params defines the input for an Algolia search.
type Params struct {
	Query    string
	UserID   string
	Category model.Category
	Type     model.TransactionType
	// Inclusive YYYY-MM-DD bounds; empty means open.
	StartDate string
	EndDate   string
	// Pagination (offset-based)
	Page     int
	PageSize int
}

// Response holds results from Algolia.
type Response struct {
	Results    []*model.Transaction `json:"results"`
	TotalCount int                  `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
	Page       int                  `json:"page"`
}

// AlgoliaClient wraps the Algolia search API client.
type AlgoliaClient struct {
	client    *search.APIClient
	indexName string
	log       logrus.FieldLogger
}

// NewAlgoliaClient creates a new Algolia search client.
func NewAlgoliaClient(cfg config.AlgoliaConfig, log logrus.FieldLogger) (*AlgoliaClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("algolia AppID and APIKey are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "spendwise_transactions"
	}

	client, err := search.NewClient(cfg.AppID, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating algolia client: %w", err)
	}

	return &AlgoliaClient{
		client:    client,
		indexName: cfg.IndexName,
		log:       log.WithField("component", "algolia"),
	}, nil
}

// IndexTransactions saves one record per transaction. The object id is the
// transaction id, so re-indexing is an overwrite.
func (c *AlgoliaClient) IndexTransactions(ctx context.Context, txs []*model.Transaction) error {
	var failed int
	var firstErr error
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := c.client.SaveObject(c.client.NewApiSaveObjectRequest(c.indexName, transactionRecord(tx)))
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return fmt.Errorf("algolia: %d of %d records not saved: %w", failed, len(txs), firstErr)
	}
	c.log.WithField("records", len(txs)).Debug("Algolia.Index.Complete")
	return nil
}

// Search performs a full-text search via Algolia.
func (c *AlgoliaClient) Search(ctx context.Context, params Params) (*Response, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("algolia search requires a user id")
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}

	page := params.Page
	if page < 0 {
		page = 0
	}

	searchParams := search.SearchParamsObjectAsSearchParams(
		search.NewSearchParamsObject().
			SetQuery(params.Query).
			SetHitsPerPage(int32(pageSize)).
			SetPage(int32(page)).
			SetFilters(buildFilters(params)),
	)

	resp, err := c.client.SearchSingleIndex(c.client.NewApiSearchSingleIndexRequest(c.indexName).WithSearchParams(searchParams))
	if err != nil {
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	results := make([]*model.Transaction, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		tx := hitToTransaction(hit.AdditionalProperties)
		if tx == nil {
			c.log.Warn("Algolia.Search.HitWithoutID")
			continue
		}
		results = append(results, tx)
	}

	totalCount := 0
	if resp.NbHits != nil {
		totalCount = int(*resp.NbHits)
	}
	totalPages := 0
	if resp.NbPages != nil {
		totalPages = int(*resp.NbPages)
	}

	return &Response{
		Results:    results,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

func transactionRecord(tx *model.Transaction) map[string]any {
	record := map[string]any{
		"objectID":    tx.ID,
		"UserId":      tx.UserID,
		"Description": tx.Description,
		"Category":    string(tx.Category),
		"Amount":      tx.Amount.InexactFloat64(),
		"AmountExact": tx.Amount.String(),
		"Type":        string(tx.Type),
		"Date":        tx.TransactionDate,
	}
	if t, err := time.Parse(model.DateLayout, tx.TransactionDate); err == nil {
		record["DateUnix"] = t.Unix()
	}
	return record
}

// buildFilters constructs Algolia filter string from search params.
// UserId is always enforced for security.
func buildFilters(params Params) string {
	parts := []string{fmt.Sprintf("UserId:%q", params.UserID)}

	if params.Category != "" {
		parts = append(parts, fmt.Sprintf("Category:%q", string(params.Category)))
	}
	if params.Type != "" {
		parts = append(parts, fmt.Sprintf("Type:%q", string(params.Type)))
	}

	// Date range (using DateUnix numeric field)
	if t, err := time.Parse(model.DateLayout, params.StartDate); err == nil {
		parts = append(parts, fmt.Sprintf("DateUnix >= %d", t.Unix()))
	}
	if t, err := time.Parse(model.DateLayout, params.EndDate); err == nil {
		parts = append(parts, fmt.Sprintf("DateUnix <= %d", t.Unix()))
	}

	return strings.Join(parts, " AND ")
}

// hitToTransaction converts an Algolia hit back to a transaction.
func hitToTransaction(props map[string]any) *model.Transaction {
	tx := &model.Transaction{}

	if v, ok := props["objectID"].(string); ok {
		tx.ID = v
	}
	if tx.ID == "" {
		return nil
	}
	if v, ok := props["UserId"].(string); ok {
		tx.UserID = v
	}
	if v, ok := props["Description"].(string); ok {
		tx.Description = v
	}
	if v, ok := props["Category"].(string); ok {
		tx.Category = model.Category(v)
	}
	if v, ok := props["Type"].(string); ok {
		tx.Type = model.TransactionType(v)
	}
	if v, ok := props["Date"].(string); ok {
		tx.TransactionDate = v
	}

	// Amount: prefer the exact text
	if v, ok := props["AmountExact"].(string); ok {
		if d, err := decimal.NewFromString(v); err == nil {
			tx.Amount = d
			return tx
		}
	}
	if v, ok := props["Amount"].(float64); ok {
		tx.Amount = decimal.NewFromFloat(v)
	}
	return tx
}
