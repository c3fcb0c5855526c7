package service

import (
	"context"

	"github.com/spendwise/backend/internal/ingest"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/search"
)

// ListTransactions returns userID's transactions whose date falls in the
// inclusive range. Either bound may be empty.
func (s *FinanceService) ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error) {
	const op = "service.ListTransactions"

	start, err := normalizeBound(op, "start_date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := normalizeBound(op, "end_date", endDate)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, storeError(op, err)
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	return txs, nil
}

// SearchTransactions runs a full-text search scoped to userID.
func (s *FinanceService) SearchTransactions(ctx context.Context, userID string, params search.Params) (*search.Response, error) {
	const op = "service.SearchTransactions"
	if s.search == nil {
		return nil, model.Errorf(model.ErrNotFound, op, "transaction search is not enabled")
	}

	var err error
	if params.StartDate, err = normalizeBound(op, "start_date", params.StartDate); err != nil {
		return nil, err
	}
	if params.EndDate, err = normalizeBound(op, "end_date", params.EndDate); err != nil {
		return nil, err
	}
	if params.Category != "" {
		params.Category = model.NormalizeCategory(string(params.Category))
	}
	params.UserID = userID

	resp, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, model.NewError(model.ErrInternal, op, "search failed", err)
	}
	return resp, nil
}

// ListChallenges returns userID's challenges, newest first. An empty status
// lists all of them.
func (s *FinanceService) ListChallenges(ctx context.Context, userID string, status model.ChallengeStatus) ([]*model.Challenge, error) {
	const op = "service.ListChallenges"
	if status != "" && !status.Valid() {
		return nil, model.Errorf(model.ErrMalformedInput, op, "unknown challenge status %q", status)
	}

	challenges, err := s.store.ListChallenges(ctx, userID, status)
	if err != nil {
		return nil, storeError(op, err)
	}
	if challenges == nil {
		challenges = []*model.Challenge{}
	}
	return challenges, nil
}

func normalizeBound(op, name, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	d, err := ingest.NormalizeDate(value)
	if err != nil {
		return "", model.NewError(model.ErrMalformedInput, op, "invalid "+name, err)
	}
	return d, nil
}
