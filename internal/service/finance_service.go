package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spendwise/backend/internal/challenge"
	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/ingest"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/search"
	"github.com/spendwise/backend/internal/store"
)

// Archive keeps raw statement uploads.
type Archive interface {
	Put(ctx context.Context, userID, filename string, data []byte) (string, error)
}

// SearchIndex indexes new transactions and serves user-scoped searches.
type SearchIndex interface {
	ingest.Indexer
	Search(ctx context.Context, params search.Params) (*search.Response, error)
}

type FinanceService struct {
	store    store.Store
	reasoner reasoner.Reasoner
	pipeline *ingest.Pipeline
	engine   *challenge.Engine
	archive  Archive
	search   SearchIndex
	now      func() time.Time
	log      logrus.FieldLogger
}

// Option customises a FinanceService.
type Option func(*FinanceService)

// WithArchive stores every raw upload in a.
func WithArchive(a Archive) Option {
	return func(s *FinanceService) { s.archive = a }
}

// WithSearch indexes inserted transactions into idx and enables search.
func WithSearch(idx SearchIndex) Option {
	return func(s *FinanceService) { s.search = idx }
}

// WithClock overrides the clock for every component of the service.
func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

func NewFinanceService(st store.Store, r reasoner.Reasoner, policy config.ChallengePolicy, log logrus.FieldLogger, opts ...Option) *FinanceService {
	s := &FinanceService{
		store:    st,
		reasoner: r,
		now:      time.Now,
		log:      log.WithField("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	pipelineOpts := []ingest.Option{ingest.WithClock(s.now)}
	if s.search != nil {
		pipelineOpts = append(pipelineOpts, ingest.WithIndexer(s.search))
	}
	s.pipeline = ingest.NewPipeline(r, st, log, pipelineOpts...)
	s.engine = challenge.NewEngine(r, st, policy, log, challenge.WithClock(s.now))
	return s
}

// storeError maps a store failure onto the error taxonomy.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return model.NewError(model.ErrNotFound, op, "not found", err)
	}
	return model.NewError(model.ErrPersistence, op, "store operation failed", err)
}
