package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/store"
)

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

func statementLines() []model.RawLine {
	return []model.RawLine{
		{Date: "2024-01-15", Description: "STARBUCKS", Amount: decimal.RequireFromString("-5.75")},
		{Date: "2024-01-16", Description: "SALARY", Amount: decimal.RequireFromString("2000.00")},
	}
}

const classifiedReply = "```json\n" + `[
  {"transaction_date": "2024-01-15", "category": "Dining", "amount": -5.75, "type": "Debit"},
  {"transaction_date": "2024-01-16", "category": "Income", "amount": 2000.00, "type": "Credit"}
]` + "\n```"

func reply(text string) reasoner.Func {
	return func(ctx context.Context, prompt string) (string, error) {
		return text, nil
	}
}

type recordingIndexer struct {
	indexed []*model.Transaction
	err     error
}

func (r *recordingIndexer) IndexTransactions(ctx context.Context, txs []*model.Transaction) error {
	r.indexed = append(r.indexed, txs...)
	return r.err
}

func TestIngest_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	idx := &recordingIndexer{}
	p := NewPipeline(reply(classifiedReply), s, logging.Discard(), WithIndexer(idx), WithClock(func() time.Time { return fixedNow }))

	first, err := p.Ingest(ctx, "user-1", statementLines())
	require.NoError(t, err)
	assert.Equal(t, 2, first.InsertedCount)
	assert.Equal(t, 0, first.DuplicateCount)
	require.Len(t, first.Inserted, 2)

	starbucks := first.Inserted[0]
	assert.Equal(t, "STARBUCKS", starbucks.Description)
	assert.Equal(t, model.CategoryDining, starbucks.Category)
	assert.Equal(t, model.TransactionTypeDebit, starbucks.Type)
	assert.Equal(t, "user-1", starbucks.UserID)
	assert.Equal(t, fixedNow, starbucks.CreatedAt)
	assert.Equal(t, Fingerprint("2024-01-15", decimal.RequireFromString("-5.75"), model.TransactionTypeDebit), starbucks.Hash)
	assert.Len(t, idx.indexed, 2)

	second, err := p.Ingest(ctx, "user-1", statementLines())
	require.NoError(t, err)
	assert.Equal(t, 0, second.InsertedCount)
	assert.Equal(t, 2, second.DuplicateCount)
	assert.Empty(t, second.Inserted)
	assert.Len(t, idx.indexed, 2, "nothing new to index")

	stored, err := s.ListTransactions(ctx, "user-1", "", "")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	other, err := p.Ingest(ctx, "user-2", statementLines())
	require.NoError(t, err)
	assert.Equal(t, 2, other.InsertedCount, "fingerprints are scoped per user")
}

func TestIngest_CategoryDriftDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	_, err := NewPipeline(reply(classifiedReply), s, logging.Discard()).Ingest(ctx, "user-1", statementLines())
	require.NoError(t, err)

	drifted := strings.Replace(classifiedReply, `"Dining"`, `"Shopping"`, 1)
	res, err := NewPipeline(reply(drifted), s, logging.Discard()).Ingest(ctx, "user-1", statementLines())
	require.NoError(t, err)
	assert.Equal(t, 0, res.InsertedCount)
	assert.Equal(t, 2, res.DuplicateCount)

	stored, err := s.ListTransactions(ctx, "user-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDining, stored[0].Category, "first classification is kept")
}

func TestPersist_InBatchRepeats(t *testing.T) {
	p := NewPipeline(nil, store.NewMemoryStore(), logging.Discard())
	c := Classified{TransactionDate: "2024-01-15", Category: model.CategoryDining, Amount: decimal.RequireFromString("-5.75"), Type: model.TransactionTypeDebit}

	res, err := p.Persist(context.Background(), "user-1", []Classified{c, c})
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.DuplicateCount)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		check   func(t *testing.T, got []Classified)
		wantErr bool
	}{
		{
			name:  "normalises fields",
			reply: `[{"transaction_date":"01/15/2024","category":"dining","amount":"-5.75","type":"DEBIT"},{"transaction_date":"2024-01-16","category":"Crypto","amount":2000,"type":"?"}]`,
			check: func(t *testing.T, got []Classified) {
				require.Len(t, got, 2)
				assert.Equal(t, "2024-01-15", got[0].TransactionDate)
				assert.Equal(t, model.CategoryDining, got[0].Category)
				assert.Equal(t, model.TransactionTypeDebit, got[0].Type)
				assert.Equal(t, model.CategoryOthers, got[1].Category)
				assert.Equal(t, model.TransactionTypeCredit, got[1].Type, "type derived from sign")
				assert.Equal(t, "SALARY", got[1].Description)
			},
		},
		{
			name:  "missing fields fall back to the line",
			reply: `[{"category":"Dining"},{"category":"Income"}]`,
			check: func(t *testing.T, got []Classified) {
				require.Len(t, got, 2)
				assert.Equal(t, "2024-01-15", got[0].TransactionDate)
				assert.True(t, decimal.RequireFromString("-5.75").Equal(got[0].Amount))
				assert.Equal(t, model.TransactionTypeDebit, got[0].Type)
				assert.Equal(t, "2024-01-16", got[1].TransactionDate)
				assert.Equal(t, model.TransactionTypeCredit, got[1].Type)
			},
		},
		{name: "prose", reply: "I could not read that statement.", wantErr: true},
		{name: "object instead of array", reply: `{"transactions": []}`, wantErr: true},
		{name: "bad date", reply: `[{"transaction_date":"someday","category":"Dining","amount":1,"type":"Credit"},{"transaction_date":"2024-01-16","category":"Income","amount":2000,"type":"Credit"}]`, wantErr: true},
		{name: "bad amount", reply: `[{"transaction_date":"2024-01-15","category":"Dining","amount":"lots","type":"Credit"},{"transaction_date":"2024-01-16","category":"Income","amount":2000,"type":"Credit"}]`, wantErr: true},
		{name: "oracle failure", err: errors.New("boom"), wantErr: true},
		{name: "oracle timeout", err: context.DeadlineExceeded, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reasoner.Func(func(ctx context.Context, prompt string) (string, error) {
				return tt.reply, tt.err
			})
			got, err := NewPipeline(r, nil, logging.Discard()).Classify(context.Background(), statementLines())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, model.IsKind(err, model.ErrClassification))
				if tt.err != nil {
					assert.ErrorIs(t, err, tt.err)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestClassify_PromptCarriesEveryLine(t *testing.T) {
	var prompt string
	r := reasoner.Func(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return classifiedReply, nil
	})

	_, err := NewPipeline(r, nil, logging.Discard()).Classify(context.Background(), statementLines())
	require.NoError(t, err)
	assert.Contains(t, prompt, "STARBUCKS")
	assert.Contains(t, prompt, "SALARY")
	assert.Contains(t, prompt, "Health & Wellness")
}

func TestClassify_CountMismatch(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{
			name:  "fewer records than lines",
			reply: `[{"transaction_date":"2024-01-15","category":"Dining","amount":-5.75,"type":"Debit"}]`,
		},
		{
			name: "more records than lines",
			reply: `[{"transaction_date":"2024-01-15","category":"Dining","amount":-5.75,"type":"Debit"},
{"transaction_date":"2024-01-16","category":"Income","amount":2000.00,"type":"Credit"},
{"transaction_date":"2024-01-17","category":"Shopping","amount":-999.99,"type":"Debit"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			s := store.NewMemoryStore()

			res, err := NewPipeline(reply(tt.reply), s, logger).Ingest(context.Background(), "user-1", statementLines())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, model.IsKind(err, model.ErrClassification))

			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			assert.Equal(t, "Ingest.Classify.CountMismatch", hook.LastEntry().Message)

			stored, err := s.ListTransactions(context.Background(), "user-1", "", "")
			require.NoError(t, err)
			assert.Empty(t, stored, "nothing is persisted")
		})
	}
}

func TestPersist_StoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := Classified{TransactionDate: "2024-01-15", Amount: decimal.RequireFromString("-5.75"), Type: model.TransactionTypeDebit, Category: model.CategoryDining}

	tests := []struct {
		name      string
		setupMock func(m *store.MockStore)
		wantErr   bool
		wantDups  int
	}{
		{
			name: "existence check fails",
			setupMock: func(m *store.MockStore) {
				m.EXPECT().TransactionExists(gomock.Any(), "user-1", gomock.Any()).Return(false, errors.New("unavailable"))
			},
			wantErr: true,
		},
		{
			name: "bulk write fails",
			setupMock: func(m *store.MockStore) {
				m.EXPECT().TransactionExists(gomock.Any(), "user-1", gomock.Any()).Return(false, nil)
				m.EXPECT().InsertTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("deadline"))
			},
			wantErr: true,
		},
		{
			name: "uniqueness race counts as duplicate",
			setupMock: func(m *store.MockStore) {
				m.EXPECT().TransactionExists(gomock.Any(), "user-1", gomock.Any()).Return(false, nil)
				m.EXPECT().InsertTransactions(gomock.Any(), gomock.Len(1)).
					DoAndReturn(func(ctx context.Context, txs []*model.Transaction) (*store.InsertResult, error) {
						return &store.InsertResult{Duplicates: txs}, nil
					})
			},
			wantDups: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := store.NewMockStore(ctrl)
			tt.setupMock(m)

			res, err := NewPipeline(nil, m, logging.Discard()).Persist(context.Background(), "user-1", []Classified{c})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, model.IsKind(err, model.ErrPersistence))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, res.InsertedCount)
			assert.Equal(t, tt.wantDups, res.DuplicateCount)
		})
	}
}

func TestPersist_IndexerFailureIsNotFatal(t *testing.T) {
	idx := &recordingIndexer{err: errors.New("algolia down")}
	p := NewPipeline(reply(classifiedReply), store.NewMemoryStore(), logging.Discard(), WithIndexer(idx))

	res, err := p.Ingest(context.Background(), "user-1", statementLines())
	require.NoError(t, err)
	assert.Equal(t, 2, res.InsertedCount)
}
