package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spendwise/backend/internal/challenge"
	"github.com/spendwise/backend/internal/ingest"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/search"
	"github.com/spendwise/backend/internal/store"
)

var statementCSV = []byte("Date,Description,Amount\n" +
	"2024-01-15,STARBUCKS,-5.75\n" +
	"2024-01-16,SALARY,2000.00\n")

const classifyReply = "```json\n" + `[
  {"transaction_date": "2024-01-15", "category": "Dining", "amount": -5.75, "type": "Debit"},
  {"transaction_date": "2024-01-16", "category": "Income", "amount": 2000.00, "type": "Credit"}
]` + "\n```"

const generateReply = `[{"name": "Coffee break", "description": "Brew at home", "target_amount": 40, "category": "dining"}]`

func seedTransaction(t *testing.T, st store.Store, userID, date, desc string, category model.Category, amount string) {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	txType := model.TransactionTypeCredit
	if amt.IsNegative() {
		txType = model.TransactionTypeDebit
	}
	_, err := st.InsertTransactions(context.Background(), []*model.Transaction{{
		TransactionDate: date,
		Description:     desc,
		Category:        category,
		Amount:          amt,
		Type:            txType,
		Hash:            ingest.Fingerprint(date, amt, txType),
		UserID:          userID,
		CreatedAt:       fixedNow,
	}})
	require.NoError(t, err)
}

func TestUploadStatement_RepeatedUpload(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	first := newScriptedReasoner(
		scriptedReply{marker: classifyMarker, text: classifyReply},
		scriptedReply{marker: generateMarker, text: generateReply},
	)
	res, err := newTestService(first, st).UploadStatement(ctx, "user-1", "jan.csv", statementCSV)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, "Statement processed successfully: 2 new transactions", res.Message)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, model.CategoryDining, res.Transactions[0].Category)
	assert.Empty(t, res.ChallengeUpdates)
	require.Len(t, res.NewChallenges, 1)
	assert.Equal(t, 0, first.count(evaluateMarker), "nothing to evaluate without active challenges")

	coffee := res.NewChallenges[0]
	assert.Equal(t, model.CategoryDining, coffee.Category)
	assert.Equal(t, "2024-02-01", coffee.StartDate)
	assert.Equal(t, model.ChallengeStatusActive, coffee.Status)

	second := newScriptedReasoner(
		scriptedReply{marker: classifyMarker, text: classifyReply},
		scriptedReply{marker: evaluateMarker, text: `[{"id": "` + coffee.ID + `", "status": "completed"}]`},
		scriptedReply{marker: generateMarker, text: generateReply},
	)
	res, err = newTestService(second, st).UploadStatement(ctx, "user-1", "jan.csv", statementCSV)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, "No new transactions: all 2 transactions were already imported", res.Message)
	assert.Empty(t, res.Transactions)
	assert.Equal(t, []challenge.StatusUpdate{{ChallengeID: coffee.ID, Name: "Coffee break", Status: model.ChallengeStatusCompleted}}, res.ChallengeUpdates)
	assert.Len(t, res.NewChallenges, 1)

	txs, err := st.ListTransactions(ctx, "user-1", "", "")
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	completed, err := st.ListChallenges(ctx, "user-1", model.ChallengeStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, coffee.ID, completed[0].ID)
}

func TestUploadStatement_Failures(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		replies  []scriptedReply
		active   bool
		wantKind model.ErrorKind
	}{
		{
			name:     "malformed statement",
			data:     []byte("just some text"),
			wantKind: model.ErrMalformedInput,
		},
		{
			name: "classification failure",
			data: statementCSV,
			replies: []scriptedReply{
				{marker: classifyMarker, err: errors.New("gemini unavailable")},
				{marker: generateMarker, text: generateReply},
			},
			wantKind: model.ErrClassification,
		},
		{
			name: "evaluation failure",
			data: statementCSV,
			replies: []scriptedReply{
				{marker: classifyMarker, text: classifyReply},
				{marker: evaluateMarker, text: "I could not decide"},
				{marker: generateMarker, text: generateReply},
			},
			active:   true,
			wantKind: model.ErrEvaluation,
		},
		{
			name: "generation failure",
			data: statementCSV,
			replies: []scriptedReply{
				{marker: classifyMarker, text: classifyReply},
				{marker: generateMarker, text: "no ideas"},
			},
			wantKind: model.ErrGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := store.NewMemoryStore()
			if tt.active {
				require.NoError(t, st.InsertChallenges(ctx, []*model.Challenge{{
					ID: "c1", Name: "Dining diet", Category: model.CategoryDining,
					TargetAmount: decimal.NewFromInt(50), StartDate: "2024-01-01", EndDate: "2024-01-31",
					Status: model.ChallengeStatusActive, UserID: "user-1",
				}}))
			}
			r := newScriptedReasoner(tt.replies...)

			_, err := newTestService(r, st).UploadStatement(ctx, "user-1", "jan.csv", tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, model.KindOf(err))

			txs, err := st.ListTransactions(ctx, "user-1", "", "")
			require.NoError(t, err)
			if tt.wantKind == model.ErrGeneration {
				assert.Len(t, txs, 2, "transactions persist before generation")
				return
			}
			assert.Empty(t, txs)
			assert.Equal(t, 0, r.count(generateMarker))
		})
	}
}

func TestUploadStatement_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	mockStore.EXPECT().
		ListTransactions(gomock.Any(), "user-1", "", "").
		Return(nil, errors.New("firestore down"))

	r := newScriptedReasoner()
	_, err := newTestService(r, mockStore).UploadStatement(context.Background(), "user-1", "jan.csv", statementCSV)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrPersistence))
	assert.Empty(t, r.prompts)
}

type recordingArchive struct {
	paths []string
	err   error
}

func (a *recordingArchive) Put(ctx context.Context, userID, filename string, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	path := "statements/" + userID + "/" + filename
	a.paths = append(a.paths, path)
	return path, nil
}

func TestUploadStatement_Archive(t *testing.T) {
	replies := []scriptedReply{
		{marker: classifyMarker, text: classifyReply},
		{marker: generateMarker, text: generateReply},
	}

	t.Run("stores the raw upload", func(t *testing.T) {
		a := &recordingArchive{}
		svc := newTestService(newScriptedReasoner(replies...), store.NewMemoryStore(), WithArchive(a))
		_, err := svc.UploadStatement(context.Background(), "user-1", "jan.csv", statementCSV)
		require.NoError(t, err)
		assert.Equal(t, []string{"statements/user-1/jan.csv"}, a.paths)
	})

	t.Run("archive failure is not fatal", func(t *testing.T) {
		a := &recordingArchive{err: errors.New("bucket missing")}
		svc := newTestService(newScriptedReasoner(replies...), store.NewMemoryStore(), WithArchive(a))
		res, err := svc.UploadStatement(context.Background(), "user-1", "jan.csv", statementCSV)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Inserted)
	})
}

func TestUploadMessage(t *testing.T) {
	assert.Equal(t, "Statement processed successfully: 3 new transactions", uploadMessage(3, 0))
	assert.Equal(t, "Statement processed successfully: 1 new transactions, 2 duplicates skipped", uploadMessage(1, 2))
	assert.Equal(t, "No new transactions: all 4 transactions were already imported", uploadMessage(0, 4))
	assert.Equal(t, "Statement processed successfully: 0 new transactions", uploadMessage(0, 0))
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seedTransaction(t, st, "user-1", "2024-01-15", "STARBUCKS", model.CategoryDining, "-5.75")
	seedTransaction(t, st, "user-1", "2024-02-03", "COSTCO", model.CategoryGroceries, "-80.10")
	seedTransaction(t, st, "user-2", "2024-01-20", "UBER", model.CategoryTravelTransport, "-12.00")
	svc := newTestService(newScriptedReasoner(), st)

	txs, err := svc.ListTransactions(ctx, "user-1", "01/01/2024", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "STARBUCKS", txs[0].Description)

	txs, err = svc.ListTransactions(ctx, "user-3", "", "")
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	_, err = svc.ListTransactions(ctx, "user-1", "last tuesday", "")
	assert.True(t, model.IsKind(err, model.ErrMalformedInput))
}

type fakeSearch struct {
	params search.Params
}

func (f *fakeSearch) IndexTransactions(ctx context.Context, txs []*model.Transaction) error {
	return nil
}

func (f *fakeSearch) Search(ctx context.Context, params search.Params) (*search.Response, error) {
	f.params = params
	return &search.Response{Results: []*model.Transaction{}, Page: params.Page}, nil
}

func TestSearchTransactions(t *testing.T) {
	ctx := context.Background()

	_, err := newTestService(newScriptedReasoner(), store.NewMemoryStore()).
		SearchTransactions(ctx, "user-1", search.Params{Query: "coffee"})
	assert.True(t, model.IsKind(err, model.ErrNotFound))

	idx := &fakeSearch{}
	svc := newTestService(newScriptedReasoner(), store.NewMemoryStore(), WithSearch(idx))
	_, err = svc.SearchTransactions(ctx, "user-1", search.Params{
		Query:     "coffee",
		UserID:    "someone-else",
		Category:  "dining",
		StartDate: "01/15/2024",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", idx.params.UserID)
	assert.Equal(t, model.CategoryDining, idx.params.Category)
	assert.Equal(t, "2024-01-15", idx.params.StartDate)
}

func TestListChallenges(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.InsertChallenges(ctx, []*model.Challenge{
		{ID: "c1", Name: "A", Status: model.ChallengeStatusActive, UserID: "user-1", CreatedAt: fixedNow},
		{ID: "c2", Name: "B", Status: model.ChallengeStatusFailed, UserID: "user-1", CreatedAt: fixedNow},
	}))
	svc := newTestService(newScriptedReasoner(), st)

	all, err := svc.ListChallenges(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListChallenges(ctx, "user-1", model.ChallengeStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c1", active[0].ID)

	_, err = svc.ListChallenges(ctx, "user-1", "Paused")
	assert.True(t, model.IsKind(err, model.ErrMalformedInput))
}

func TestSummary(t *testing.T) {
	st := store.NewMemoryStore()
	seedTransaction(t, st, "user-1", "2024-01-15", "STARBUCKS", model.CategoryDining, "-5.75")
	seedTransaction(t, st, "user-1", "2024-01-16", "SALARY", model.CategoryIncome, "2000.00")
	seedTransaction(t, st, "user-1", "2024-02-02", "CHIPOTLE", model.CategoryDining, "-4.25")

	sum, err := newTestService(newScriptedReasoner(), st).Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Summary generated successfully", sum.Message)
	require.Len(t, sum.Categories, 2)
	assert.Equal(t, model.CategoryDining, sum.Categories[0].Category)
	assert.Equal(t, "-10", sum.Categories[0].Total.String())
	assert.Equal(t, 2, sum.Categories[0].Count)
	assert.Equal(t, model.CategoryIncome, sum.Categories[1].Category)

	require.Len(t, sum.Monthly, 2)
	assert.Equal(t, "2024-01", sum.Monthly[0].Month)
	assert.Equal(t, "1994.25", sum.Monthly[0].Total.String())
	assert.Equal(t, "2024-02", sum.Monthly[1].Month)
	assert.Equal(t, "-4.25", sum.Monthly[1].Total.String())
}

func TestInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("no transactions", func(t *testing.T) {
		r := newScriptedReasoner()
		out, err := newTestService(r, store.NewMemoryStore()).Insights(ctx, "user-1", "", "")
		require.NoError(t, err)
		assert.Equal(t, "No transactions found for analysis", out.Message)
		assert.Empty(t, out.Recommendations)
		assert.Empty(t, r.prompts)
	})

	t.Run("coerces loose answers", func(t *testing.T) {
		st := store.NewMemoryStore()
		seedTransaction(t, st, "user-1", "2024-01-15", "NETFLIX", model.CategoryEntertainment, "-15.49")
		r := newScriptedReasoner(scriptedReply{marker: insightsMarker, text: "```json\n" + `{
  "unnecessary_spending": ["Streaming subscriptions", {"description": "Netflix", "amount": 15.49, "suggestion": "Cancel"}],
  "recommendations": ["Cook at home", 42],
  "anomalies": []
}` + "\n```"})

		out, err := newTestService(r, st).Insights(ctx, "user-1", "", "")
		require.NoError(t, err)

		assert.Equal(t, []InsightItem{
			{Description: "Streaming subscriptions", Amount: "N/A", Suggestion: "N/A"},
			{Description: "Netflix", Amount: "15.49", Suggestion: "Cancel"},
		}, out.UnnecessarySpending)
		assert.Equal(t, []string{"Cook at home", "42"}, out.Recommendations)
		assert.Equal(t, "0", out.CashFlowAnalysis["monthly_income"])
		assert.Empty(t, out.Anomalies)
		assert.Equal(t, "Analysis completed successfully", out.Message)
		assert.Contains(t, r.prompts[0], "NETFLIX")
	})

	t.Run("unparsable answer", func(t *testing.T) {
		st := store.NewMemoryStore()
		seedTransaction(t, st, "user-1", "2024-01-15", "NETFLIX", model.CategoryEntertainment, "-15.49")
		r := newScriptedReasoner(scriptedReply{marker: insightsMarker, text: "You spend too much."})
		_, err := newTestService(r, st).Insights(ctx, "user-1", "", "")
		assert.True(t, model.IsKind(err, model.ErrGeneration))
	})

	t.Run("bad date bound", func(t *testing.T) {
		_, err := newTestService(newScriptedReasoner(), store.NewMemoryStore()).Insights(ctx, "user-1", "soon", "")
		assert.True(t, model.IsKind(err, model.ErrMalformedInput))
	})
}

func TestSuggestCreditCards(t *testing.T) {
	ctx := context.Background()
	seeded := func(t *testing.T) store.Store {
		st := store.NewMemoryStore()
		seedTransaction(t, st, "user-1", "2024-01-15", "STARBUCKS", model.CategoryDining, "-25.00")
		seedTransaction(t, st, "user-1", "2024-01-16", "COSTCO", model.CategoryGroceries, "-120.10")
		seedTransaction(t, st, "user-1", "2024-01-17", "SALARY", model.CategoryIncome, "2000.00")
		seedTransaction(t, st, "user-1", "2024-01-18", "CHIPOTLE", model.CategoryDining, "-14.00")
		return st
	}

	t.Run("no cards", func(t *testing.T) {
		r := newScriptedReasoner()
		out, err := newTestService(r, seeded(t)).SuggestCreditCards(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, out.Suggestions)
		assert.Empty(t, r.prompts)
		require.Len(t, out.TopCategories, 2)
	})

	t.Run("matches spending", func(t *testing.T) {
		st := seeded(t)
		require.NoError(t, st.PutCreditCards(ctx, []*model.CreditCard{{
			Name: "Dining Plus", Provider: "First Bank",
			Cashback: map[string]string{"Dining": "4%"}, AnnualFee: "$0", APR: "19.99%", Benefits: "No foreign fees",
		}}))
		r := newScriptedReasoner(scriptedReply{marker: recommendMarker, text: `{"suggestions": [
  {"card_name": "Dining Plus", "provider": "First Bank", "cashback": {"Dining": "4%"}, "annual_fee": 0, "apr": 19.99, "benefits": "No foreign fees", "reason": "You dine out often"}
]}`})

		out, err := newTestService(r, st).SuggestCreditCards(ctx, "user-1")
		require.NoError(t, err)

		assert.Equal(t, model.CategoryGroceries, out.TopCategories[0].Category)
		assert.Equal(t, "120.1", out.TopCategories[0].Total.String())
		assert.Equal(t, model.CategoryDining, out.TopCategories[1].Category)
		assert.Equal(t, "39", out.TopCategories[1].Total.String())

		require.Len(t, out.Suggestions, 1)
		card := out.Suggestions[0]
		assert.Equal(t, "Dining Plus", card.CardName)
		assert.Equal(t, looseString("0"), card.AnnualFee)
		assert.Equal(t, looseString("19.99"), card.APR)
		assert.JSONEq(t, `{"Dining": "4%"}`, string(card.Cashback))
		assert.Contains(t, r.prompts[0], "Card Name: Dining Plus")
	})

	t.Run("oracle failure", func(t *testing.T) {
		st := seeded(t)
		require.NoError(t, st.PutCreditCards(ctx, []*model.CreditCard{{Name: "Basic"}}))
		r := newScriptedReasoner(scriptedReply{marker: recommendMarker, err: errors.New("quota exceeded")})
		_, err := newTestService(r, st).SuggestCreditCards(ctx, "user-1")
		assert.True(t, model.IsKind(err, model.ErrGeneration))
	})
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newTestService(newScriptedReasoner(), st)

	_, err := svc.Profile(ctx, "user-1")
	assert.True(t, model.IsKind(err, model.ErrNotFound))

	msg, err := svc.RegisterUser(ctx, testClaims("user-1"), ProfileInput{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)

	msg, err = svc.RegisterUser(ctx, testClaims("user-1"), ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "User already registered", msg)

	user, err := svc.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "user-1@test.local", user.Email)
	assert.Equal(t, fixedNow, user.CreatedAt)

	claims := testClaims("user-2")
	claims.Email = ""
	_, err = svc.RegisterUser(ctx, claims, ProfileInput{})
	assert.True(t, model.IsKind(err, model.ErrMalformedInput))
}
