package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spendwise/backend/internal/model"
)

const (
	transactionsCollection = "transactions"
	challengesCollection   = "challenges"
	creditCardsCollection  = "credit_cards"
	usersCollection        = "users"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
	}
}

// transactionDoc is the stored shape of a transaction. amount stays a number
// for readers of the collection; amount_exact is the lossless value.
type transactionDoc struct {
	UserID          string    `firestore:"user_id"`
	TransactionDate string    `firestore:"transaction_date"`
	Description     string    `firestore:"description"`
	Category        string    `firestore:"category"`
	Amount          float64   `firestore:"amount"`
	AmountExact     string    `firestore:"amount_exact"`
	Type            string    `firestore:"type"`
	Hash            string    `firestore:"hash"`
	CreatedAt       time.Time `firestore:"created_at"`
}

func toTransactionDoc(tx *model.Transaction) transactionDoc {
	return transactionDoc{
		UserID:          tx.UserID,
		TransactionDate: tx.TransactionDate,
		Description:     tx.Description,
		Category:        string(tx.Category),
		Amount:          tx.Amount.InexactFloat64(),
		AmountExact:     tx.Amount.String(),
		Type:            string(tx.Type),
		Hash:            tx.Hash,
		CreatedAt:       tx.CreatedAt,
	}
}

func (d transactionDoc) toModel(id string) *model.Transaction {
	amount, err := decimal.NewFromString(d.AmountExact)
	if err != nil {
		amount = decimal.NewFromFloat(d.Amount)
	}
	return &model.Transaction{
		ID:              id,
		TransactionDate: d.TransactionDate,
		Description:     d.Description,
		Category:        model.Category(d.Category),
		Amount:          amount,
		Type:            model.TransactionType(d.Type),
		Hash:            d.Hash,
		UserID:          d.UserID,
		CreatedAt:       d.CreatedAt,
	}
}

type challengeDoc struct {
	UserID       string    `firestore:"user_id"`
	Name         string    `firestore:"name"`
	Description  string    `firestore:"description"`
	TargetAmount string    `firestore:"target_amount"`
	Category     string    `firestore:"category"`
	StartDate    string    `firestore:"start_date"`
	EndDate      string    `firestore:"end_date"`
	Status       string    `firestore:"status"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func toChallengeDoc(c *model.Challenge) challengeDoc {
	return challengeDoc{
		UserID:       c.UserID,
		Name:         c.Name,
		Description:  c.Description,
		TargetAmount: c.TargetAmount.String(),
		Category:     string(c.Category),
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
	}
}

func (d challengeDoc) toModel(id string) (*model.Challenge, error) {
	target, err := decimal.NewFromString(d.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("challenge %s: bad target %q: %w", id, d.TargetAmount, err)
	}
	return &model.Challenge{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		TargetAmount: target,
		Category:     model.Category(d.Category),
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Status:       model.ChallengeStatus(d.Status),
		UserID:       d.UserID,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// TransactionExists looks the fingerprint up by its deterministic document id.
func (s *FirestoreStore) TransactionExists(ctx context.Context, userID, hash string) (bool, error) {
	_, err := s.client.Collection(transactionsCollection).Doc(TransactionDocID(userID, hash)).Get(ctx)
	if err == nil {
		return true, nil
	}
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to check transaction: %w", err)
}

// InsertTransactions writes all transactions in one BulkWriter session using
// Create, so a document that already exists is rejected by Firestore itself.
// Those rejections are reported as duplicates.
func (s *FirestoreStore) InsertTransactions(ctx context.Context, txs []*model.Transaction) (*InsertResult, error) {
	result := &InsertResult{}
	if len(txs) == 0 {
		return result, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, len(txs))
	for i, tx := range txs {
		ref := s.client.Collection(transactionsCollection).Doc(TransactionDocID(tx.UserID, tx.Hash))
		job, err := bw.Create(ref, toTransactionDoc(tx))
		if err != nil {
			bw.End()
			return result, fmt.Errorf("failed to enqueue transaction: %w", err)
		}
		jobs[i] = job
	}
	bw.End()

	var firstErr error
	for i, job := range jobs {
		_, err := job.Results()
		switch {
		case err == nil:
			txs[i].ID = TransactionDocID(txs[i].UserID, txs[i].Hash)
			result.Inserted = append(result.Inserted, txs[i])
		case status.Code(err) == codes.AlreadyExists:
			result.Duplicates = append(result.Duplicates, txs[i])
		case firstErr == nil:
			firstErr = fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	return result, firstErr
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error) {
	query := s.client.Collection(transactionsCollection).Where("user_id", "==", userID)
	if startDate != "" {
		query = query.Where("transaction_date", ">=", startDate)
	}
	if endDate != "" {
		query = query.Where("transaction_date", "<=", endDate)
	}
	query = query.OrderBy("transaction_date", firestore.Asc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var d transactionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse transaction: %w", err)
		}
		out = append(out, d.toModel(doc.Ref.ID))
	}
	return out, nil
}

func (s *FirestoreStore) InsertChallenges(ctx context.Context, challenges []*model.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(challenges))
	for _, c := range challenges {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		job, err := bw.Create(s.client.Collection(challengesCollection).Doc(c.ID), toChallengeDoc(c))
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to enqueue challenge: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write challenge: %w", err)
		}
	}
	return nil
}

func (s *FirestoreStore) ListChallenges(ctx context.Context, userID string, st model.ChallengeStatus) ([]*model.Challenge, error) {
	query := s.client.Collection(challengesCollection).Where("user_id", "==", userID)
	if st != "" {
		query = query.Where("status", "==", string(st))
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	out := make([]*model.Challenge, 0, len(docs))
	for _, doc := range docs {
		var d challengeDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse challenge: %w", err)
		}
		c, err := d.toModel(doc.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortChallenges(out)
	return out, nil
}

// UpdateChallengeStatus reads and writes inside a transaction so a terminal
// status is never overwritten by a concurrent cycle.
func (s *FirestoreStore) UpdateChallengeStatus(ctx context.Context, userID, challengeID string, next model.ChallengeStatus) error {
	ref := s.client.Collection(challengesCollection).Doc(challengeID)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read challenge: %w", err)
		}

		var d challengeDoc
		if err := doc.DataTo(&d); err != nil {
			return fmt.Errorf("failed to parse challenge: %w", err)
		}
		if d.UserID != userID {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		if err := checkTransition(model.ChallengeStatus(d.Status), next); err != nil {
			return fmt.Errorf("challenge %s: %w", challengeID, err)
		}
		return tx.Update(ref, []firestore.Update{{Path: "status", Value: string(next)}})
	})
}

func (s *FirestoreStore) ListCreditCards(ctx context.Context, limit int) ([]*model.CreditCard, error) {
	query := s.client.Collection(creditCardsCollection).Query
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}

	out := make([]*model.CreditCard, 0, len(docs))
	for _, doc := range docs {
		var card model.CreditCard
		if err := doc.DataTo(&card); err != nil {
			return nil, fmt.Errorf("failed to parse credit card: %w", err)
		}
		card.ID = doc.Ref.ID
		out = append(out, &card)
	}
	return out, nil
}

func (s *FirestoreStore) PutCreditCards(ctx context.Context, cards []*model.CreditCard) error {
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(cards))
	for _, card := range cards {
		ref := s.client.Collection(creditCardsCollection).NewDoc()
		if card.ID != "" {
			ref = s.client.Collection(creditCardsCollection).Doc(card.ID)
		}
		card.ID = ref.ID
		job, err := bw.Set(ref, card)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to enqueue credit card: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("failed to write credit card: %w", err)
		}
	}
	return nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

func (s *FirestoreStore) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("user %s: %w", user.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
