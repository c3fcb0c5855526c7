package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/spendwise/backend/internal/model"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	// transactions are keyed by TransactionDocID, which is the uniqueness constraint.
	transactions map[string]*model.Transaction
	challenges   map[string]*model.Challenge
	creditCards  map[string]*model.CreditCard
	users        map[string]*model.User
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		challenges:   make(map[string]*model.Challenge),
		creditCards:  make(map[string]*model.CreditCard),
		users:        make(map[string]*model.User),
	}
}

func (s *MemoryStore) TransactionExists(ctx context.Context, userID, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.transactions[TransactionDocID(userID, hash)]
	return ok, nil
}

// InsertTransactions checks and inserts under one lock, so concurrent uploads
// of the same statement cannot both insert a row.
func (s *MemoryStore) InsertTransactions(ctx context.Context, txs []*model.Transaction) (*InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &InsertResult{}
	for _, tx := range txs {
		if tx.UserID == "" || tx.Hash == "" {
			return result, fmt.Errorf("transaction missing user id or hash")
		}
		id := TransactionDocID(tx.UserID, tx.Hash)
		if _, exists := s.transactions[id]; exists {
			result.Duplicates = append(result.Duplicates, tx)
			continue
		}
		tx.ID = id
		stored := *tx
		s.transactions[id] = &stored
		result.Inserted = append(result.Inserted, tx)
	}
	return result, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID || !inRange(tx.TransactionDate, startDate, endDate) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TransactionDate != out[j].TransactionDate {
			return out[i].TransactionDate < out[j].TransactionDate
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) InsertChallenges(ctx context.Context, challenges []*model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range challenges {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if _, exists := s.challenges[c.ID]; exists {
			return fmt.Errorf("challenge %s: %w", c.ID, ErrAlreadyExists)
		}
	}
	for _, c := range challenges {
		stored := *c
		s.challenges[c.ID] = &stored
	}
	return nil
}

func (s *MemoryStore) ListChallenges(ctx context.Context, userID string, status model.ChallengeStatus) ([]*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Challenge
	for _, c := range s.challenges {
		if c.UserID != userID || (status != "" && c.Status != status) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortChallenges(out)
	return out, nil
}

func (s *MemoryStore) UpdateChallengeStatus(ctx context.Context, userID, challengeID string, status model.ChallengeStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[challengeID]
	if !ok || c.UserID != userID {
		return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
	}
	if err := checkTransition(c.Status, status); err != nil {
		return fmt.Errorf("challenge %s: %w", challengeID, err)
	}
	c.Status = status
	return nil
}

func (s *MemoryStore) ListCreditCards(ctx context.Context, limit int) ([]*model.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.CreditCard, 0, len(s.creditCards))
	for _, card := range s.creditCards {
		cp := *card
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) PutCreditCards(ctx context.Context, cards []*model.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range cards {
		if card.ID == "" {
			card.ID = uuid.New().String()
		}
		stored := *card
		s.creditCards[card.ID] = &stored
	}
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, ErrAlreadyExists)
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

// sortChallenges orders newest first, ties broken by id.
func sortChallenges(cs []*model.Challenge) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}
