package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/spendwise/backend/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

var (
	// ErrNotFound is returned when a document does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a create collides with an existing document.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTerminalState is returned when a status update targets a challenge that
	// is already Completed or Failed.
	ErrTerminalState = errors.New("challenge is in a terminal state")
	// ErrInvalidTransition is returned when the requested status is not reachable.
	ErrInvalidTransition = errors.New("invalid challenge status transition")
)

// InsertResult reports how a bulk transaction write went. Duplicates holds the
// transactions refused by the (user_id, hash) uniqueness constraint.
type InsertResult struct {
	Inserted   []*model.Transaction
	Duplicates []*model.Transaction
}

// Store defines the interface for all database operations used by the service
type Store interface {
	// Transaction operations
	TransactionExists(ctx context.Context, userID, hash string) (bool, error)
	InsertTransactions(ctx context.Context, txs []*model.Transaction) (*InsertResult, error)
	ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error)

	// Challenge operations
	InsertChallenges(ctx context.Context, challenges []*model.Challenge) error
	ListChallenges(ctx context.Context, userID string, status model.ChallengeStatus) ([]*model.Challenge, error)
	UpdateChallengeStatus(ctx context.Context, userID, challengeID string, status model.ChallengeStatus) error

	// Credit card catalogue
	ListCreditCards(ctx context.Context, limit int) ([]*model.CreditCard, error)
	PutCreditCards(ctx context.Context, cards []*model.CreditCard) error

	// User operations
	GetUser(ctx context.Context, userID string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

// TransactionDocID derives the storage id of a transaction from its owner and
// fingerprint. Two writes of the same event always target the same id.
func TransactionDocID(userID, hash string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + hash))
	return hex.EncodeToString(sum[:20])
}

// checkTransition applies the challenge lifecycle rule to a stored status.
func checkTransition(current, next model.ChallengeStatus) error {
	if current.IsTerminal() {
		return ErrTerminalState
	}
	if !current.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	return nil
}

// inRange reports whether date falls inside the inclusive [start, end] range.
// Empty bounds are open. Dates use model.DateLayout so string order is date order.
func inRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
