// Package model defines the domain types shared by the ingestion pipeline,
// the challenge engine and the stores.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical transaction date format. Range filters compare
// dates as strings, so every stored date must use this zero-padded layout.
const DateLayout = "2006-01-02"

// TransactionType tells money flowing in from money flowing out.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "Credit"
	TransactionTypeDebit  TransactionType = "Debit"
)

// Transaction is a classified, fingerprinted statement line owned by one user.
type Transaction struct {
	ID              string          `json:"id,omitempty"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description,omitempty"`
	Category        Category        `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	Hash            string          `json:"hash"`
	UserID          string          `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ChallengeStatus is the lifecycle state of a savings challenge.
type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "Active"
	ChallengeStatusCompleted ChallengeStatus = "Completed"
	ChallengeStatusFailed    ChallengeStatus = "Failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeStatusActive, ChallengeStatusCompleted, ChallengeStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a challenge in state s may move to next.
// Active is the only non-terminal state and it may only move to a terminal one.
func (s ChallengeStatus) CanTransitionTo(next ChallengeStatus) bool {
	return s == ChallengeStatusActive && next.IsTerminal()
}

// Challenge is a savings goal for one category over a fixed period.
type Challenge struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Category     Category        `json:"category"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       ChallengeStatus `json:"status"`
	UserID       string          `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RawLine is one row of an uploaded statement before classification.
type RawLine struct {
	Date        string
	Description string
	Amount      decimal.Decimal
}

// CreditCard is a card offering used for recommendations.
type CreditCard struct {
	ID        string            `json:"id,omitempty" firestore:"-"`
	Name      string            `json:"name" firestore:"name"`
	Provider  string            `json:"provider" firestore:"provider"`
	Cashback  map[string]string `json:"cashback" firestore:"cashback"`
	AnnualFee string            `json:"annual_fee" firestore:"annual_fee"`
	APR       string            `json:"APR" firestore:"APR"`
	Benefits  string            `json:"benefits" firestore:"benefits"`
}

// User is the stored profile of an authenticated identity.
type User struct {
	ID        string    `json:"id" firestore:"-"`
	Email     string    `json:"email" firestore:"email"`
	Name      string    `json:"name" firestore:"name"`
	Picture   string    `json:"picture" firestore:"picture"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}
