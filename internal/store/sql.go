package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/spendwise/backend/internal/model"
)

// transactionRow carries the (user_id, hash) unique index that makes
// concurrent imports of the same statement safe.
type transactionRow struct {
	ID              string `gorm:"primaryKey;size:64"`
	UserID          string `gorm:"size:128;not null;uniqueIndex:idx_transactions_user_hash;index:idx_transactions_user_date"`
	Hash            string `gorm:"size:32;not null;uniqueIndex:idx_transactions_user_hash"`
	TransactionDate string `gorm:"size:10;not null;index:idx_transactions_user_date"`
	Description     string `gorm:"size:512"`
	Category        string `gorm:"size:64"`
	Amount          string `gorm:"size:64;not null"`
	Type            string `gorm:"size:16"`
	CreatedAt       time.Time
}

func (transactionRow) TableName() string { return "transactions" }

type challengeRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	UserID       string `gorm:"size:128;not null;index"`
	Name         string `gorm:"size:255"`
	Description  string `gorm:"size:1024"`
	TargetAmount string `gorm:"size:64"`
	Category     string `gorm:"size:64"`
	StartDate    string `gorm:"size:10"`
	EndDate      string `gorm:"size:10"`
	Status       string `gorm:"size:16;index"`
	CreatedAt    time.Time
}

func (challengeRow) TableName() string { return "challenges" }

type creditCardRow struct {
	ID        string            `gorm:"primaryKey;size:64"`
	Name      string            `gorm:"size:255"`
	Provider  string            `gorm:"size:255"`
	Cashback  map[string]string `gorm:"serializer:json"`
	AnnualFee string            `gorm:"size:64"`
	APR       string            `gorm:"size:64"`
	Benefits  string            `gorm:"size:2048"`
}

func (creditCardRow) TableName() string { return "credit_cards" }

type userRow struct {
	ID        string `gorm:"primaryKey;size:128"`
	Email     string `gorm:"size:255"`
	Name      string `gorm:"size:255"`
	Picture   string `gorm:"size:1024"`
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

// SQLStore implements Store on a relational database through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database at path and migrates it.
func OpenSQLite(path string, log logrus.FieldLogger) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	// ":memory:" databases answer "memory" instead of "wal".
	var mode string
	if err := sqlDB.QueryRow("PRAGMA journal_mode = WAL;").Scan(&mode); err != nil {
		log.WithError(err).WithField("path", path).Warn("Store.SQLite.JournalMode")
	} else if !strings.EqualFold(mode, "wal") {
		log.WithFields(logrus.Fields{"path": path, "journalMode": mode}).Warn("Store.SQLite.JournalMode")
	}

	return NewSQLStore(db)
}

// NewSQLStore wraps an open gorm handle and migrates the schema.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&transactionRow{}, &challengeRow{}, &creditCardRow{}, &userRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) TransactionExists(ctx context.Context, userID, hash string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&transactionRow{}).
		Where("user_id = ? AND hash = ?", userID, hash).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
	return n > 0, nil
}

// InsertTransactions inserts row by row with ON CONFLICT DO NOTHING; a row the
// unique index swallowed is reported as a duplicate.
func (s *SQLStore) InsertTransactions(ctx context.Context, txs []*model.Transaction) (*InsertResult, error) {
	result := &InsertResult{}
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		for _, tx := range txs {
			row := transactionRow{
				ID:              TransactionDocID(tx.UserID, tx.Hash),
				UserID:          tx.UserID,
				Hash:            tx.Hash,
				TransactionDate: tx.TransactionDate,
				Description:     tx.Description,
				Category:        string(tx.Category),
				Amount:          tx.Amount.String(),
				Type:            string(tx.Type),
				CreatedAt:       tx.CreatedAt,
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("failed to save transaction: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				result.Duplicates = append(result.Duplicates, tx)
				continue
			}
			tx.ID = row.ID
			result.Inserted = append(result.Inserted, tx)
		}
		return nil
	})
	if err != nil {
		return &InsertResult{}, err
	}
	return result, nil
}

func (s *SQLStore) ListTransactions(ctx context.Context, userID, startDate, endDate string) ([]*model.Transaction, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if startDate != "" {
		query = query.Where("transaction_date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("transaction_date <= ?", endDate)
	}

	var rows []transactionRow
	if err := query.Order("transaction_date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]*model.Transaction, 0, len(rows))
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad amount %q: %w", r.ID, r.Amount, err)
		}
		out = append(out, &model.Transaction{
			ID:              r.ID,
			TransactionDate: r.TransactionDate,
			Description:     r.Description,
			Category:        model.Category(r.Category),
			Amount:          amount,
			Type:            model.TransactionType(r.Type),
			Hash:            r.Hash,
			UserID:          r.UserID,
			CreatedAt:       r.CreatedAt,
		})
	}
	return out, nil
}

func (s *SQLStore) InsertChallenges(ctx context.Context, challenges []*model.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	rows := make([]challengeRow, 0, len(challenges))
	for _, c := range challenges {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		rows = append(rows, challengeRow{
			ID:           c.ID,
			UserID:       c.UserID,
			Name:         c.Name,
			Description:  c.Description,
			TargetAmount: c.TargetAmount.String(),
			Category:     string(c.Category),
			StartDate:    c.StartDate,
			EndDate:      c.EndDate,
			Status:       string(c.Status),
			CreatedAt:    c.CreatedAt,
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save challenges: %w", err)
	}
	return nil
}

func (s *SQLStore) ListChallenges(ctx context.Context, userID string, status model.ChallengeStatus) ([]*model.Challenge, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var rows []challengeRow
	if err := query.Order("created_at DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	out := make([]*model.Challenge, 0, len(rows))
	for _, r := range rows {
		target, err := decimal.NewFromString(r.TargetAmount)
		if err != nil {
			return nil, fmt.Errorf("challenge %s: bad target %q: %w", r.ID, r.TargetAmount, err)
		}
		out = append(out, &model.Challenge{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			TargetAmount: target,
			Category:     model.Category(r.Category),
			StartDate:    r.StartDate,
			EndDate:      r.EndDate,
			Status:       model.ChallengeStatus(r.Status),
			UserID:       r.UserID,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, nil
}

// UpdateChallengeStatus guards the write with the current status so a
// concurrent terminal update wins and this one reports ErrTerminalState.
func (s *SQLStore) UpdateChallengeStatus(ctx context.Context, userID, challengeID string, next model.ChallengeStatus) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var row challengeRow
		err := db.Where("id = ? AND user_id = ?", challengeID, userID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read challenge: %w", err)
		}
		if err := checkTransition(model.ChallengeStatus(row.Status), next); err != nil {
			return fmt.Errorf("challenge %s: %w", challengeID, err)
		}

		res := db.Model(&challengeRow{}).
			Where("id = ? AND status = ?", challengeID, row.Status).
			Update("status", string(next))
		if res.Error != nil {
			return fmt.Errorf("failed to update challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("challenge %s: %w", challengeID, ErrTerminalState)
		}
		return nil
	})
}

func (s *SQLStore) ListCreditCards(ctx context.Context, limit int) ([]*model.CreditCard, error) {
	query := s.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []creditCardRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list credit cards: %w", err)
	}

	out := make([]*model.CreditCard, 0, len(rows))
	for _, r := range rows {
		out = append(out, &model.CreditCard{
			ID:        r.ID,
			Name:      r.Name,
			Provider:  r.Provider,
			Cashback:  r.Cashback,
			AnnualFee: r.AnnualFee,
			APR:       r.APR,
			Benefits:  r.Benefits,
		})
	}
	return out, nil
}

func (s *SQLStore) PutCreditCards(ctx context.Context, cards []*model.CreditCard) error {
	if len(cards) == 0 {
		return nil
	}
	rows := make([]creditCardRow, 0, len(cards))
	for _, card := range cards {
		if card.ID == "" {
			card.ID = uuid.New().String()
		}
		rows = append(rows, creditCardRow{
			ID:        card.ID,
			Name:      card.Name,
			Provider:  card.Provider,
			Cashback:  card.Cashback,
			AnnualFee: card.AnnualFee,
			APR:       card.APR,
			Benefits:  card.Benefits,
		})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to save credit cards: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &model.User{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		Picture:   row.Picture,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user *model.User) error {
	row := userRow{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		CreatedAt: user.CreatedAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to create user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrAlreadyExists)
	}
	return nil
}
