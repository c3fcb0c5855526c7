package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/spendwise/backend/internal/challenge"
	"github.com/spendwise/backend/internal/ingest"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/statement"
)

// UploadResult is the outcome of one ingestion cycle.
type UploadResult struct {
	Transactions     []*model.Transaction     `json:"transactions"`
	Message          string                   `json:"message"`
	Inserted         int                      `json:"inserted"`
	Duplicates       int                      `json:"duplicates"`
	ChallengeUpdates []challenge.StatusUpdate `json:"challenge_updates"`
	NewChallenges    []*model.Challenge       `json:"new_challenges"`
}

// UploadStatement runs one ingestion cycle for userID: parse, classify and
// evaluate in parallel, persist, then propose the next challenges.
func (s *FinanceService) UploadStatement(ctx context.Context, userID, filename string, data []byte) (*UploadResult, error) {
	const op = "service.UploadStatement"
	log := s.log.WithFields(logrus.Fields{"userId": userID, "filename": filename})

	lines, err := statement.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	log = log.WithField("lines", len(lines))

	if s.archive != nil {
		if path, err := s.archive.Put(ctx, userID, filename, data); err != nil {
			log.WithError(err).Warn("Upload.Archive.Error")
		} else {
			log = log.WithField("archive", path)
		}
	}

	// Evaluation sees the transactions as they were before this upload.
	history, err := s.store.ListTransactions(ctx, userID, "", "")
	if err != nil {
		return nil, storeError(op, err)
	}
	active, err := s.store.ListChallenges(ctx, userID, model.ChallengeStatusActive)
	if err != nil {
		return nil, storeError(op, err)
	}

	var (
		classified []ingest.Classified
		updates    []challenge.StatusUpdate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		classified, err = s.pipeline.Classify(gctx, lines)
		return err
	})
	g.Go(func() error {
		var err error
		updates, err = s.engine.EvaluateActive(gctx, userID, active, history, lines)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Upload.Analyse.Error")
		return nil, err
	}

	persisted, err := s.pipeline.Persist(ctx, userID, classified)
	if err != nil {
		return nil, err
	}

	next, err := s.engine.GenerateNext(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		Transactions:     persisted.Inserted,
		Inserted:         persisted.InsertedCount,
		Duplicates:       persisted.DuplicateCount,
		ChallengeUpdates: updates,
		NewChallenges:    next,
		Message:          uploadMessage(persisted.InsertedCount, persisted.DuplicateCount),
	}
	if result.Transactions == nil {
		result.Transactions = []*model.Transaction{}
	}
	if result.NewChallenges == nil {
		result.NewChallenges = []*model.Challenge{}
	}
	if result.ChallengeUpdates == nil {
		result.ChallengeUpdates = []challenge.StatusUpdate{}
	}

	log.WithFields(logrus.Fields{
		"inserted":         result.Inserted,
		"duplicates":       result.Duplicates,
		"challengeUpdates": len(updates),
		"newChallenges":    len(next),
	}).Info("Upload.Complete")
	return result, nil
}

func uploadMessage(inserted, duplicates int) string {
	if inserted == 0 && duplicates > 0 {
		return fmt.Sprintf("No new transactions: all %d transactions were already imported", duplicates)
	}
	msg := fmt.Sprintf("Statement processed successfully: %d new transactions", inserted)
	if duplicates > 0 {
		msg += fmt.Sprintf(", %d duplicates skipped", duplicates)
	}
	return msg
}
