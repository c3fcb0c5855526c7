// Package challenge evaluates and proposes savings challenges.
//
// A challenge starts Active and moves exactly once, to Completed or Failed.
// The oracle judges outcomes and proposes new challenges; this package
// validates everything it says before anything is written.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/store"
)

// CanTransition reports whether a challenge may move from one status to another.
func CanTransition(from, to model.ChallengeStatus) bool {
	return from.CanTransitionTo(to)
}

// StatusUpdate is an applied evaluation outcome.
type StatusUpdate struct {
	ChallengeID string                `json:"id"`
	Name        string                `json:"name"`
	Status      model.ChallengeStatus `json:"status"`
}

// Engine runs challenge evaluation and generation for one cycle.
type Engine struct {
	reasoner reasoner.Reasoner
	store    store.Store
	policy   config.ChallengePolicy
	now      func() time.Time
	log      logrus.FieldLogger
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for start dates and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with the given generation policy.
func NewEngine(r reasoner.Reasoner, s store.Store, policy config.ChallengePolicy, log logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{
		reasoner: r,
		store:    s,
		policy:   policy,
		now:      time.Now,
		log:      log.WithField("component", "challenge"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type evaluationRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// EvaluateActive asks the oracle whether each active challenge was met and
// applies the terminal outcomes. Nothing is written unless the whole response
// parses.
func (e *Engine) EvaluateActive(ctx context.Context, userID string, active []*model.Challenge, history []*model.Transaction, lines []model.RawLine) ([]StatusUpdate, error) {
	const op = "challenge.EvaluateActive"
	if len(active) == 0 {
		return nil, nil
	}

	completion, err := e.reasoner.Generate(ctx, evaluationPrompt(active, history, lines))
	if err != nil {
		return nil, model.NewError(model.ErrEvaluation, op, "evaluation request failed", err)
	}

	var records []evaluationRecord
	if err := reasoner.DecodeArray(completion, &records); err != nil {
		return nil, model.NewError(model.ErrEvaluation, op, "unparsable evaluation response", err)
	}

	byID := make(map[string]*model.Challenge, len(active))
	for _, c := range active {
		byID[c.ID] = c
	}

	var pending []StatusUpdate
	decided := make(map[string]bool, len(records))
	for _, rec := range records {
		log := e.log.WithFields(logrus.Fields{"challengeId": rec.ID, "status": rec.Status})
		c, ok := byID[rec.ID]
		if !ok {
			log.Warn("Challenge.Evaluate.UnknownID")
			continue
		}
		if decided[rec.ID] {
			log.Warn("Challenge.Evaluate.RepeatedID")
			continue
		}
		status, ok := parseStatus(rec.Status)
		if !ok {
			log.Warn("Challenge.Evaluate.UnknownStatus")
			continue
		}
		if !CanTransition(c.Status, status) {
			log.Debug("Challenge.Evaluate.NoTransition")
			continue
		}
		decided[rec.ID] = true
		pending = append(pending, StatusUpdate{ChallengeID: c.ID, Name: c.Name, Status: status})
	}

	applied := make([]StatusUpdate, 0, len(pending))
	for _, u := range pending {
		err := e.store.UpdateChallengeStatus(ctx, userID, u.ChallengeID, u.Status)
		if errors.Is(err, store.ErrTerminalState) {
			e.log.WithField("challengeId", u.ChallengeID).Info("Challenge.Evaluate.AlreadyTerminal")
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			e.log.WithField("challengeId", u.ChallengeID).Warn("Challenge.Evaluate.Vanished")
			continue
		}
		if err != nil {
			return applied, model.NewError(model.ErrPersistence, op, "status update failed", err)
		}
		applied = append(applied, u)
	}
	return applied, nil
}

func parseStatus(s string) (model.ChallengeStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range []model.ChallengeStatus{model.ChallengeStatusActive, model.ChallengeStatusCompleted, model.ChallengeStatusFailed} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

type proposalRecord struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Category     string          `json:"category"`
}

// GenerateNext proposes the next cycle's challenges from the statement and
// writes them in one batch.
func (e *Engine) GenerateNext(ctx context.Context, userID string, lines []model.RawLine) ([]*model.Challenge, error) {
	const op = "challenge.GenerateNext"

	completion, err := e.reasoner.Generate(ctx, generationPrompt(e.policy, lines))
	if err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "generation request failed", err)
	}

	var records []proposalRecord
	if err := reasoner.DecodeArray(completion, &records); err != nil {
		return nil, model.NewError(model.ErrGeneration, op, "unparsable generation response", err)
	}

	now := e.now().UTC()
	start := now.Format(model.DateLayout)
	end := now.AddDate(0, 0, e.policy.PeriodDays).Format(model.DateLayout)

	challenges := make([]*model.Challenge, 0, e.policy.PerCycle)
	for _, rec := range records {
		if len(challenges) == e.policy.PerCycle {
			break
		}
		if !rec.TargetAmount.IsPositive() {
			e.log.WithField("name", rec.Name).Warn("Challenge.Generate.NonPositiveTarget")
			continue
		}
		// Targets must stay strictly below the ceiling.
		if !rec.TargetAmount.LessThan(e.policy.MaxTarget) {
			e.log.WithFields(logrus.Fields{"name": rec.Name, "target": rec.TargetAmount.String()}).Warn("Challenge.Generate.TargetAtCeiling")
			continue
		}
		target := rec.TargetAmount
		category := model.NormalizeCategory(rec.Category)
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			name = fmt.Sprintf("Keep %s under $%s", category, target.StringFixed(2))
		}

		challenges = append(challenges, &model.Challenge{
			Name:         name,
			Description:  strings.TrimSpace(rec.Description),
			TargetAmount: target,
			Category:     category,
			StartDate:    start,
			EndDate:      end,
			Status:       model.ChallengeStatusActive,
			UserID:       userID,
			CreatedAt:    now,
		})
	}
	if len(challenges) < e.policy.PerCycle {
		e.log.WithFields(logrus.Fields{
			"wanted": e.policy.PerCycle,
			"got":    len(challenges),
		}).Warn("Challenge.Generate.ShortCycle")
	}
	if len(challenges) == 0 {
		return challenges, nil
	}

	if err := e.store.InsertChallenges(ctx, challenges); err != nil {
		return nil, model.NewError(model.ErrPersistence, op, "insert failed", err)
	}
	return challenges, nil
}
