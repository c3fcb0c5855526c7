package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/backend/internal/auth"
	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/store"
)

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

func testPolicy() config.ChallengePolicy {
	return config.ChallengePolicy{PerCycle: 3, MaxTarget: decimal.NewFromInt(50), PeriodDays: 30}
}

func testClaims(userID string) *auth.UserClaims {
	return &auth.UserClaims{
		UID:         userID,
		Email:       userID + "@test.local",
		DisplayName: "Test User",
		Verified:    true,
	}
}

// scriptedReasoner answers each prompt with the reply of the first marker
// the prompt contains and records the prompts it saw.
type scriptedReasoner struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
}

type scriptedReply struct {
	marker string
	text   string
	err    error
}

const (
	classifyMarker  = "Classify each of the following"
	evaluateMarker  = "You track savings challenges"
	generateMarker  = "propose exactly"
	insightsMarker  = "financial advisor"
	recommendMarker = "Suggest the credit cards"
)

func newScriptedReasoner(replies ...scriptedReply) *scriptedReasoner {
	return &scriptedReasoner{replies: replies}
}

func (s *scriptedReasoner) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	for _, r := range s.replies {
		if strings.Contains(prompt, r.marker) {
			return r.text, r.err
		}
	}
	return "", errors.New("unexpected prompt")
}

// count reports how many prompts contained marker.
func (s *scriptedReasoner) count(marker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

func newTestService(r reasoner.Reasoner, st store.Store, opts ...Option) *FinanceService {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFinanceService(st, r, testPolicy(), logging.Discard(), opts...)
}
