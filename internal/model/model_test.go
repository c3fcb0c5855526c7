package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Dining", CategoryDining},
		{"dining", CategoryDining},
		{"  Health   &  Wellness ", CategoryHealthWellness},
		{"Travel and Transport", CategoryTravelTransport},
		{"Bills & Utilities", CategoryBillsUtilities},
		{"Income", CategoryIncome},
		{"Other", CategoryOthers},
		{"Crypto", CategoryOthers},
		{"", CategoryOthers},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeCategory(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryShopping.Valid())
	assert.False(t, Category("dining").Valid())
	assert.False(t, Category("Luxury").Valid())
}

func TestChallengeStatus(t *testing.T) {
	assert.False(t, ChallengeStatusActive.IsTerminal())
	assert.True(t, ChallengeStatusCompleted.IsTerminal())
	assert.True(t, ChallengeStatusFailed.IsTerminal())
	assert.True(t, ChallengeStatusFailed.Valid())
	assert.False(t, ChallengeStatus("Paused").Valid())

	assert.True(t, ChallengeStatusActive.CanTransitionTo(ChallengeStatusCompleted))
	assert.True(t, ChallengeStatusActive.CanTransitionTo(ChallengeStatusFailed))
	assert.False(t, ChallengeStatusActive.CanTransitionTo(ChallengeStatusActive))
	assert.False(t, ChallengeStatusCompleted.CanTransitionTo(ChallengeStatusFailed))
	assert.False(t, ChallengeStatusFailed.CanTransitionTo(ChallengeStatusActive))
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("upload: %w", NewError(ErrClassification, "ingest.Classify", "unparsable response", cause))

	assert.Equal(t, ErrClassification, KindOf(err))
	assert.True(t, IsKind(err, ErrClassification))
	assert.False(t, IsKind(err, ErrEvaluation))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &Error{Kind: ErrClassification})
	assert.Contains(t, err.Error(), "CLASSIFICATION_FAILED")

	assert.Equal(t, ErrInternal, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, ErrInternal))
}
