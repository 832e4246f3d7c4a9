package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnboardingStepRankOrdering(t *testing.T) {
	steps := []OnboardingStep{
		OnboardingStepNone,
		OnboardingStepAccountCreated,
		OnboardingStepStakeholderAdded,
		OnboardingStepProductRequested,
		OnboardingStepSettlementSubmitted,
	}
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].Rank(), steps[i-1].Rank(), "%s must outrank %s", steps[i], steps[i-1])
	}
}

func TestOnboardingStepRankUnknownIsLowest(t *testing.T) {
	assert.Equal(t, 0, OnboardingStep("BOGUS").Rank())
	assert.Equal(t, 0, OnboardingStepNone.Rank())
}
