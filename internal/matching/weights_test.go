package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func weightsSum(w MatchWeights) float64 {
	return w.Location + w.Interests + w.Languages + w.Goals +
		w.Availability + w.Personality + w.Network
}

func TestDefaultWeightsAreNormalized(t *testing.T) {
	assert.InDelta(t, 1.0, weightsSum(DefaultWeights), 1e-9)
}

func TestNormalizeWeightsSumsToOne(t *testing.T) {
	w := MatchWeights{
		Location:     3,
		Interests:    1,
		Languages:    0.5,
		Goals:        2,
		Availability: 0.25,
		Personality:  1,
		Network:      0.75,
	}

	normalized := NormalizeWeights(w)
	assert.InDelta(t, 1.0, weightsSum(normalized), 1e-9)
}

func TestNormalizeWeightsTwoNonZero(t *testing.T) {
	w := MatchWeights{Location: 2, Interests: 2}

	normalized := NormalizeWeights(w)
	assert.InDelta(t, 0.5, normalized.Location, 1e-9)
	assert.InDelta(t, 0.5, normalized.Interests, 1e-9)
	assert.Equal(t, 0.0, normalized.Languages)
	assert.Equal(t, 0.0, normalized.Goals)
	assert.Equal(t, 0.0, normalized.Availability)
	assert.Equal(t, 0.0, normalized.Personality)
	assert.Equal(t, 0.0, normalized.Network)
}

func TestNormalizeWeightsAllZeroFallsBackToEqualSplit(t *testing.T) {
	normalized := NormalizeWeights(MatchWeights{})

	assert.InDelta(t, 1.0/7.0, normalized.Location, 1e-9)
	assert.InDelta(t, 1.0/7.0, normalized.Network, 1e-9)
	assert.InDelta(t, 1.0, weightsSum(normalized), 1e-9)
}

func TestNormalizeWeightsIdempotent(t *testing.T) {
	vectors := []MatchWeights{
		{Location: 2, Interests: 2},
		{Location: 0.1, Interests: 0.9, Languages: 0.4, Goals: 0.2, Availability: 0.3, Personality: 0.7, Network: 0.5},
		DefaultWeights,
	}

	for _, w := range vectors {
		once := NormalizeWeights(w)
		twice := NormalizeWeights(once)

		assert.InDelta(t, once.Location, twice.Location, 1e-9)
		assert.InDelta(t, once.Interests, twice.Interests, 1e-9)
		assert.InDelta(t, once.Languages, twice.Languages, 1e-9)
		assert.InDelta(t, once.Goals, twice.Goals, 1e-9)
		assert.InDelta(t, once.Availability, twice.Availability, 1e-9)
		assert.InDelta(t, once.Personality, twice.Personality, 1e-9)
		assert.InDelta(t, once.Network, twice.Network, 1e-9)
	}
}

func TestValidateWeightsRejectsNegative(t *testing.T) {
	err := ValidateWeights(MatchWeights{Location: -0.1, Interests: 0.5})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestValidateWeightsRejectsNaN(t *testing.T) {
	err := ValidateWeights(MatchWeights{Personality: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	err = ValidateWeights(MatchWeights{Network: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestValidateWeightsAcceptsZeroVector(t *testing.T) {
	// All-zero is valid input; normalization turns it into an equal split.
	assert.NoError(t, ValidateWeights(MatchWeights{}))
}

func TestAggregateBounds(t *testing.T) {
	full := &MatchFactors{
		Interests:    1,
		Languages:    1,
		Location:     1,
		Personality:  1,
		Activities:   1,
		University:   1,
		Availability: 1,
	}
	empty := &MatchFactors{}

	assert.InDelta(t, 1.0, aggregate(full, DefaultWeights), 1e-9)
	assert.Equal(t, 0.0, aggregate(empty, DefaultWeights))
}

func TestAggregateWeighted(t *testing.T) {
	factors := &MatchFactors{
		Interests:    0.5,
		Location:     1.0,
		Availability: neutralAvailability,
	}
	weights := NormalizeWeights(MatchWeights{Location: 2, Interests: 2})

	// 0.5*1.0 + 0.5*0.5; availability carries no weight here.
	assert.InDelta(t, 0.75, aggregate(factors, weights), 1e-9)
}
