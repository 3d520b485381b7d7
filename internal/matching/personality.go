package matching

import (
	"math"
)

// PersonalityScore measures how similar two trait vectors are, as
// 1 - (total Manhattan distance / maximum possible distance). Identical
// vectors score 1.0; vectors at opposite extremes on every trait score
// 0.0. The function is symmetric in its arguments.
func PersonalityScore(a, b PersonalityTraits) float64 {
	totalDifference := math.Abs(a.Openness-b.Openness) +
		math.Abs(a.Conscientiousness-b.Conscientiousness) +
		math.Abs(a.Extraversion-b.Extraversion) +
		math.Abs(a.Agreeableness-b.Agreeableness) +
		math.Abs(a.Neuroticism-b.Neuroticism)

	// Each of the five traits differs by at most 1.
	return clamp01(1 - totalDifference/5)
}

// PersonalitiesCompatible reports whether two trait vectors meet the
// given similarity threshold.
func PersonalitiesCompatible(a, b PersonalityTraits, threshold float64) bool {
	return PersonalityScore(a, b) >= threshold
}
