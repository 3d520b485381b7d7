package matching

import (
	"fmt"
	"math"
)

// DefaultWeights is the domain-tuned split used when a user has no saved
// preferences. Already normalized (sums to 1).
var DefaultWeights = MatchWeights{
	Location:     0.2,
	Interests:    0.25,
	Languages:    0.15,
	Goals:        0.1,
	Availability: 0.1,
	Personality:  0.1,
	Network:      0.1,
}

// neutralAvailability stands in for the availability factor until
// schedule data is collected.
const neutralAvailability = 0.5

// ValidateWeights rejects malformed weight vectors. Negative or
// non-numeric (NaN/Inf) values are an error; they are never clamped.
func ValidateWeights(w MatchWeights) error {
	for name, value := range weightEntries(w) {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidWeights, name)
		}
		if value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWeights, name)
		}
	}
	return nil
}

// NormalizeWeights scales the vector so the weights sum to 1. An all-zero
// vector falls back to an equal split. Idempotent within floating-point
// tolerance.
func NormalizeWeights(w MatchWeights) MatchWeights {
	sum := w.Location + w.Interests + w.Languages + w.Goals +
		w.Availability + w.Personality + w.Network

	if sum == 0 {
		equal := 1.0 / 7
		return MatchWeights{
			Location:     equal,
			Interests:    equal,
			Languages:    equal,
			Goals:        equal,
			Availability: equal,
			Personality:  equal,
			Network:      equal,
		}
	}

	return MatchWeights{
		Location:     w.Location / sum,
		Interests:    w.Interests / sum,
		Languages:    w.Languages / sum,
		Goals:        w.Goals / sum,
		Availability: w.Availability / sum,
		Personality:  w.Personality / sum,
		Network:      w.Network / sum,
	}
}

// aggregate combines a factor breakdown into one overall score using a
// normalized weight vector. The network weight applies to the
// shared-activity factor and the goals weight to institutional affinity.
func aggregate(f *MatchFactors, w MatchWeights) float64 {
	return f.Location*w.Location +
		f.Interests*w.Interests +
		f.Languages*w.Languages +
		f.University*w.Goals +
		f.Availability*w.Availability +
		f.Personality*w.Personality +
		f.Activities*w.Network
}

func weightEntries(w MatchWeights) map[string]float64 {
	return map[string]float64{
		"location":     w.Location,
		"interests":    w.Interests,
		"languages":    w.Languages,
		"goals":        w.Goals,
		"availability": w.Availability,
		"personality":  w.Personality,
		"network":      w.Network,
	}
}
