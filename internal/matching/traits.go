package matching

import (
	"strings"
)

// Keyword lists used for trait inference. Matching is case-insensitive
// substring presence; each keyword found in the text counts once.
var (
	opennessKeywords = []string{
		"creative", "curious", "adventurous", "artistic", "imaginative",
		"innovative", "explore", "learn", "discover", "experience",
	}

	conscientiousnessKeywords = []string{
		"organized", "responsible", "disciplined", "efficient", "planned",
		"thorough", "detail", "systematic", "punctual", "reliable",
	}

	extraversionKeywords = []string{
		"outgoing", "social", "energetic", "enthusiastic", "talkative",
		"friendly", "party", "group", "people", "active",
	}

	agreeablenessKeywords = []string{
		"kind", "cooperative", "sympathetic", "helpful", "warm",
		"considerate", "friendly", "generous", "trusting", "understanding",
	}

	neuroticismKeywords = []string{
		"anxious", "sensitive", "nervous", "moody", "emotional",
		"stressed", "worry", "tense", "self-conscious", "vulnerable",
	}
)

// proficiencyLevels maps self-reported language proficiency to a scalar.
// Unknown values contribute 0.
var proficiencyLevels = map[string]float64{
	"beginner":     0.25,
	"intermediate": 0.5,
	"advanced":     0.75,
	"native":       1.0,
}

// InferTraits derives a Big Five trait vector from a profile's free text,
// interests and languages. Every trait starts at a neutral 0.5 prior and
// is nudged by keyword hits; absent fields contribute nothing. The result
// is clamped to [0,1] per trait and is deterministic for a given profile.
//
// This is a keyword heuristic. Short or sarcastic bios will be
// misclassified; that is a documented limitation, not a bug.
func InferTraits(p *Profile) PersonalityTraits {
	traits := PersonalityTraits{
		Openness:          0.5,
		Conscientiousness: 0.5,
		Extraversion:      0.5,
		Agreeableness:     0.5,
		Neuroticism:       0.5,
	}

	if p.Bio != nil && *p.Bio != "" {
		traits.Openness += float64(countKeywords(*p.Bio, opennessKeywords)) * 0.1
		traits.Conscientiousness += float64(countKeywords(*p.Bio, conscientiousnessKeywords)) * 0.1
		traits.Extraversion += float64(countKeywords(*p.Bio, extraversionKeywords)) * 0.1
		traits.Agreeableness += float64(countKeywords(*p.Bio, agreeablenessKeywords)) * 0.1
		traits.Neuroticism += float64(countKeywords(*p.Bio, neuroticismKeywords)) * 0.1
	}

	// Cultural insight text only informs openness and agreeableness.
	if p.CulturalInsight != nil && *p.CulturalInsight != "" {
		traits.Openness += float64(countKeywords(*p.CulturalInsight, opennessKeywords)) * 0.15
		traits.Agreeableness += float64(countKeywords(*p.CulturalInsight, agreeablenessKeywords)) * 0.15
	}

	if len(p.Interests) > 0 {
		traits.Openness += interestDiversity(p.Interests) * 0.2
		traits.Extraversion += (float64(len(p.Interests)) / 10) * 0.1
	}

	if len(p.Languages) > 0 {
		traits.Openness += (float64(len(p.Languages)) / 3) * 0.1
		traits.Conscientiousness += averageProficiency(p.Languages) * 0.1
	}

	return clampTraits(traits)
}

// countKeywords returns how many of the keywords appear in text, counting
// each keyword at most once.
func countKeywords(text string, keywords []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			count++
		}
	}
	return count
}

// interestDiversity scores how spread out a user's interests are,
// normalized against five distinct areas and capped at 1.
func interestDiversity(interests []string) float64 {
	distinct := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		distinct[strings.ToLower(interest)] = struct{}{}
	}

	diversity := float64(len(distinct)) / 5
	if diversity > 1 {
		diversity = 1
	}
	return diversity
}

// averageProficiency maps each language's proficiency through
// proficiencyLevels and averages the result.
func averageProficiency(languages []Language) float64 {
	if len(languages) == 0 {
		return 0
	}

	sum := 0.0
	for _, lang := range languages {
		sum += proficiencyLevels[strings.ToLower(lang.Proficiency)]
	}
	return sum / float64(len(languages))
}

func clampTraits(t PersonalityTraits) PersonalityTraits {
	return PersonalityTraits{
		Openness:          clamp01(t.Openness),
		Conscientiousness: clamp01(t.Conscientiousness),
		Extraversion:      clamp01(t.Extraversion),
		Agreeableness:     clamp01(t.Agreeableness),
		Neuroticism:       clamp01(t.Neuroticism),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
