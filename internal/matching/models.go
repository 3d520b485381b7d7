package matching

import (
	"time"
)

// Profile is the read-only snapshot of a student profile the matching
// engine scores against. It is normalized at the repository boundary:
// interests are plain ids, languages always carry a proficiency, and
// location (when present) is a "lat,lng" string.
type Profile struct {
	ID              string     `json:"id" db:"id"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Nickname        *string    `json:"nickname,omitempty" db:"nickname"`
	Bio             *string    `json:"bio,omitempty" db:"bio"`
	CulturalInsight *string    `json:"cultural_insight,omitempty" db:"cultural_insight"`
	Nationality     *string    `json:"nationality,omitempty" db:"nationality"`
	StudentType     *string    `json:"student_type,omitempty" db:"student_type"` // international, local or exchange
	YearOfStudy     *int       `json:"year_of_study,omitempty" db:"year_of_study"`
	UniversityID    *string    `json:"university_id,omitempty" db:"university_id"`
	CampusID        *string    `json:"campus_id,omitempty" db:"campus_id"`
	MajorID         *string    `json:"major_id,omitempty" db:"major_id"`
	Location        *string    `json:"location,omitempty" db:"location"` // "lat,lng"
	AvatarURL       *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	IsVerified      bool       `json:"is_verified" db:"is_verified"`
	Interests       []string   `json:"interests"`
	Languages       []Language `json:"languages"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Language is one spoken language with self-reported proficiency
// (beginner, intermediate, advanced, fluent, native).
type Language struct {
	ID          string `json:"id" db:"language_id"`
	Proficiency string `json:"proficiency" db:"proficiency"`
}

// PersonalityTraits is the Big Five trait vector, every field in [0,1].
// Traits are derived from profile text by InferTraits, not self-reported;
// treat them as a heuristic, not a psychological assessment.
type PersonalityTraits struct {
	Openness          float64 `json:"openness" db:"openness"`
	Conscientiousness float64 `json:"conscientiousness" db:"conscientiousness"`
	Extraversion      float64 `json:"extraversion" db:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" db:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism" db:"neuroticism"`
}

// MatchWeights is the user-tunable importance vector over the seven match
// dimensions. Weights are normalized to sum to 1 before use and before
// persistence.
type MatchWeights struct {
	Location     float64 `json:"location" db:"location_weight" validate:"min=0,max=1"`
	Interests    float64 `json:"interests" db:"interests_weight" validate:"min=0,max=1"`
	Languages    float64 `json:"languages" db:"languages_weight" validate:"min=0,max=1"`
	Goals        float64 `json:"goals" db:"goals_weight" validate:"min=0,max=1"`
	Availability float64 `json:"availability" db:"availability_weight" validate:"min=0,max=1"`
	Personality  float64 `json:"personality" db:"personality_weight" validate:"min=0,max=1"`
	Network      float64 `json:"network" db:"network_weight" validate:"min=0,max=1"`
}

// MatchFactors is the per-dimension breakdown attached to every MatchScore
// for explainability. All values are in [0,1].
type MatchFactors struct {
	Interests    float64 `json:"interests"`
	Languages    float64 `json:"languages"`
	Location     float64 `json:"location"`
	Personality  float64 `json:"personality"`
	Activities   float64 `json:"activities"`
	University   float64 `json:"university"`
	Availability float64 `json:"availability"`
	Diversity    float64 `json:"diversity"`
}

// MatchScore is one ranked candidate: the overall weighted score, the
// factor breakdown it came from, and the candidate profile. Never mutated
// after creation.
type MatchScore struct {
	UserID  string        `json:"user_id"`
	Score   float64       `json:"score"`
	Profile *Profile      `json:"profile"`
	Factors *MatchFactors `json:"factors"`
}

// ActivityRef is one recorded interest/activity of a user, used for the
// shared-activity overlap factor.
type ActivityRef struct {
	ID       string `json:"id" db:"interest_id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
}

// CandidateFilter narrows the candidate pool fetched from the profile
// store. Exclusions (already matched, rejected) are computed by the caller.
type CandidateFilter struct {
	ExcludeIDs   []string `json:"exclude_ids"`
	CampusID     *string  `json:"campus_id,omitempty"`
	UniversityID *string  `json:"university_id,omitempty"`
	StudentType  *string  `json:"student_type,omitempty"`
	Limit        int      `json:"limit"`
}
