package matching

// DTOs for API requests/responses

type FindMatchesParams struct {
	Limit       int           `json:"limit"`
	StudentType *string       `json:"student_type,omitempty" validate:"omitempty,oneof=international local exchange"`
	Weights     *MatchWeights `json:"weights,omitempty"`
}

type CompatibilityResponse struct {
	UserID  string        `json:"user_id"`
	MatchID string        `json:"match_id"`
	Score   float64       `json:"score"`
	Factors *MatchFactors `json:"factors"`
}

type MatchesResponse struct {
	Matches []*MatchScore `json:"matches"`
	Count   int           `json:"count"`
}
