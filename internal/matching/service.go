package matching

import (
	"context"
	"errors"
)

// Service is what handlers and other modules call. It wraps the engine
// with weight and trait persistence.
type Service interface {
	FindMatches(ctx context.Context, userID string, opts *FindMatchesOptions) ([]*MatchScore, error)
	CalculateCompatibility(ctx context.Context, userID, matchID string) (float64, *MatchFactors, error)

	AssessPersonality(ctx context.Context, userID string) (*PersonalityTraits, error)
	GetPersonalityTraits(ctx context.Context, userID string) (*PersonalityTraits, error)

	GetMatchWeights(ctx context.Context, userID string) (*MatchWeights, error)
	UpdateMatchWeights(ctx context.Context, userID string, weights MatchWeights) (*MatchWeights, error)
}

type service struct {
	repo   Repository
	engine Engine
}

func NewService(repo Repository, engine Engine) Service {
	return &service{
		repo:   repo,
		engine: engine,
	}
}

func (s *service) FindMatches(ctx context.Context, userID string, opts *FindMatchesOptions) ([]*MatchScore, error) {
	return s.engine.FindMatches(ctx, userID, opts)
}

func (s *service) CalculateCompatibility(ctx context.Context, userID, matchID string) (float64, *MatchFactors, error) {
	user, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return 0, nil, ErrSubjectNotFound
		}
		return 0, nil, err
	}

	match, err := s.repo.GetProfile(ctx, matchID)
	if err != nil {
		return 0, nil, err
	}

	return s.engine.CalculateCompatibility(ctx, user, match)
}

// AssessPersonality re-derives the subject's trait vector from their
// current profile and persists it, replacing any stored assessment.
func (s *service) AssessPersonality(ctx context.Context, userID string) (*PersonalityTraits, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	traits := s.engine.InferTraits(profile)
	if err := s.repo.UpsertPersonalityTraits(ctx, userID, traits); err != nil {
		return nil, err
	}

	recordTraitAssessment()
	return &traits, nil
}

// GetPersonalityTraits returns the persisted vector, running a fresh
// assessment when none exists yet.
func (s *service) GetPersonalityTraits(ctx context.Context, userID string) (*PersonalityTraits, error) {
	traits, err := s.repo.GetPersonalityTraits(ctx, userID)
	if err == nil {
		return traits, nil
	}
	if !errors.Is(err, ErrTraitsNotFound) {
		return nil, err
	}

	return s.AssessPersonality(ctx, userID)
}

// GetMatchWeights returns the user's saved weights, normalized, or the
// defaults when nothing is saved.
func (s *service) GetMatchWeights(ctx context.Context, userID string) (*MatchWeights, error) {
	saved, err := s.repo.GetMatchWeights(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrWeightsNotFound) {
			defaults := DefaultWeights
			return &defaults, nil
		}
		return nil, err
	}

	normalized := NormalizeWeights(*saved)
	return &normalized, nil
}

// UpdateMatchWeights validates, normalizes and persists a user's custom
// weight vector, returning what was stored.
func (s *service) UpdateMatchWeights(ctx context.Context, userID string, weights MatchWeights) (*MatchWeights, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	normalized := NormalizeWeights(weights)
	if err := s.repo.UpsertMatchWeights(ctx, userID, normalized); err != nil {
		return nil, err
	}

	return &normalized, nil
}
