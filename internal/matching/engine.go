package matching

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultMatchLimit caps the ranked result set when the caller does not
// ask for a specific size.
const DefaultMatchLimit = 10

// DefaultConcurrency bounds the per-candidate fan-out during a ranking
// pass.
const DefaultConcurrency = 8

// Engine scores a user against a candidate pool and returns a ranked,
// explainable result set.
type Engine interface {
	FindMatches(ctx context.Context, userID string, opts *FindMatchesOptions) ([]*MatchScore, error)
	CalculateCompatibility(ctx context.Context, user, match *Profile) (float64, *MatchFactors, error)
	InferTraits(profile *Profile) PersonalityTraits
}

// FindMatchesOptions tunes one ranking pass. The zero value means: pool
// from the profile store, the user's saved (or default) weights, and
// DefaultMatchLimit results.
type FindMatchesOptions struct {
	// Limit truncates the ranked result set.
	Limit int

	// Weights overrides the subject's saved weights for this pass.
	// Validated and normalized before use.
	Weights *MatchWeights

	// Candidates supplies an explicit pool. When nil and CandidateIDs is
	// empty the pool comes from the profile store, filtered to the
	// subject's campus.
	Candidates []*Profile

	// CandidateIDs supplies a pool by id; profiles that fail to load are
	// skipped.
	CandidateIDs []string

	// StudentType narrows a store-backed pool to one student category.
	// Ignored when an explicit pool is supplied.
	StudentType *string
}

// EngineConfig carries the tunables for a matching engine instance.
type EngineConfig struct {
	CacheTTL       time.Duration
	MaxDistanceKm  float64
	Concurrency    int
	DiversityBonus bool
	// DiversityWeight is the share of the overall score given to the
	// diversity dimension when DiversityBonus is on.
	DiversityWeight float64
}

type engine struct {
	repo          Repository
	cfg           EngineConfig
	traitCache    *ttlCache[PersonalityTraits]
	activityCache *ttlCache[[]ActivityRef]
}

// NewEngine builds a matching engine with its own cache instances. Caches
// are deliberately per-engine rather than package globals so tests can
// construct isolated engines with fake clocks.
func NewEngine(repo Repository, cfg EngineConfig) Engine {
	if cfg.MaxDistanceKm <= 0 {
		cfg.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.DiversityWeight <= 0 {
		cfg.DiversityWeight = 0.1
	}

	return &engine{
		repo:          repo,
		cfg:           cfg,
		traitCache:    newTTLCache[PersonalityTraits](cfg.CacheTTL),
		activityCache: newTTLCache[[]ActivityRef](cfg.CacheTTL),
	}
}

func (e *engine) FindMatches(ctx context.Context, userID string, opts *FindMatchesOptions) ([]*MatchScore, error) {
	if opts == nil {
		opts = &FindMatchesOptions{}
	}

	start := time.Now()
	defer func() { recordRankingDuration(time.Since(start)) }()
	recordMatchRequest()

	// 1. Load the subject profile; missing subject is fatal.
	subject, err := e.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	// 2. Resolve the weight vector for this pass.
	weights, err := e.resolveWeights(ctx, userID, opts.Weights)
	if err != nil {
		return nil, err
	}

	// 3. Resolve the candidate pool.
	pool, err := e.resolvePool(ctx, subject, opts)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	// 4. Score candidates concurrently, preserving input order so the
	// final stable sort is deterministic.
	results := make([]*MatchScore, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, ref := range pool {
		g.Go(func() error {
			candidate := ref.profile
			if candidate == nil {
				loaded, err := e.repo.GetProfile(gctx, ref.id)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					log.Printf("matching: skipping candidate %s: %v", ref.id, err)
					return nil
				}
				candidate = loaded
			}

			score, factors, err := e.scoreCandidate(gctx, subject, candidate, weights)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("matching: skipping candidate %s: %v", candidate.ID, err)
				return nil
			}

			results[i] = &MatchScore{
				UserID:  candidate.ID,
				Score:   score,
				Profile: candidate,
				Factors: factors,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Never hand back a partially scored batch as if it were complete.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// 5. Rank. Stable sort keeps equal-score candidates in input order.
	scored := make([]*MatchScore, 0, len(results))
	for _, match := range results {
		if match != nil {
			scored = append(scored, match)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	recordCandidatesScored(len(scored))
	return scored, nil
}

// CalculateCompatibility scores a single pair using the default weights.
func (e *engine) CalculateCompatibility(ctx context.Context, user, match *Profile) (float64, *MatchFactors, error) {
	return e.scoreCandidate(ctx, user, match, DefaultWeights)
}

// InferTraits exposes trait inference for standalone use, e.g. refreshing
// a persisted vector after a profile edit.
func (e *engine) InferTraits(profile *Profile) PersonalityTraits {
	return InferTraits(profile)
}

type candidateRef struct {
	id      string
	profile *Profile
}

func (e *engine) resolvePool(ctx context.Context, subject *Profile, opts *FindMatchesOptions) ([]candidateRef, error) {
	if len(opts.Candidates) > 0 {
		pool := make([]candidateRef, 0, len(opts.Candidates))
		for _, profile := range opts.Candidates {
			if profile.ID == subject.ID {
				continue
			}
			pool = append(pool, candidateRef{id: profile.ID, profile: profile})
		}
		return pool, nil
	}

	if len(opts.CandidateIDs) > 0 {
		pool := make([]candidateRef, 0, len(opts.CandidateIDs))
		for _, id := range opts.CandidateIDs {
			if id == subject.ID {
				continue
			}
			pool = append(pool, candidateRef{id: id})
		}
		return pool, nil
	}

	candidates, err := e.repo.GetCandidates(ctx, &CandidateFilter{
		ExcludeIDs:  []string{subject.ID},
		CampusID:    subject.CampusID,
		StudentType: opts.StudentType,
	})
	if err != nil {
		return nil, err
	}

	pool := make([]candidateRef, 0, len(candidates))
	for _, profile := range candidates {
		pool = append(pool, candidateRef{id: profile.ID, profile: profile})
	}
	return pool, nil
}

func (e *engine) resolveWeights(ctx context.Context, userID string, override *MatchWeights) (MatchWeights, error) {
	if override != nil {
		if err := ValidateWeights(*override); err != nil {
			return MatchWeights{}, err
		}
		return NormalizeWeights(*override), nil
	}

	saved, err := e.repo.GetMatchWeights(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrWeightsNotFound) {
			log.Printf("matching: loading weights for %s failed, using defaults: %v", userID, err)
		}
		return DefaultWeights, nil
	}

	return NormalizeWeights(*saved), nil
}

func (e *engine) scoreCandidate(ctx context.Context, subject, candidate *Profile, weights MatchWeights) (float64, *MatchFactors, error) {
	factors := &MatchFactors{
		Interests:    interestsScore(subject.Interests, candidate.Interests),
		Languages:    languagesScore(subject.Languages, candidate.Languages),
		Location:     locationScore(subject, candidate, e.cfg.MaxDistanceKm),
		University:   universityScore(subject, candidate),
		Availability: neutralAvailability,
	}

	subjectTraits, err := e.getTraits(ctx, subject)
	if err != nil {
		return 0, nil, &FetchError{UserID: subject.ID, Err: err}
	}
	candidateTraits, err := e.getTraits(ctx, candidate)
	if err != nil {
		return 0, nil, &FetchError{UserID: candidate.ID, Err: err}
	}
	factors.Personality = PersonalityScore(subjectTraits, candidateTraits)

	subjectActivities, err := e.getActivities(ctx, subject.ID)
	if err != nil {
		return 0, nil, &FetchError{UserID: subject.ID, Err: err}
	}
	candidateActivities, err := e.getActivities(ctx, candidate.ID)
	if err != nil {
		return 0, nil, &FetchError{UserID: candidate.ID, Err: err}
	}
	factors.Activities = activitiesScore(subjectActivities, candidateActivities)

	score := aggregate(factors, weights)

	// Diversity stays outside the base aggregation so it can be toggled
	// without renormalizing user weight vectors.
	if e.cfg.DiversityBonus {
		factors.Diversity = diversityScore(subject, candidate)
		score = score*(1-e.cfg.DiversityWeight) + factors.Diversity*e.cfg.DiversityWeight
	}

	recordCompatibilityScore(score)
	return clamp01(score), factors, nil
}

// getTraits returns the candidate's trait vector, preferring the cache,
// then the store, and finally inferring from the profile itself. Inferred
// vectors are persisted best-effort so later sessions skip the inference.
func (e *engine) getTraits(ctx context.Context, profile *Profile) (PersonalityTraits, error) {
	if traits, ok := e.traitCache.Get(profile.ID); ok {
		recordCacheHit("traits")
		return traits, nil
	}

	return e.traitCache.GetOrCompute(ctx, profile.ID, func(ctx context.Context) (PersonalityTraits, error) {
		recordCacheMiss("traits")

		persisted, err := e.repo.GetPersonalityTraits(ctx, profile.ID)
		if err == nil {
			return *persisted, nil
		}
		if !errors.Is(err, ErrTraitsNotFound) {
			return PersonalityTraits{}, err
		}

		traits := InferTraits(profile)
		if err := e.repo.UpsertPersonalityTraits(ctx, profile.ID, traits); err != nil {
			log.Printf("matching: persisting inferred traits for %s: %v", profile.ID, err)
		}
		return traits, nil
	})
}

func (e *engine) getActivities(ctx context.Context, userID string) ([]ActivityRef, error) {
	if activities, ok := e.activityCache.Get(userID); ok {
		recordCacheHit("activities")
		return activities, nil
	}

	return e.activityCache.GetOrCompute(ctx, userID, func(ctx context.Context) ([]ActivityRef, error) {
		recordCacheMiss("activities")
		return e.repo.GetUserActivities(ctx, userID)
	})
}
