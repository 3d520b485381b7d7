package matching

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepository is an in-memory profile store for engine and service
// tests.
type stubRepository struct {
	mu sync.Mutex

	profiles   map[string]*Profile
	activities map[string][]ActivityRef
	traits     map[string]PersonalityTraits
	weights    map[string]MatchWeights

	activityErrs map[string]error
	weightsErr   error

	profileFetches  int
	activityFetches int
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		profiles:     make(map[string]*Profile),
		activities:   make(map[string][]ActivityRef),
		traits:       make(map[string]PersonalityTraits),
		weights:      make(map[string]MatchWeights),
		activityErrs: make(map[string]error),
	}
}

func (r *stubRepository) addProfile(p *Profile) {
	r.profiles[p.ID] = p
}

func (r *stubRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profileFetches++
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (r *stubRepository) GetCandidates(_ context.Context, filter *CandidateFilter) ([]*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	excluded := make(map[string]bool)
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}

	var candidates []*Profile
	for _, profile := range r.profiles {
		if !excluded[profile.ID] {
			candidates = append(candidates, profile)
		}
	}
	return candidates, nil
}

func (r *stubRepository) GetUserActivities(_ context.Context, userID string) ([]ActivityRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activityFetches++
	if err := r.activityErrs[userID]; err != nil {
		return nil, err
	}
	return r.activities[userID], nil
}

func (r *stubRepository) GetPersonalityTraits(_ context.Context, userID string) (*PersonalityTraits, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	traits, ok := r.traits[userID]
	if !ok {
		return nil, ErrTraitsNotFound
	}
	return &traits, nil
}

func (r *stubRepository) UpsertPersonalityTraits(_ context.Context, userID string, traits PersonalityTraits) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.traits[userID] = traits
	return nil
}

func (r *stubRepository) GetMatchWeights(_ context.Context, userID string) (*MatchWeights, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.weightsErr != nil {
		return nil, r.weightsErr
	}
	weights, ok := r.weights[userID]
	if !ok {
		return nil, ErrWeightsNotFound
	}
	return &weights, nil
}

func (r *stubRepository) UpsertMatchWeights(_ context.Context, userID string, weights MatchWeights) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.weights[userID] = weights
	return nil
}

func testProfile(id string, interests ...string) *Profile {
	return &Profile{ID: id, Interests: interests}
}

func newTestEngine(repo Repository) Engine {
	return NewEngine(repo, EngineConfig{Concurrency: 4})
}

func TestFindMatchesSubjectNotFound(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("candidate-1", "music"))
	engine := newTestEngine(repo)

	_, err := engine.FindMatches(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestFindMatchesRanksByScore(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music", "coding"))
	strong := testProfile("strong", "music", "coding")
	weak := testProfile("weak", "chess")
	repo.addProfile(strong)
	repo.addProfile(weak)
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		Candidates: []*Profile{weak, strong},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "strong", matches[0].UserID)
	assert.Equal(t, "weak", matches[1].UserID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFindMatchesStableOrderOnTies(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music", "coding"))

	// a and b are identical apart from their ids, so they tie exactly;
	// c scores lower.
	a := testProfile("a", "music", "coding")
	b := testProfile("b", "music", "coding")
	c := testProfile("c")
	repo.addProfile(a)
	repo.addProfile(b)
	repo.addProfile(c)
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		Candidates: []*Profile{a, b, c},
	})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "a", matches[0].UserID)
	assert.Equal(t, "b", matches[1].UserID)
	assert.Equal(t, "c", matches[2].UserID)
}

func TestFindMatchesDeterministic(t *testing.T) {
	repo := newStubRepository()
	bio := "creative and social student"
	repo.addProfile(&Profile{ID: "subject", Bio: &bio, Interests: []string{"music", "coding", "food"}})
	pool := []*Profile{
		testProfile("c1", "music"),
		testProfile("c2", "coding", "food"),
		testProfile("c3", "music", "coding", "food"),
	}
	for _, p := range pool {
		repo.addProfile(p)
	}
	engine := newTestEngine(repo)

	first, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{Candidates: pool})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{Candidates: pool})
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].UserID, again[j].UserID)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestFindMatchesLimit(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	pool := []*Profile{
		testProfile("c1", "music"),
		testProfile("c2", "music"),
		testProfile("c3", "music"),
	}
	for _, p := range pool {
		repo.addProfile(p)
	}
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		Candidates: pool,
		Limit:      2,
	})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindMatchesSkipsFailedCandidates(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	repo.addProfile(testProfile("healthy", "music"))
	repo.addProfile(testProfile("broken", "music"))
	repo.activityErrs["broken"] = errors.New("connection reset")
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		CandidateIDs: []string{"broken", "healthy", "missing"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "healthy", matches[0].UserID)
}

func TestFindMatchesEmptyPoolIsNotAnError(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		Candidates: []*Profile{},
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesRejectsInvalidWeightOverride(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	repo.addProfile(testProfile("c1", "music"))
	engine := newTestEngine(repo)

	_, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{
		Weights: &MatchWeights{Interests: -1},
	})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestFindMatchesDoesNotMutatePool(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	c1 := testProfile("c1", "music")
	c2 := testProfile("c2")
	pool := []*Profile{c1, c2}
	engine := newTestEngine(repo)

	_, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{Candidates: pool})
	require.NoError(t, err)

	assert.Same(t, c1, pool[0])
	assert.Same(t, c2, pool[1])
	assert.Equal(t, []string{"music"}, c1.Interests)
}

func TestFindMatchesCancelled(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	repo.addProfile(testProfile("c1", "music"))
	engine := newTestEngine(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.FindMatches(ctx, "subject", nil)
	assert.Error(t, err)
}

func TestFindMatchesCachesPerUserLookups(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("subject", "music"))
	pool := []*Profile{
		testProfile("c1", "music"),
		testProfile("c2", "music"),
	}
	for _, p := range pool {
		repo.addProfile(p)
	}
	engine := newTestEngine(repo)

	_, err := engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{Candidates: pool})
	require.NoError(t, err)

	// Three users in play; each activity list fetched exactly once.
	assert.Equal(t, 3, repo.activityFetches)

	_, err = engine.FindMatches(context.Background(), "subject", &FindMatchesOptions{Candidates: pool})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.activityFetches)
}

func TestFindMatchesScoreBounds(t *testing.T) {
	repo := newStubRepository()
	bio := "creative curious social helpful organized"
	loc := "59.33,18.06"
	uni := "uni-1"
	repo.addProfile(&Profile{
		ID: "subject", Bio: &bio, Location: &loc, UniversityID: &uni,
		Interests: []string{"music", "coding"},
		Languages: []Language{{ID: "en", Proficiency: "native"}},
	})
	repo.activities["subject"] = []ActivityRef{{ID: "act-1"}}

	twin := &Profile{
		ID: "twin", Bio: &bio, Location: &loc, UniversityID: &uni,
		Interests: []string{"music", "coding"},
		Languages: []Language{{ID: "en", Proficiency: "native"}},
	}
	repo.addProfile(twin)
	repo.activities["twin"] = []ActivityRef{{ID: "act-1"}}
	repo.addProfile(testProfile("stranger"))
	engine := newTestEngine(repo)

	matches, err := engine.FindMatches(context.Background(), "subject", nil)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, match := range matches {
		assert.GreaterOrEqual(t, match.Score, 0.0)
		assert.LessOrEqual(t, match.Score, 1.0)
		for _, factor := range []float64{
			match.Factors.Interests, match.Factors.Languages,
			match.Factors.Location, match.Factors.Personality,
			match.Factors.Activities, match.Factors.University,
		} {
			assert.GreaterOrEqual(t, factor, 0.0)
			assert.LessOrEqual(t, factor, 1.0)
		}
	}

	// The identical twin dominates the ranking.
	assert.Equal(t, "twin", matches[0].UserID)
}

func TestCalculateCompatibilityInterestOverlap(t *testing.T) {
	repo := newStubRepository()
	subject := testProfile("subject", "music", "coding")
	candidate := testProfile("candidate", "music", "coding", "hiking")
	repo.addProfile(subject)
	repo.addProfile(candidate)
	engine := newTestEngine(repo)

	_, factors, err := engine.CalculateCompatibility(context.Background(), subject, candidate)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, factors.Interests, 1e-9)
}

func TestDiversityBonusToggle(t *testing.T) {
	repo := newStubRepository()
	international := &Profile{ID: "subject", StudentType: strPtr("international"), Interests: []string{"music"}}
	local := &Profile{ID: "local", StudentType: strPtr("local"), Interests: []string{"music"}}
	repo.addProfile(international)
	repo.addProfile(local)

	plain := NewEngine(repo, EngineConfig{Concurrency: 2})
	boosted := NewEngine(repo, EngineConfig{Concurrency: 2, DiversityBonus: true})

	plainScore, plainFactors, err := plain.CalculateCompatibility(context.Background(), international, local)
	require.NoError(t, err)
	boostedScore, boostedFactors, err := boosted.CalculateCompatibility(context.Background(), international, local)
	require.NoError(t, err)

	assert.Equal(t, 0.0, plainFactors.Diversity)
	assert.Equal(t, 1.0, boostedFactors.Diversity)
	assert.Greater(t, boostedScore, plainScore)
	assert.LessOrEqual(t, boostedScore, 1.0)
}
