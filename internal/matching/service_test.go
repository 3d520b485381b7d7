package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo Repository) Service {
	return NewService(repo, newTestEngine(repo))
}

func TestServiceGetMatchWeightsDefaults(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	weights, err := svc.GetMatchWeights(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights, *weights)
}

func TestServiceGetMatchWeightsNormalizesSaved(t *testing.T) {
	repo := newStubRepository()
	repo.weights["user-1"] = MatchWeights{Location: 1, Interests: 3}
	svc := newTestService(repo)

	weights, err := svc.GetMatchWeights(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, weights.Location, 1e-9)
	assert.InDelta(t, 0.75, weights.Interests, 1e-9)
}

func TestServiceUpdateMatchWeights(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	updated, err := svc.UpdateMatchWeights(context.Background(), "user-1", MatchWeights{
		Interests: 2,
		Location:  2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, updated.Interests, 1e-9)
	assert.InDelta(t, 0.5, updated.Location, 1e-9)
	assert.Zero(t, updated.Personality)

	// The normalized vector is what gets persisted.
	stored := repo.weights["user-1"]
	assert.Equal(t, *updated, stored)
}

func TestServiceUpdateMatchWeightsRejectsInvalid(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	_, err := svc.UpdateMatchWeights(context.Background(), "user-1", MatchWeights{Interests: -0.5})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	assert.Empty(t, repo.weights)
}

func TestServiceAssessPersonality(t *testing.T) {
	repo := newStubRepository()
	bio := "creative and curious"
	repo.addProfile(&Profile{ID: "user-1", Bio: &bio})
	svc := newTestService(repo)

	traits, err := svc.AssessPersonality(context.Background(), "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, traits.Openness, 1e-9)

	// Assessment is persisted so later reads skip the inference.
	stored, ok := repo.traits["user-1"]
	require.True(t, ok)
	assert.Equal(t, *traits, stored)
}

func TestServiceAssessPersonalityUnknownUser(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	_, err := svc.AssessPersonality(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestServiceAssessPersonalityReplacesStored(t *testing.T) {
	repo := newStubRepository()
	bio := "organized and diligent"
	repo.addProfile(&Profile{ID: "user-1", Bio: &bio})
	repo.traits["user-1"] = PersonalityTraits{Openness: 0.9}
	svc := newTestService(repo)

	traits, err := svc.AssessPersonality(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, *traits, repo.traits["user-1"])
	assert.NotEqual(t, 0.9, repo.traits["user-1"].Openness)
}

func TestServiceGetPersonalityTraitsPrefersStored(t *testing.T) {
	repo := newStubRepository()
	repo.traits["user-1"] = PersonalityTraits{Openness: 0.8, Extraversion: 0.3}
	svc := newTestService(repo)

	traits, err := svc.GetPersonalityTraits(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0.8, traits.Openness)
	assert.Equal(t, 0.3, traits.Extraversion)
}

func TestServiceGetPersonalityTraitsAssessesWhenMissing(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("user-1", "music", "coding", "hiking"))
	svc := newTestService(repo)

	traits, err := svc.GetPersonalityTraits(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, traits)
	assert.Contains(t, repo.traits, "user-1")
}

func TestServiceCalculateCompatibility(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("user-1", "music", "coding"))
	repo.addProfile(testProfile("user-2", "music"))
	svc := newTestService(repo)

	score, factors, err := svc.CalculateCompatibility(context.Background(), "user-1", "user-2")
	require.NoError(t, err)
	require.NotNil(t, factors)
	assert.InDelta(t, 0.5, factors.Interests, 1e-9)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestServiceCalculateCompatibilitySubjectMissing(t *testing.T) {
	repo := newStubRepository()
	repo.addProfile(testProfile("user-2", "music"))
	svc := newTestService(repo)

	_, _, err := svc.CalculateCompatibility(context.Background(), "ghost", "user-2")
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	_, _, err = svc.CalculateCompatibility(context.Background(), "user-2", "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
