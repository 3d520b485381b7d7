package matching

import (
	"errors"
	"fmt"
)

var (
	// ErrSubjectNotFound means the user we are matching for does not
	// exist. Fatal to the whole ranking call.
	ErrSubjectNotFound = errors.New("subject profile not found")

	// ErrProfileNotFound is returned by the repository for a missing
	// profile row.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrTraitsNotFound is returned by the repository when no persisted
	// personality traits exist for a user.
	ErrTraitsNotFound = errors.New("personality traits not found")

	// ErrWeightsNotFound is returned by the repository when a user has no
	// custom match weights saved.
	ErrWeightsNotFound = errors.New("match weights not found")

	// ErrInvalidWeights means a caller-supplied weight vector is
	// malformed (negative or non-numeric values). Rejected before
	// aggregation, never silently clamped.
	ErrInvalidWeights = errors.New("invalid match weights")
)

// FetchError wraps a failed per-candidate lookup. Candidates whose
// lookups fail are skipped, not fatal to the batch.
type FetchError struct {
	UserID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching data for user %s: %v", e.UserID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
