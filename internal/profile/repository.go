// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the profile repository interface
type Repository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, profile *Profile) error
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error)
	ReplaceLanguages(ctx context.Context, userID string, languages []Language) error
	GetLanguages(ctx context.Context, userID string) ([]Language, error)
	SearchProfiles(ctx context.Context, filter *SearchFilter, excludeID string) ([]*Profile, error)
	ListCampusProfiles(ctx context.Context, campusID string, limit int) ([]*Profile, error)
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileRow carries the joined users+profiles columns; interests need a
// pq wrapper before they land in the Profile slice
type profileRow struct {
	Profile
	RawInterests pq.StringArray `db:"interests"`
}

const profileColumns = `
	p.id AS user_id, u.username, u.display_name,
	p.bio, p.cultural_insight, p.nationality, p.student_type,
	p.university_id, p.campus_id, p.major_id, p.graduation_year,
	p.location, p.interests, p.created_at, p.updated_at`

// GetProfileByUserID retrieves a profile by user ID
func (r *postgresRepository) GetProfileByUserID(ctx context.Context, userID string) (*Profile, error) {
	var row profileRow
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE p.id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := row.Profile
	profile.Interests = []string(row.RawInterests)

	languages, err := r.GetLanguages(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Languages = languages

	return &profile, nil
}

// CreateProfile inserts a new profile row
func (r *postgresRepository) CreateProfile(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (
			id, bio, cultural_insight, nationality, student_type,
			university_id, campus_id, major_id, graduation_year, location, interests
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		profile.UserID, profile.Bio, profile.CulturalInsight, profile.Nationality,
		profile.StudentType, profile.UniversityID, profile.CampusID, profile.MajorID,
		profile.GraduationYear, profile.Location, pq.Array(profile.Interests),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// UpdateProfile applies the non-nil fields of req
func (r *postgresRepository) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
	// Build dynamic update query
	var setClauses []string
	var args []interface{}
	argCount := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.Bio != nil {
		addClause("bio", *req.Bio)
	}
	if req.CulturalInsight != nil {
		addClause("cultural_insight", *req.CulturalInsight)
	}
	if req.Nationality != nil {
		addClause("nationality", *req.Nationality)
	}
	if req.StudentType != nil {
		addClause("student_type", *req.StudentType)
	}
	if req.UniversityID != nil {
		addClause("university_id", *req.UniversityID)
	}
	if req.CampusID != nil {
		addClause("campus_id", *req.CampusID)
	}
	if req.MajorID != nil {
		addClause("major_id", *req.MajorID)
	}
	if req.GraduationYear != nil {
		addClause("graduation_year", *req.GraduationYear)
	}
	if req.Location != nil {
		addClause("location", *req.Location)
	}
	if req.Interests != nil {
		addClause("interests", pq.Array(req.Interests))
	}

	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = NOW()")
		query := fmt.Sprintf(
			"UPDATE profiles SET %s WHERE id = $%d",
			strings.Join(setClauses, ", "), argCount,
		)
		args = append(args, userID)

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil, ErrProfileNotFound
		}
	}

	if req.Languages != nil {
		if err := r.ReplaceLanguages(ctx, userID, req.Languages); err != nil {
			return nil, err
		}
	}

	return r.GetProfileByUserID(ctx, userID)
}

// ReplaceLanguages swaps the user's language set in one transaction
func (r *postgresRepository) ReplaceLanguages(ctx context.Context, userID string, languages []Language) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_languages WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear languages: %w", err)
	}

	for _, lang := range languages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_languages (user_id, language_id, proficiency) VALUES ($1, $2, $3)`,
			userID, lang.ID, lang.Proficiency); err != nil {
			return fmt.Errorf("failed to insert language: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit languages: %w", err)
	}
	return nil
}

// GetLanguages returns the user's languages with proficiency
func (r *postgresRepository) GetLanguages(ctx context.Context, userID string) ([]Language, error) {
	var languages []Language
	err := r.db.SelectContext(ctx, &languages,
		`SELECT language_id, proficiency FROM user_languages WHERE user_id = $1 ORDER BY language_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get languages: %w", err)
	}
	return languages, nil
}

// SearchProfiles matches usernames and display names against a query
func (r *postgresRepository) SearchProfiles(ctx context.Context, filter *SearchFilter, excludeID string) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE (u.username ILIKE $1 OR u.display_name ILIKE $1)
		  AND p.id != $2
		ORDER BY u.username
		LIMIT $3 OFFSET $4`

	limit := filter.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var rows []profileRow
	pattern := "%" + filter.Query + "%"
	err := r.db.SelectContext(ctx, &rows, query, pattern, excludeID, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return r.hydrateRows(ctx, rows)
}

// ListCampusProfiles returns profiles on the given campus
func (r *postgresRepository) ListCampusProfiles(ctx context.Context, campusID string, limit int) ([]*Profile, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.id
		WHERE p.campus_id = $1
		ORDER BY p.updated_at DESC
		LIMIT $2`

	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, query, campusID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list campus profiles: %w", err)
	}

	return r.hydrateRows(ctx, rows)
}

func (r *postgresRepository) hydrateRows(ctx context.Context, rows []profileRow) ([]*Profile, error) {
	profiles := make([]*Profile, 0, len(rows))
	for i := range rows {
		p := rows[i].Profile
		p.Interests = []string(rows[i].RawInterests)

		languages, err := r.GetLanguages(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		p.Languages = languages

		profiles = append(profiles, &p)
	}
	return profiles, nil
}
