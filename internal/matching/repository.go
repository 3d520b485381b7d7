package matching

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the external profile-store contract the matching core
// depends on. It owns all persistence; the core treats every returned
// Profile as an immutable snapshot.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetCandidates(ctx context.Context, filter *CandidateFilter) ([]*Profile, error)
	GetUserActivities(ctx context.Context, userID string) ([]ActivityRef, error)

	GetPersonalityTraits(ctx context.Context, userID string) (*PersonalityTraits, error)
	UpsertPersonalityTraits(ctx context.Context, userID string, traits PersonalityTraits) error

	GetMatchWeights(ctx context.Context, userID string) (*MatchWeights, error)
	UpsertMatchWeights(ctx context.Context, userID string, weights MatchWeights) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// profileRow mirrors the profiles table. Interests live on the row as a
// text[]; languages come from user_languages.
type profileRow struct {
	Profile
	RawInterests pq.StringArray `db:"interests"`
	RawLanguages pq.StringArray `db:"languages"`
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var row profileRow
	query := `
        SELECT id, first_name, last_name, nickname, bio, cultural_insight,
               nationality, student_type, year_of_study, university_id,
               campus_id, major_id, location, avatar_url, is_verified,
               COALESCE(interests, '{}') AS interests,
               COALESCE(languages, '{}') AS languages,
               created_at, updated_at
        FROM profiles
        WHERE id = $1
    `

	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	languages, err := r.getUserLanguages(ctx, userID)
	if err != nil {
		return nil, err
	}

	return normalizeProfile(&row, languages), nil
}

func (r *postgresRepository) GetCandidates(ctx context.Context, filter *CandidateFilter) ([]*Profile, error) {
	query := `
        SELECT id, first_name, last_name, nickname, bio, cultural_insight,
               nationality, student_type, year_of_study, university_id,
               campus_id, major_id, location, avatar_url, is_verified,
               COALESCE(interests, '{}') AS interests,
               COALESCE(languages, '{}') AS languages,
               created_at, updated_at
        FROM profiles
        WHERE TRUE
    `
	args := []interface{}{}

	if len(filter.ExcludeIDs) > 0 {
		query += fmt.Sprintf(" AND id != ALL($%d)", len(args)+1)
		args = append(args, pq.Array(filter.ExcludeIDs))
	}
	if filter.CampusID != nil {
		query += fmt.Sprintf(" AND campus_id = $%d", len(args)+1)
		args = append(args, *filter.CampusID)
	}
	if filter.UniversityID != nil {
		query += fmt.Sprintf(" AND university_id = $%d", len(args)+1)
		args = append(args, *filter.UniversityID)
	}
	if filter.StudentType != nil {
		query += fmt.Sprintf(" AND student_type = $%d", len(args)+1)
		args = append(args, *filter.StudentType)
	}

	query += " ORDER BY created_at"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profileRows []*profileRow
	var ids []string
	for rows.Next() {
		var row profileRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		profileRows = append(profileRows, &row)
		ids = append(ids, row.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	languagesByUser, err := r.getLanguagesForUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(profileRows))
	for _, row := range profileRows {
		profiles = append(profiles, normalizeProfile(row, languagesByUser[row.ID]))
	}

	return profiles, nil
}

func (r *postgresRepository) GetUserActivities(ctx context.Context, userID string) ([]ActivityRef, error) {
	var activities []ActivityRef
	query := `
        SELECT ui.interest_id, i.name, i.category
        FROM user_interests ui
        JOIN interests i ON i.id = ui.interest_id
        WHERE ui.user_id = $1
        ORDER BY ui.interest_id
    `

	err := r.db.SelectContext(ctx, &activities, query, userID)
	if err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *postgresRepository) GetPersonalityTraits(ctx context.Context, userID string) (*PersonalityTraits, error) {
	var traits PersonalityTraits
	query := `
        SELECT openness, conscientiousness, extraversion, agreeableness, neuroticism
        FROM personality_traits
        WHERE user_id = $1
    `

	err := r.db.GetContext(ctx, &traits, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTraitsNotFound
	}
	if err != nil {
		return nil, err
	}

	return &traits, nil
}

func (r *postgresRepository) UpsertPersonalityTraits(ctx context.Context, userID string, traits PersonalityTraits) error {
	query := `
        INSERT INTO personality_traits (
            user_id, openness, conscientiousness, extraversion,
            agreeableness, neuroticism, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
        ON CONFLICT (user_id)
        DO UPDATE SET
            openness = EXCLUDED.openness,
            conscientiousness = EXCLUDED.conscientiousness,
            extraversion = EXCLUDED.extraversion,
            agreeableness = EXCLUDED.agreeableness,
            neuroticism = EXCLUDED.neuroticism,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := r.db.ExecContext(
		ctx, query,
		userID, traits.Openness, traits.Conscientiousness,
		traits.Extraversion, traits.Agreeableness, traits.Neuroticism,
	)

	return err
}

func (r *postgresRepository) GetMatchWeights(ctx context.Context, userID string) (*MatchWeights, error) {
	var weights MatchWeights
	query := `
        SELECT location_weight, interests_weight, languages_weight,
               goals_weight, availability_weight, personality_weight,
               network_weight
        FROM match_weights
        WHERE user_id = $1
    `

	err := r.db.GetContext(ctx, &weights, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrWeightsNotFound
	}
	if err != nil {
		return nil, err
	}

	return &weights, nil
}

func (r *postgresRepository) UpsertMatchWeights(ctx context.Context, userID string, weights MatchWeights) error {
	query := `
        INSERT INTO match_weights (
            user_id, location_weight, interests_weight, languages_weight,
            goals_weight, availability_weight, personality_weight,
            network_weight, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
        ON CONFLICT (user_id)
        DO UPDATE SET
            location_weight = EXCLUDED.location_weight,
            interests_weight = EXCLUDED.interests_weight,
            languages_weight = EXCLUDED.languages_weight,
            goals_weight = EXCLUDED.goals_weight,
            availability_weight = EXCLUDED.availability_weight,
            personality_weight = EXCLUDED.personality_weight,
            network_weight = EXCLUDED.network_weight,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := r.db.ExecContext(
		ctx, query,
		userID, weights.Location, weights.Interests, weights.Languages,
		weights.Goals, weights.Availability, weights.Personality, weights.Network,
	)

	return err
}

type languageRow struct {
	UserID      string `db:"user_id"`
	LanguageID  string `db:"language_id"`
	Proficiency string `db:"proficiency"`
}

func (r *postgresRepository) getUserLanguages(ctx context.Context, userID string) ([]Language, error) {
	var rows []languageRow
	query := `
        SELECT user_id, language_id, proficiency
        FROM user_languages
        WHERE user_id = $1
        ORDER BY language_id
    `

	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	languages := make([]Language, 0, len(rows))
	for _, row := range rows {
		languages = append(languages, Language{ID: row.LanguageID, Proficiency: row.Proficiency})
	}

	return languages, nil
}

func (r *postgresRepository) getLanguagesForUsers(ctx context.Context, userIDs []string) (map[string][]Language, error) {
	byUser := make(map[string][]Language, len(userIDs))
	if len(userIDs) == 0 {
		return byUser, nil
	}

	var rows []languageRow
	query := `
        SELECT user_id, language_id, proficiency
        FROM user_languages
        WHERE user_id = ANY($1)
        ORDER BY user_id, language_id
    `

	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], Language{ID: row.LanguageID, Proficiency: row.Proficiency})
	}

	return byUser, nil
}

// normalizeProfile converts a raw row into the canonical Profile shape.
// Older rows carry languages as a bare text[] of ids on the profile
// itself; those get a default proficiency so the scoring core never sees
// the legacy shape.
func normalizeProfile(row *profileRow, languages []Language) *Profile {
	profile := row.Profile

	profile.Interests = make([]string, len(row.RawInterests))
	copy(profile.Interests, row.RawInterests)

	if len(languages) == 0 && len(row.RawLanguages) > 0 {
		languages = make([]Language, 0, len(row.RawLanguages))
		for _, id := range row.RawLanguages {
			languages = append(languages, Language{ID: id, Proficiency: "intermediate"})
		}
	}
	profile.Languages = languages

	if profile.StudentType != nil {
		// Anything other than the known categories is treated as unset.
		switch *profile.StudentType {
		case "international", "local", "exchange":
		default:
			profile.StudentType = nil
		}
	}

	return &profile
}
