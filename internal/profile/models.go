// internal/profile/models.go

package profile

import (
	"time"
)

// Profile represents a student's profile
type Profile struct {
	UserID          string     `json:"user_id" db:"user_id"`
	Username        string     `json:"username" db:"username"`
	DisplayName     string     `json:"display_name" db:"display_name"`
	Bio             *string    `json:"bio" db:"bio"`
	CulturalInsight *string    `json:"cultural_insight" db:"cultural_insight"`
	Nationality     *string    `json:"nationality" db:"nationality"`
	StudentType     *string    `json:"student_type" db:"student_type"` // local, international, exchange
	UniversityID    *string    `json:"university_id" db:"university_id"`
	CampusID        *string    `json:"campus_id" db:"campus_id"`
	MajorID         *string    `json:"major_id" db:"major_id"`
	GraduationYear  *int       `json:"graduation_year" db:"graduation_year"`
	Location        *string    `json:"location" db:"location"` // "lat,lng"
	Interests       []string   `json:"interests" db:"-"`
	Languages       []Language `json:"languages" db:"-"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Language is one language a student speaks, with self-reported proficiency
type Language struct {
	ID          string `json:"id" db:"language_id" validate:"required,min=2,max=32"`
	Proficiency string `json:"proficiency" db:"proficiency" validate:"required,oneof=beginner intermediate advanced native"`
}

// SetupProfileRequest represents initial profile setup
type SetupProfileRequest struct {
	Bio            string     `json:"bio" validate:"omitempty,max=500"`
	Nationality    string     `json:"nationality" validate:"omitempty,max=100"`
	StudentType    string     `json:"student_type" validate:"required,oneof=local international exchange"`
	UniversityID   string     `json:"university_id" validate:"required,uuid"`
	CampusID       string     `json:"campus_id" validate:"omitempty,uuid"`
	MajorID        string     `json:"major_id" validate:"omitempty,uuid"`
	GraduationYear int        `json:"graduation_year" validate:"omitempty,min=2000,max=2100"`
	Interests      []string   `json:"interests" validate:"required,min=1,max=20,dive,min=1,max=50"`
	Languages      []Language `json:"languages" validate:"omitempty,max=10,dive"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	Bio             *string    `json:"bio" validate:"omitempty,max=500"`
	CulturalInsight *string    `json:"cultural_insight" validate:"omitempty,max=1000"`
	Nationality     *string    `json:"nationality" validate:"omitempty,max=100"`
	StudentType     *string    `json:"student_type" validate:"omitempty,oneof=local international exchange"`
	UniversityID    *string    `json:"university_id" validate:"omitempty,uuid"`
	CampusID        *string    `json:"campus_id" validate:"omitempty,uuid"`
	MajorID         *string    `json:"major_id" validate:"omitempty,uuid"`
	GraduationYear  *int       `json:"graduation_year" validate:"omitempty,min=2000,max=2100"`
	Location        *string    `json:"location" validate:"omitempty,max=64"`
	Interests       []string   `json:"interests" validate:"omitempty,max=20,dive,min=1,max=50"`
	Languages       []Language `json:"languages" validate:"omitempty,max=10,dive"`
}

// SearchFilter represents filters for searching profiles
type SearchFilter struct {
	Query  string `json:"query" validate:"required,min=2"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ProfileCompletion summarizes how much of a profile is filled in.
// The matching engine works best with complete profiles, so clients
// surface this to nudge users.
type ProfileCompletion struct {
	Percentage int      `json:"percentage"`
	Missing    []string `json:"missing_fields"`
	Completed  []string `json:"completed_fields"`
}
