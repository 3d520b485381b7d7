// internal/profile/service.go

package profile

import (
	"context"
	"errors"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

// Service defines the profile service interface
type Service interface {
	GetMyProfile(ctx context.Context, userID string) (*Profile, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SetupProfile(ctx context.Context, userID string, req *SetupProfileRequest) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error)

	GetProfileCompletion(ctx context.Context, userID string) (*ProfileCompletion, error)

	SearchProfiles(ctx context.Context, userID string, filter *SearchFilter) ([]*Profile, error)
	ListCampusProfiles(ctx context.Context, campusID string, limit int) ([]*Profile, error)
}

// service implements the profile service
type service struct {
	repo Repository
}

// NewService creates a new profile service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetMyProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfileByUserID(ctx, userID)
}

// SetupProfile creates the initial profile from the onboarding flow
func (s *service) SetupProfile(ctx context.Context, userID string, req *SetupProfileRequest) (*Profile, error) {
	if _, err := s.repo.GetProfileByUserID(ctx, userID); err == nil {
		return nil, ErrProfileAlreadyExists
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	profile := &Profile{
		UserID:       userID,
		StudentType:  optional(req.StudentType),
		UniversityID: optional(req.UniversityID),
		CampusID:     optional(req.CampusID),
		MajorID:      optional(req.MajorID),
		Bio:          optional(req.Bio),
		Nationality:  optional(req.Nationality),
		Interests:    req.Interests,
	}
	if req.GraduationYear != 0 {
		year := req.GraduationYear
		profile.GraduationYear = &year
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	if len(req.Languages) > 0 {
		if err := s.repo.ReplaceLanguages(ctx, userID, req.Languages); err != nil {
			return nil, err
		}
	}

	return s.repo.GetProfileByUserID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

// GetProfileCompletion reports which profile fields still need filling in
func (s *service) GetProfileCompletion(ctx context.Context, userID string) (*ProfileCompletion, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	checks := []struct {
		field string
		done  bool
	}{
		{"bio", profile.Bio != nil && *profile.Bio != ""},
		{"cultural_insight", profile.CulturalInsight != nil && *profile.CulturalInsight != ""},
		{"student_type", profile.StudentType != nil},
		{"university", profile.UniversityID != nil},
		{"campus", profile.CampusID != nil},
		{"location", profile.Location != nil && *profile.Location != ""},
		{"interests", len(profile.Interests) > 0},
		{"languages", len(profile.Languages) > 0},
	}

	completion := &ProfileCompletion{
		Missing:   []string{},
		Completed: []string{},
	}
	for _, check := range checks {
		if check.done {
			completion.Completed = append(completion.Completed, check.field)
		} else {
			completion.Missing = append(completion.Missing, check.field)
		}
	}
	completion.Percentage = len(completion.Completed) * 100 / len(checks)

	return completion, nil
}

func (s *service) SearchProfiles(ctx context.Context, userID string, filter *SearchFilter) ([]*Profile, error) {
	return s.repo.SearchProfiles(ctx, filter, userID)
}

func (s *service) ListCampusProfiles(ctx context.Context, campusID string, limit int) ([]*Profile, error) {
	return s.repo.ListCampusProfiles(ctx, campusID, limit)
}

// optional converts an empty string to a nil pointer
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
