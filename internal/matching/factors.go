package matching

import (
	"math"
	"strconv"
	"strings"
)

// DefaultMaxDistanceKm is the distance at which the location factor
// reaches zero.
const DefaultMaxDistanceKm = 50.0

// interestsScore is the interest overlap between two profiles:
// |intersection| / max(|a|, |b|). Empty sets score 0.
func interestsScore(userInterests, matchInterests []string) float64 {
	if len(userInterests) == 0 || len(matchInterests) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(userInterests))
	for _, interest := range userInterests {
		seen[interest] = true
	}

	common := 0
	for _, interest := range matchInterests {
		if seen[interest] {
			common++
		}
	}

	return float64(common) / math.Max(float64(len(userInterests)), float64(len(matchInterests)))
}

// languagesScore is the language overlap between two profiles,
// intersected by language id. Proficiency does not affect membership.
func languagesScore(userLanguages, matchLanguages []Language) float64 {
	if len(userLanguages) == 0 || len(matchLanguages) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(userLanguages))
	for _, lang := range userLanguages {
		seen[lang.ID] = true
	}

	common := 0
	for _, lang := range matchLanguages {
		if seen[lang.ID] {
			common++
		}
	}

	return float64(common) / math.Max(float64(len(userLanguages)), float64(len(matchLanguages)))
}

// locationScore scores geographic proximity linearly from 1 at 0 km down
// to 0 at maxDistanceKm and beyond. Profiles with missing or unparseable
// locations score 0.
func locationScore(user, match *Profile, maxDistanceKm float64) float64 {
	userLat, userLng, ok := parseLocation(user.Location)
	if !ok {
		return 0
	}
	matchLat, matchLng, ok := parseLocation(match.Location)
	if !ok {
		return 0
	}

	distance := haversineDistance(userLat, userLng, matchLat, matchLng)
	return math.Max(0, 1-distance/maxDistanceKm)
}

// universityScore is binary institutional affinity: 1 when both profiles
// belong to the same university, 0 otherwise or when either is unset.
func universityScore(user, match *Profile) float64 {
	if user.UniversityID == nil || match.UniversityID == nil {
		return 0
	}
	if *user.UniversityID == *match.UniversityID {
		return 1
	}
	return 0
}

// activitiesScore is the shared-activity overlap, intersected by
// activity id: |intersection| / max(|a|, |b|). Empty sets score 0.
func activitiesScore(userActivities, matchActivities []ActivityRef) float64 {
	if len(userActivities) == 0 || len(matchActivities) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(userActivities))
	for _, activity := range userActivities {
		seen[activity.ID] = true
	}

	common := 0
	for _, activity := range matchActivities {
		if seen[activity.ID] {
			common++
		}
	}

	return float64(common) / math.Max(float64(len(userActivities)), float64(len(matchActivities)))
}

// diversityScore rewards international/local pairings: 1 when the two
// student types are set and differ, 0 otherwise.
func diversityScore(user, match *Profile) float64 {
	if user.StudentType == nil || match.StudentType == nil {
		return 0
	}
	if *user.StudentType != *match.StudentType {
		return 1
	}
	return 0
}

// parseLocation splits a "lat,lng" string into coordinates.
func parseLocation(location *string) (lat, lng float64, ok bool) {
	if location == nil || *location == "" {
		return 0, 0, false
	}

	parts := strings.SplitN(*location, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, lng, true
}

// haversineDistance returns the great-circle distance in kilometers.
func haversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
