package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/campuslink/campuslink-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FindMatches handles GET /api/v1/matching/matches. An empty list is a
// valid outcome, not an error.
func (h *Handler) FindMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	opts := &FindMatchesOptions{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	matches, err := h.service.FindMatches(r.Context(), userID, opts)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to find matches")
		return
	}

	if matches == nil {
		matches = []*MatchScore{}
	}

	utils.RespondWithJSON(w, http.StatusOK, &MatchesResponse{
		Matches: matches,
		Count:   len(matches),
	})
}

// DiscoverMatches handles POST /api/v1/matching/matches/discover with
// per-request weight overrides in the body.
func (h *Handler) DiscoverMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var params FindMatchesParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&params); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := &FindMatchesOptions{
		Limit:       params.Limit,
		Weights:     params.Weights,
		StudentType: params.StudentType,
	}

	matches, err := h.service.FindMatches(r.Context(), userID, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubjectNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidWeights):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to find matches")
		}
		return
	}

	if matches == nil {
		matches = []*MatchScore{}
	}

	utils.RespondWithJSON(w, http.StatusOK, &MatchesResponse{
		Matches: matches,
		Count:   len(matches),
	})
}

// GetCompatibility handles GET /api/v1/matching/compatibility/{userId}.
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	vars := mux.Vars(r)
	matchID := vars["userId"]
	if matchID == "" || matchID == userID {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	score, factors, err := h.service.CalculateCompatibility(r.Context(), userID, matchID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) || errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to calculate compatibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, &CompatibilityResponse{
		UserID:  userID,
		MatchID: matchID,
		Score:   score,
		Factors: factors,
	})
}

// GetWeights handles GET /api/v1/matching/weights.
func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	weights, err := h.service.GetMatchWeights(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get match weights")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, weights)
}

// UpdateWeights handles PUT /api/v1/matching/weights.
func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var weights MatchWeights
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&weights); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := h.service.UpdateMatchWeights(r.Context(), userID, weights)
	if err != nil {
		if errors.Is(err, ErrInvalidWeights) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update match weights")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stored)
}

// GetPersonality handles GET /api/v1/matching/personality.
func (h *Handler) GetPersonality(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	traits, err := h.service.GetPersonalityTraits(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get personality traits")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, traits)
}

// AssessPersonality handles POST /api/v1/matching/personality/assess.
func (h *Handler) AssessPersonality(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	traits, err := h.service.AssessPersonality(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to assess personality")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, traits)
}
