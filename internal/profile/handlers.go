// internal/profile/handlers.go

package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/campuslink/campuslink-backend/internal/common/utils"
)

// Handler handles profile-related HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new profile handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetMyProfile handles GET /api/v1/profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	profile, err := h.service.GetMyProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// GetUserProfile handles GET /api/v1/users/{id}/profile
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]

	profile, err := h.service.GetProfile(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// SetupProfile handles POST /api/v1/profile/setup
func (h *Handler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req SetupProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.SetupProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrProfileAlreadyExists) {
			utils.RespondWithError(w, http.StatusConflict, "Profile already set up")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to set up profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// GetProfileCompletion handles GET /api/v1/profile/completion
func (h *Handler) GetProfileCompletion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	completion, err := h.service.GetProfileCompletion(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get profile completion")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, completion)
}

// SearchProfiles handles GET /api/v1/search/profiles
func (h *Handler) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(string)

	filter := &SearchFilter{
		Query: r.URL.Query().Get("q"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	if err := utils.ValidateStruct(filter); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profiles, err := h.service.SearchProfiles(r.Context(), userID, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search profiles")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// ListCampusProfiles handles GET /api/v1/campuses/{id}/profiles
func (h *Handler) ListCampusProfiles(w http.ResponseWriter, r *http.Request) {
	campusID := mux.Vars(r)["id"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	profiles, err := h.service.ListCampusProfiles(r.Context(), campusID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list campus profiles")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}
