package profile

import (
	"github.com/gorilla/mux"

	"github.com/campuslink/campuslink-backend/internal/auth"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Own profile
	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/setup", handler.SetupProfile).Methods("POST")
	api.HandleFunc("/profile/completion", handler.GetProfileCompletion).Methods("GET")

	// Other profiles
	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
	api.HandleFunc("/search/profiles", handler.SearchProfiles).Methods("GET")
	api.HandleFunc("/campuses/{id}/profiles", handler.ListCampusProfiles).Methods("GET")
}
