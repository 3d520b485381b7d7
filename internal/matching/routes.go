package matching

import (
	"github.com/gorilla/mux"

	"github.com/campuslink/campuslink-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Smart matching
	api.HandleFunc("/matches", handler.FindMatches).Methods("GET")
	api.HandleFunc("/matches/discover", handler.DiscoverMatches).Methods("POST")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")

	// Match weights
	api.HandleFunc("/weights", handler.GetWeights).Methods("GET")
	api.HandleFunc("/weights", handler.UpdateWeights).Methods("PUT")

	// Personality
	api.HandleFunc("/personality", handler.GetPersonality).Methods("GET")
	api.HandleFunc("/personality/assess", handler.AssessPersonality).Methods("POST")
}
