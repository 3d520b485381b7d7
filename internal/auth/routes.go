package auth

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all auth routes
func RegisterRoutes(router *mux.Router, handler *Handler, middleware *Middleware) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()

	// Public routes
	api.HandleFunc("/register", handler.Register).Methods("POST")
	api.HandleFunc("/login", handler.Login).Methods("POST")
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")
	api.HandleFunc("/logout", handler.Logout).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api/v1/auth").Subrouter()
	protected.Use(middleware.Authenticate)
	protected.HandleFunc("/logout-all", handler.LogoutAll).Methods("POST")
	protected.HandleFunc("/me", handler.Me).Methods("GET")
}
