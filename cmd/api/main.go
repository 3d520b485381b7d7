// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuslink/campuslink-backend/internal/auth"
	"github.com/campuslink/campuslink-backend/internal/common/database"
	"github.com/campuslink/campuslink-backend/internal/config"
	"github.com/campuslink/campuslink-backend/internal/matching"
	"github.com/campuslink/campuslink-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting CampusLink API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Println("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without Redis", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize Auth module
	log.Println("\n🔐 Step 7: Initializing Auth module...")
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, &auth.Config{
		JWTSecret:           cfg.JWTSecret,
		AccessTokenExpiry:   cfg.AccessTokenExpiry,
		RefreshTokenExpiry:  cfg.RefreshTokenExpiry,
		BCryptCost:          cfg.BCryptCost,
		LoginAttemptsMax:    cfg.LoginAttemptsMax,
		LoginAttemptsWindow: cfg.LoginAttemptsWindow,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Auth module initialized")

	// 8. Initialize Profile module
	log.Println("\n👤 Step 8: Initializing Profile module...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile module initialized")

	// 9. Initialize Matching module
	log.Println("\n💫 Step 9: Initializing Matching module...")
	matchingRepo := matching.NewPostgresRepository(db)
	matchingEngine := matching.NewEngine(matchingRepo, matching.EngineConfig{
		CacheTTL:        cfg.MatchCacheTTL,
		MaxDistanceKm:   cfg.MatchMaxDistanceKm,
		Concurrency:     cfg.MatchConcurrency,
		DiversityBonus:  cfg.MatchDiversityBonus,
		DiversityWeight: cfg.MatchDiversityWeight,
	})
	matchingService := matching.NewService(matchingRepo, matchingEngine)
	matchingHandler := matching.NewHandler(matchingService)
	log.Println("✅ Matching module initialized")

	// 10. Setup routes
	log.Println("\n🛣️  Step 10: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/api", apiInfo).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	log.Println("   ✅ Auth routes registered")

	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	log.Println("   ✅ Profile routes registered")

	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	log.Println("   ✅ Matching routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{
        "name": "CampusLink API",
        "version": "1.0.0",
        "status": "running",
        "endpoints": {
            "health": "GET /health",
            "metrics": "GET /metrics",
            "auth": {
                "register": "POST /api/v1/auth/register",
                "login": "POST /api/v1/auth/login",
                "refresh": "POST /api/v1/auth/refresh",
                "logout": "POST /api/v1/auth/logout"
            },
            "profile": {
                "me": "GET /api/v1/profile",
                "setup": "POST /api/v1/profile/setup",
                "update": "PUT /api/v1/profile",
                "completion": "GET /api/v1/profile/completion"
            },
            "matching": {
                "matches": "GET /api/v1/matching/matches",
                "discover": "POST /api/v1/matching/matches/discover",
                "compatibility": "GET /api/v1/matching/compatibility/{userId}",
                "weights": "GET|PUT /api/v1/matching/weights",
                "personality": "GET /api/v1/matching/personality"
            }
        }
    }`))
}

// loggingMiddleware logs every request with its status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema if it does not exist yet
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		// Accounts
		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            username VARCHAR(100) UNIQUE NOT NULL,
            email VARCHAR(255) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            display_name VARCHAR(100) NOT NULL,
            is_verified BOOLEAN DEFAULT FALSE,
            last_active TIMESTAMPTZ,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,

		// Student profiles; id doubles as the user id
		`CREATE TABLE IF NOT EXISTS profiles (
            id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            first_name VARCHAR(100) NOT NULL DEFAULT '',
            last_name VARCHAR(100) NOT NULL DEFAULT '',
            nickname VARCHAR(100),
            bio TEXT,
            cultural_insight TEXT,
            nationality VARCHAR(100),
            student_type VARCHAR(20),
            year_of_study INTEGER,
            university_id UUID,
            campus_id UUID,
            major_id UUID,
            graduation_year INTEGER,
            location VARCHAR(64),
            avatar_url TEXT,
            is_verified BOOLEAN DEFAULT FALSE,
            interests TEXT[] DEFAULT '{}',
            languages TEXT[] DEFAULT '{}',
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_campus ON profiles(campus_id)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_university ON profiles(university_id)`,

		// Languages with proficiency
		`CREATE TABLE IF NOT EXISTS user_languages (
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            language_id VARCHAR(32) NOT NULL,
            proficiency VARCHAR(20) NOT NULL DEFAULT 'intermediate',
            PRIMARY KEY (user_id, language_id)
        )`,

		// Campus activity catalog and memberships
		`CREATE TABLE IF NOT EXISTS interests (
            id UUID PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            category VARCHAR(100) NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS user_interests (
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            interest_id UUID NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
            PRIMARY KEY (user_id, interest_id)
        )`,

		// Inferred Big Five trait vectors
		`CREATE TABLE IF NOT EXISTS personality_traits (
            user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            openness DOUBLE PRECISION NOT NULL,
            conscientiousness DOUBLE PRECISION NOT NULL,
            extraversion DOUBLE PRECISION NOT NULL,
            agreeableness DOUBLE PRECISION NOT NULL,
            neuroticism DOUBLE PRECISION NOT NULL,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,

		// Per-user scoring weight overrides
		`CREATE TABLE IF NOT EXISTS match_weights (
            user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
            location_weight DOUBLE PRECISION NOT NULL,
            interests_weight DOUBLE PRECISION NOT NULL,
            languages_weight DOUBLE PRECISION NOT NULL,
            goals_weight DOUBLE PRECISION NOT NULL,
            availability_weight DOUBLE PRECISION NOT NULL,
            personality_weight DOUBLE PRECISION NOT NULL,
            network_weight DOUBLE PRECISION NOT NULL,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
