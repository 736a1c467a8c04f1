package rest

import (
	"net/http"
	"os"

	"lection/internal/repository"
	"lection/internal/service"
	"lection/internal/transport/rest/handler"
	"lection/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	LobbyService *service.LobbyService
	Broadcaster  *service.Broadcaster
	StatsRepo    repository.StatsRepo
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	lobbyHandler := handler.NewLobbyHandler(c.LobbyService, c.StatsRepo)
	observeHandler := handler.NewObserveHandler(c.Broadcaster)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: participants locate lobbies by PIN only.
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/lobbies/{joincode}/join", lobbyHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/lobbies/{joincode}/responses/{userid}", lobbyHandler.SubmitResponse).Methods("POST", "OPTIONS")
	v1.HandleFunc("/lobbies/{joincode}/participant/{userid}", observeHandler.Participant).Methods("GET")
	v1.HandleFunc("/stats/active", lobbyHandler.ActiveCount).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/lobbies", lobbyHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/lobbies/{joincode}/prompts", lobbyHandler.SubmitPrompt).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/lobbies/{joincode}/close", lobbyHandler.Close).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/lobbies/{joincode}/host", observeHandler.Host).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
