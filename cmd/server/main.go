package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lection/internal/cache"
	"lection/internal/config"
	"lection/internal/repository"
	"lection/internal/service"
	"lection/internal/transport/rest"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Repositories
	lobbyRepo := repository.NewLobbyRepo(db)
	archiveRepo := repository.NewArchiveRepo(db)
	hostRepo := repository.NewHostRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	if err := lobbyRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to ensure lobby indexes:", err)
	}

	// Caches
	codeCache := cache.NewCodeCache(rdb)

	// Services
	authSvc := service.NewAuthService()
	allocator := service.NewJoinCodeAllocator(lobbyRepo, codeCache, cfg.CodeMaxAttempts)
	lobbySvc := service.NewLobbyService(lobbyRepo, archiveRepo, hostRepo, statsRepo, allocator, cfg.CloseGracePeriod, cfg.StandardCap)
	broadcaster := service.NewBroadcaster(lobbyRepo, lobbySvc, cfg.PollInterval)

	router := rest.NewRouter(&rest.Container{
		AuthService:  authSvc,
		LobbyService: lobbySvc,
		Broadcaster:  broadcaster,
		StatsRepo:    statsRepo,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/lobbies")
		log.Println("  POST /v1/lobbies/{joincode}/join")
		log.Println("  POST /v1/lobbies/{joincode}/prompts")
		log.Println("  POST /v1/lobbies/{joincode}/responses/{userid}")
		log.Println("  POST /v1/lobbies/{joincode}/close")
		log.Println("  SSE  /v1/lobbies/{joincode}/host")
		log.Println("  SSE  /v1/lobbies/{joincode}/participant/{userid}")
		log.Println("  GET  /v1/stats/active")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
