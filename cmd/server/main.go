package main

import (
	"cardparty/internal/config"
	"cardparty/internal/game"
	"cardparty/internal/game/bingo"
	"cardparty/internal/game/quiz"
	"cardparty/internal/repository"
	"cardparty/internal/service"
	"cardparty/internal/store"
	"cardparty/internal/transport/rest"
	"cardparty/internal/transport/ws"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	log.Println("started")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(cfg.RedisAddr, "redis://"),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Repositories
	roomRepo := repository.NewRoomRepo(db)
	quizRepo := repository.NewQuizRepo(db)
	trackRepo := repository.NewTrackRepo(db)

	// Shared store and bus
	roomStore := store.NewRoomStore(rdb)
	bus := store.NewBus(rdb)

	// Game plugins and registry
	bingoPlugin := bingo.New(trackRepo)
	quizEngine := quiz.New(quizRepo, cfg.QuestionTimerSec, cfg.ListeningSec)
	registry, err := game.NewRegistry(bingoPlugin, quizEngine)
	if err != nil {
		log.Fatal("Failed to build plugin registry:", err)
	}

	// Services
	authSvc := service.NewAuthService(cfg.OwnerUsername, cfg.OwnerPassword, cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomRepo, roomStore, registry, cfg.RoomTTL, cfg.InactivityTimeout, cfg.BaseURL)
	scanSvc := service.NewScanService(roomSvc, registry, cfg.BaseURL+"/v1/ws")

	// WebSocket hub bridges local sockets and the cross-process bus
	hub := ws.NewHub(bus)
	hub.Start(ctx)
	roomSvc.SetBroadcaster(hub)
	log.Printf("WebSocket hub started (bus origin %s)", bus.Origin())

	wsHandler := ws.NewHandler(ctx, hub, roomSvc, quizEngine, bingoPlugin)

	// Inactivity sweep
	go roomSvc.RunSweeper(ctx, cfg.SweepInterval)

	container := &rest.Container{
		AuthService:        authSvc,
		RoomService:        roomSvc,
		ScanService:        scanSvc,
		WSHandler:          wsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rest.NewRouter(container),
	}

	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/scan")
		log.Println("  POST/GET /v1/rooms")
		log.Println("  POST /v1/rooms/{uuid}/end")
		log.Println("  PUT  /v1/rooms/{uuid}/data")
		log.Println("  GET  /v1/rooms/{uuid}/qr")
		log.Println("  WS   /v1/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
