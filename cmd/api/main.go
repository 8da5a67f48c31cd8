package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/middleware"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/content"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Quest Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_driver", cfg.StorageDriver,
		"data_dir", cfg.DataDir)

	loader := content.NewFileLoader(cfg.DataDir, log)
	if cfg.StrictContent {
		loader = loader.Strict()
	}
	world, err := loader.LoadWorld(context.Background())
	if err != nil {
		log.Error("Failed to load world", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}
	catalog, err := loader.LoadItems(context.Background())
	if err != nil {
		log.Error("Failed to load items", "error", err)
		os.Exit(1)
	}
	log.Info("World loaded", "name", world.Name, "items", len(catalog))

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	store, redisClient, err := storage.Open(storageCtx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Redis pub/sub when available so several API nodes share one stream
	var broadcaster events.Broadcaster
	if redisClient != nil {
		broadcaster = events.NewRedisBroadcaster(redisClient, log)
	} else {
		broadcaster = events.NewLocalBroadcaster()
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/v1/world", handlers.NewWorldHandler(log, world, loader))

	gameHandler := handlers.NewGameHandler(store, loader, world, catalog, broadcaster, log)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	mux.Handle("/v1/events/games/", handlers.NewEventsHandler(broadcaster, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: the events stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
