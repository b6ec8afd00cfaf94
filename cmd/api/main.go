package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rybla/sva-engine/internal/config"
	"github.com/rybla/sva-engine/internal/handlers"
	"github.com/rybla/sva-engine/internal/logger"
	"github.com/rybla/sva-engine/internal/middleware"
	"github.com/rybla/sva-engine/internal/services"
	"github.com/rybla/sva-engine/internal/storage"
	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting SVA Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	case config.ProviderGemini:
		llmService, err = services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			log.Error("Failed to initialize Gemini service", "error", err)
			os.Exit(1)
		}
	case config.ProviderMock:
		log.Warn("Using mock LLM provider; responses are canned")
		llmService = services.NewMockLLMAPI()
	}

	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	var store sva.Store[*adventure.World, adventure.Action]
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisStore, err := storage.NewRedisStore[*adventure.World, adventure.Action](cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to initialize Redis store", "error", err)
			os.Exit(1)
		}
		if err := redisStore.WaitForConnection(ctx); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = redisStore
	case config.BackendPostgres:
		store, err = storage.NewPostgresStore[*adventure.World, adventure.Action](ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
	case config.BackendMemory:
		log.Warn("Using in-memory store; instances will not survive restarts")
		store = storage.NewMemoryStore[*adventure.World, adventure.Action]()
	}
	log.Info("Storage connection established")

	generator := services.NewActionGenerator(llmService, log)
	game := adventure.NewGame(generator, log)
	engine := sva.NewEngine[*adventure.World, *adventure.View, adventure.Action](game, generator, store, log)

	worlds := storage.NewWorldLibrary(cfg.DataDir, log)
	assets := storage.NewAssetStore(cfg.DataDir, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, cfg.ModelName, log))
	mux.Handle("/v1/worlds", handlers.NewWorldsHandler(worlds, log))

	instanceHandler := handlers.NewInstanceHandler(engine, worlds, assets, log)
	mux.Handle("/v1/instances", instanceHandler)
	mux.Handle("/v1/instances/", instanceHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
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
