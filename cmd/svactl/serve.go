package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rybla/sva-engine/internal/config"
	"github.com/rybla/sva-engine/internal/logger"
	"github.com/rybla/sva-engine/internal/mcp"
	"github.com/rybla/sva-engine/internal/services"
	"github.com/rybla/sva-engine/internal/storage"
	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	case config.ProviderGemini:
		llmService, err = services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini service: %w", err)
		}
	case config.ProviderMock:
		llmService = services.NewMockLLMAPI()
	}
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		return fmt.Errorf("failed to initialize LLM model: %w", err)
	}

	var store sva.Store[*adventure.World, adventure.Action]
	switch cfg.StorageBackend {
	case config.BackendRedis:
		store, err = storage.NewRedisStore[*adventure.World, adventure.Action](cfg.RedisURL, log)
	case config.BackendPostgres:
		store, err = storage.NewPostgresStore[*adventure.World, adventure.Action](ctx, cfg.PostgresDSN, log)
	case config.BackendMemory:
		store = storage.NewMemoryStore[*adventure.World, adventure.Action]()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	generator := services.NewActionGenerator(llmService, log)
	game := adventure.NewGame(generator, log)
	engine := sva.NewEngine[*adventure.World, *adventure.View, adventure.Action](game, generator, store, log)
	worlds := storage.NewWorldLibrary(cfg.DataDir, log)

	server := mcp.NewServer(engine, worlds, version, log)
	return server.Run(ctx, &sdk.StdioTransport{})
}
