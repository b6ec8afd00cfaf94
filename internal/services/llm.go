package services

import (
	"context"

	"github.com/rybla/sva-engine/pkg/chat"
)

// LLMService defines the interface for interacting with an LLM provider.
type LLMService interface {
	// InitModel initializes the model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat runs one chat completion and returns the model's text output
	Chat(ctx context.Context, messages []chat.Message) (string, error)

	// IsModelReady checks if the model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
