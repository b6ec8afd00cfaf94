package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rybla/sva-engine/pkg/chat"
	"github.com/rybla/sva-engine/pkg/prompts"
)

// MockLLMAPI is a mock implementation of LLMService for testing and local
// development
type MockLLMAPI struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	ChatFunc         func(ctx context.Context, messages []chat.Message) (string, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls    []string
	ChatCalls         [][]chat.Message
	IsModelReadyCalls []string

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:    make([]string, 0),
		ChatCalls:         make([][]chat.Message, 0),
		IsModelReadyCalls: make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Chat mocks chat completion. With no override configured it answers each
// prompt family with a minimal well-formed JSON document, so the engine
// can run end to end without a provider.
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, messages)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}

	if len(messages) > 0 && messages[0].Role == chat.RoleSystem {
		switch {
		case strings.HasPrefix(messages[0].Content, prompts.FurnishSystemPrompt[:60]):
			return `{"description":"A bare room with stone walls.","items":[]}`, nil
		case strings.HasPrefix(messages[0].Content, prompts.CombineSystemPrompt[:60]):
			return `{"item":{"name":"Curious Contraption","description":"An improbable fusion."},"narration":"The parts click together."}`, nil
		}
	}
	return `{"narration":"Nothing much happens.","actions":[]}`, nil
}

// IsModelReady mocks model readiness check
func (m *MockLLMAPI) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([][]chat.Message, 0)
	m.IsModelReadyCalls = make([]string, 0)
}

// SetChatError sets up the mock to return an error on Chat
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "", err
	}
}

// SetChatResponse sets up the mock to return a fixed response on Chat
func (m *MockLLMAPI) SetChatResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return response, nil
	}
}
