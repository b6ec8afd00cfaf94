package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/prompts"
	"github.com/rybla/sva-engine/pkg/sva"
)

// ActionGenerator turns an LLMService into the two generator contracts the
// adventure engine consumes: sva.Generator (free-text input to structured
// turn proposal) and adventure.WorldGenerator (lazy room furnishing and
// item combination).
type ActionGenerator struct {
	llm    LLMService
	logger *slog.Logger
}

var (
	_ sva.Generator[*adventure.View, adventure.Action] = (*ActionGenerator)(nil)
	_ adventure.WorldGenerator                         = (*ActionGenerator)(nil)
)

func NewActionGenerator(llm LLMService, logger *slog.Logger) *ActionGenerator {
	return &ActionGenerator{llm: llm, logger: logger}
}

// GenerateTurn asks the model to translate the player's input, in the
// context of their view, into structured actions plus narration. Every
// returned action has passed structural validation; the interpreter still
// re-checks all preconditions against live state.
func (g *ActionGenerator) GenerateTurn(ctx context.Context, view *adventure.View, input string) (*sva.Proposal[adventure.Action], error) {
	messages, err := prompts.BuildTurnMessages(view, input)
	if err != nil {
		return nil, err
	}

	raw, err := g.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("turn generation failed: %w", err)
	}

	resp, err := prompts.ParseTurnResponse(raw)
	if err != nil {
		g.logger.Warn("Discarding malformed turn response", "error", err, "actor", view.Actor)
		return nil, err
	}

	g.logger.Debug("Turn generated", "actor", view.Actor, "actions", len(resp.Actions))
	return &sva.Proposal[adventure.Action]{
		Actions:   resp.Actions,
		Narration: resp.Narration,
	}, nil
}

// FurnishRoom asks the model to fill in a room on first entry.
func (g *ActionGenerator) FurnishRoom(ctx context.Context, w *adventure.World, room string) (*adventure.Furnishing, error) {
	messages, err := prompts.BuildFurnishMessages(w, room)
	if err != nil {
		return nil, err
	}

	raw, err := g.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("room generation failed: %w", err)
	}

	f, err := prompts.ParseFurnishResponse(raw)
	if err != nil {
		g.logger.Warn("Discarding malformed furnish response", "error", err, "room", room)
		return nil, err
	}
	return f, nil
}

// CombineItems asks the model for the result of combining two items.
func (g *ActionGenerator) CombineItems(ctx context.Context, w *adventure.World, first, second adventure.Item) (*adventure.CombinedItem, error) {
	messages, err := prompts.BuildCombineMessages(w, first, second)
	if err != nil {
		return nil, err
	}

	raw, err := g.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("item combination failed: %w", err)
	}

	c, err := prompts.ParseCombineResponse(raw)
	if err != nil {
		g.logger.Warn("Discarding malformed combine response", "error", err, "first", first.Name, "second", second.Name)
		return nil, err
	}
	return c, nil
}
