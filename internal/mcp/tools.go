package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rybla/sva-engine/internal/handlers"
	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

type ListWorldsInput struct{}

type ListWorldsOutput struct {
	// World name to seed filename.
	Worlds map[string]string `json:"worlds"`
}

type CreateInstanceInput struct {
	World string `json:"world" jsonschema:"world seed filename, from list_worlds"`
	Name  string `json:"name,omitempty" jsonschema:"optional display name"`
}

type InstanceOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seed      string `json:"seed,omitempty"`
	CreatedAt string `json:"created_at"`
	TurnCount int    `json:"turn_count"`
}

type GetInstanceInput struct {
	ID string `json:"id" jsonschema:"instance id"`
}

type ListInstancesInput struct{}

type ListInstancesOutput struct {
	Instances []InstanceOutput `json:"instances"`
}

type PlayTurnInput struct {
	ID    string `json:"id" jsonschema:"instance id"`
	Actor string `json:"actor" jsonschema:"character name"`
	Input string `json:"input" jsonschema:"what the character attempts to do"`
}

type PlayTurnOutput struct {
	Narration string          `json:"narration"`
	Events    []string        `json:"events,omitempty"`
	Rejected  []string        `json:"rejected,omitempty"` // precondition failures; the world is unchanged
	View      *adventure.View `json:"view,omitempty"`
}

type InspectViewInput struct {
	ID    string `json:"id" jsonschema:"instance id"`
	Actor string `json:"actor" jsonschema:"character name"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_worlds",
		Description: "List the authored worlds available for new game instances",
	}, s.handleListWorlds)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_instance",
		Description: "Create a new game instance from a world seed",
	}, s.handleCreateInstance)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_instance",
		Description: "Fetch a saved game instance's metadata",
	}, s.handleGetInstance)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_instances",
		Description: "List saved game instances",
	}, s.handleListInstances)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "play_turn",
		Description: "Send a character's free-text input to a game instance and play one turn",
	}, s.handlePlayTurn)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "inspect_view",
		Description: "Project a character's current view of a game instance without playing a turn",
	}, s.handleInspectView)
}

func (s *Server) handleListWorlds(ctx context.Context, req *sdk.CallToolRequest, input ListWorldsInput) (*sdk.CallToolResult, ListWorldsOutput, error) {
	worlds, err := s.worlds.List()
	if err != nil {
		return nil, ListWorldsOutput{}, err
	}
	return nil, ListWorldsOutput{Worlds: worlds}, nil
}

func (s *Server) handleCreateInstance(ctx context.Context, req *sdk.CallToolRequest, input CreateInstanceInput) (*sdk.CallToolResult, InstanceOutput, error) {
	if input.World == "" {
		return nil, InstanceOutput{}, fmt.Errorf("world is required")
	}
	world, err := s.worlds.Get(input.World)
	if err != nil {
		return nil, InstanceOutput{}, err
	}
	inst, err := s.engine.CreateInstance(ctx, input.Name, input.World, world)
	if err != nil {
		return nil, InstanceOutput{}, err
	}
	return nil, instanceOutput(inst.Meta()), nil
}

func (s *Server) handleGetInstance(ctx context.Context, req *sdk.CallToolRequest, input GetInstanceInput) (*sdk.CallToolResult, InstanceOutput, error) {
	inst, err := s.loadInstance(ctx, input.ID)
	if err != nil {
		return nil, InstanceOutput{}, err
	}
	return nil, instanceOutput(inst.Meta()), nil
}

func (s *Server) handleListInstances(ctx context.Context, req *sdk.CallToolRequest, input ListInstancesInput) (*sdk.CallToolResult, ListInstancesOutput, error) {
	metas, err := s.engine.Store().List(ctx)
	if err != nil {
		return nil, ListInstancesOutput{}, err
	}
	out := make([]InstanceOutput, 0, len(metas))
	for _, m := range metas {
		out = append(out, instanceOutput(m))
	}
	return nil, ListInstancesOutput{Instances: out}, nil
}

func (s *Server) handlePlayTurn(ctx context.Context, req *sdk.CallToolRequest, input PlayTurnInput) (*sdk.CallToolResult, PlayTurnOutput, error) {
	if input.Actor == "" || input.Input == "" {
		return nil, PlayTurnOutput{}, fmt.Errorf("actor and input are required")
	}
	inst, err := s.loadInstance(ctx, input.ID)
	if err != nil {
		return nil, PlayTurnOutput{}, err
	}

	turn, err := s.engine.RunTurn(ctx, inst, input.Actor, input.Input)
	if err != nil {
		var rejected *sva.RejectedTurnError
		if errors.As(err, &rejected) {
			// A rejected turn is a playable outcome, not a tool failure.
			view, verr := s.engine.Project(inst, input.Actor)
			if verr != nil {
				return nil, PlayTurnOutput{}, verr
			}
			return nil, PlayTurnOutput{Rejected: rejected.Messages(), View: view}, nil
		}
		return nil, PlayTurnOutput{}, err
	}

	view, err := s.engine.Project(inst, input.Actor)
	if err != nil {
		return nil, PlayTurnOutput{}, err
	}
	return nil, PlayTurnOutput{
		Narration: turn.Narration,
		Events:    turn.Events,
		View:      view,
	}, nil
}

func (s *Server) handleInspectView(ctx context.Context, req *sdk.CallToolRequest, input InspectViewInput) (*sdk.CallToolResult, *adventure.View, error) {
	if input.Actor == "" {
		return nil, nil, fmt.Errorf("actor is required")
	}
	inst, err := s.loadInstance(ctx, input.ID)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.engine.Project(inst, input.Actor)
	if err != nil {
		return nil, nil, err
	}
	return nil, view, nil
}

func (s *Server) loadInstance(ctx context.Context, idStr string) (*handlers.Instance, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid instance id %q", idStr)
	}
	inst, err := s.engine.Store().Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("instance not found")
	}
	return inst, nil
}

func instanceOutput(m sva.Metadata) InstanceOutput {
	return InstanceOutput{
		ID:        m.ID.String(),
		Name:      m.Name,
		Seed:      m.Seed,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		TurnCount: m.TurnCount,
	}
}
