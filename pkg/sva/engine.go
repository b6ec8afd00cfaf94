package sva

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Game is the world-model contract an application implements to run on the
// engine. Implementations must be pure with respect to the engine: Apply
// mutates only the state it is given, and Project has no side effects.
type Game[S, V, A any] interface {
	// Clone returns a deep copy of the state, fully independent of the
	// original. The engine relies on this for turn atomicity and for
	// isolating turn history from later mutation.
	Clone(s S) S

	// Project derives the actor-scoped view of the state. Calling it twice
	// on identical state must yield structurally identical views.
	Project(s S, actor string) (V, error)

	// Apply interprets one action against the state, enforcing all domain
	// preconditions. On success it mutates s and returns a short factual
	// record of what changed. On failure s may be left partially modified;
	// the engine only ever applies actions to a discardable copy.
	Apply(ctx context.Context, s S, a A) (string, error)
}

// Generator produces a structured turn proposal from an actor's view and
// free-text input. Implementations are typically LLM-backed and fallible;
// the engine treats any error as "no turn happened".
type Generator[V, A any] interface {
	GenerateTurn(ctx context.Context, view V, input string) (*Proposal[A], error)
}

// Proposal is the generator's output for one turn: an ordered list of
// actions plus the narration that accompanies them.
type Proposal[A any] struct {
	Actions   []A    `json:"actions"`
	Narration string `json:"narration"`
}

// Engine orchestrates the turn cycle for one application. It assumes at
// most one in-flight RunTurn per instance ID; calls for different
// instances are independent and may run concurrently.
type Engine[S, V, A any] struct {
	game      Game[S, V, A]
	generator Generator[V, A]
	store     Store[S, A]
	logger    *slog.Logger
}

func NewEngine[S, V, A any](game Game[S, V, A], generator Generator[V, A], store Store[S, A], logger *slog.Logger) *Engine[S, V, A] {
	return &Engine[S, V, A]{
		game:      game,
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

// Game returns the engine's world-model implementation.
func (e *Engine[S, V, A]) Game() Game[S, V, A] { return e.game }

// Store returns the engine's instance store.
func (e *Engine[S, V, A]) Store() Store[S, A] { return e.store }

// CreateInstance builds and persists a new instance from an initial state.
// The initial state is deep-copied twice so that neither the caller nor
// later turns can mutate the stored snapshot.
func (e *Engine[S, V, A]) CreateInstance(ctx context.Context, name, seed string, initial S) (*Instance[S, A], error) {
	inst := &Instance[S, A]{
		ID:           uuid.New(),
		Name:         name,
		Seed:         seed,
		CreatedAt:    time.Now().UTC(),
		InitialState: e.game.Clone(initial),
		State:        e.game.Clone(initial),
		Turns:        make([]Turn[S, A], 0),
	}
	if inst.Name == "" {
		inst.Name = inst.ID.String()
	}

	if err := e.store.Save(ctx, inst); err != nil {
		return nil, fmt.Errorf("failed to save new instance: %w", err)
	}

	e.logger.Info("Instance created", "instance_id", inst.ID, "name", inst.Name, "seed", seed)
	return inst, nil
}

// Project derives the actor's current view of an instance.
func (e *Engine[S, V, A]) Project(inst *Instance[S, A], actor string) (V, error) {
	return e.game.Project(inst.State, actor)
}

// RunTurn executes one full interaction cycle against an instance.
//
// The cycle is atomic per turn: all actions from the generator are applied
// in order against a deep copy of the current state, and the copy is
// committed only if every action succeeds. On any failure path the
// instance is unchanged and nothing is written to the store.
//
// Error taxonomy: *GenerationError when the external generator fails,
// *RejectedTurnError when one or more actions fail their preconditions
// (Apply errors implementing TurnRejector), *PersistenceError when the
// turn committed in memory but the store write failed. Any other Apply
// error — a state-integrity failure, or a *GenerationError from a
// generator call embedded in an action — aborts the turn with its own
// type.
func (e *Engine[S, V, A]) RunTurn(ctx context.Context, inst *Instance[S, A], actor, input string) (*Turn[S, A], error) {
	view, err := e.game.Project(inst.State, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to project view for %q: %w", actor, err)
	}

	proposal, err := e.generator.GenerateTurn(ctx, view, input)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	// Apply every action against a copy, so a mid-turn failure cannot leave
	// the instance partially mutated. Later actions see the effects of
	// earlier ones in the same turn.
	candidate := e.game.Clone(inst.State)
	events := make([]string, 0, len(proposal.Actions))
	var actionErrs []error
	for _, action := range proposal.Actions {
		event, err := e.game.Apply(ctx, candidate, action)
		if err != nil {
			var rejector TurnRejector
			if errors.As(err, &rejector) {
				actionErrs = append(actionErrs, err)
				continue
			}
			// Integrity and embedded-generator failures are not playable
			// outcomes; abort with the error's own type.
			return nil, err
		}
		events = append(events, event)
	}
	if len(actionErrs) > 0 {
		e.logger.Info("Turn rejected",
			"instance_id", inst.ID,
			"actor", actor,
			"failures", len(actionErrs),
			"actions", len(proposal.Actions))
		return nil, &RejectedTurnError{Errors: actionErrs}
	}

	turn := Turn[S, A]{
		State:     candidate,
		Actions:   proposal.Actions,
		Narration: proposal.Narration,
		Events:    events,
		CreatedAt: time.Now().UTC(),
	}
	inst.Turns = append(inst.Turns, turn)
	// The turn owns candidate; the live state gets its own copy so
	// history snapshots can never be mutated through it.
	inst.State = e.game.Clone(candidate)

	if err := e.store.Save(ctx, inst); err != nil {
		e.logger.Error("Turn committed but save failed", "instance_id", inst.ID, "error", err)
		return inst.LastTurn(), &PersistenceError{Err: err}
	}

	e.logger.Debug("Turn completed",
		"instance_id", inst.ID,
		"actor", actor,
		"actions", len(proposal.Actions),
		"turn", len(inst.Turns))
	return inst.LastTurn(), nil
}
