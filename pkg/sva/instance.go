// Package sva implements a generic state/view/action engine for
// prompt-driven interactive applications. An application supplies a world
// model (the state), a projection of that state into an actor-scoped view,
// and an interpreter that applies externally generated actions to the
// state. The engine owns the turn cycle: project, generate, interpret,
// record, persist.
package sva

import (
	"time"

	"github.com/google/uuid"
)

// Instance is one persisted session of an application. S is the world
// model type and must be a mutable reference type (typically a pointer)
// whose deep copies are produced by Game.Clone. A is the action type.
//
// State always equals the State of the last turn, or InitialState when no
// turns have been taken. Turns is append-only: entries are never reordered
// or deleted.
type Instance[S, A any] struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seed      string    `json:"seed,omitempty"` // seed resource the instance was created from
	CreatedAt time.Time `json:"created_at"`

	InitialState S            `json:"initial_state"`
	State        S            `json:"state"`
	Turns        []Turn[S, A] `json:"turns"`
}

// Turn records one completed interaction cycle. State is the world model
// snapshot immediately after the turn's actions were applied; it is a deep
// copy owned by the turn and never mutated afterwards.
type Turn[S, A any] struct {
	State     S         `json:"state"`
	Actions   []A       `json:"actions"`
	Narration string    `json:"narration"`
	Events    []string  `json:"events,omitempty"` // factual per-action records from the interpreter
	CreatedAt time.Time `json:"created_at"`
}

// Metadata is the listing form of an instance, returned by Store.List.
type Metadata struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seed      string    `json:"seed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	TurnCount int       `json:"turn_count"`
}

// Meta returns the instance's listing metadata.
func (inst *Instance[S, A]) Meta() Metadata {
	return Metadata{
		ID:        inst.ID,
		Name:      inst.Name,
		Seed:      inst.Seed,
		CreatedAt: inst.CreatedAt,
		TurnCount: len(inst.Turns),
	}
}

// LastTurn returns the most recent turn, or nil if none have been taken.
func (inst *Instance[S, A]) LastTurn() *Turn[S, A] {
	if len(inst.Turns) == 0 {
		return nil
	}
	return &inst.Turns[len(inst.Turns)-1]
}
