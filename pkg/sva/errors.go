package sva

import (
	"fmt"
	"strings"
)

// TurnRejector marks an error from Game.Apply as a precondition failure:
// a playable outcome that rejects the turn. Apply errors without this
// method abort the turn and surface to the caller unchanged.
type TurnRejector interface {
	error
	RejectsTurn()
}

// GenerationError wraps a failure of the external action generator.
// The instance is guaranteed unchanged when this error is returned.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("action generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RejectedTurnError reports that one or more actions in a proposed turn
// failed their preconditions. The whole turn is discarded: the instance is
// unchanged and nothing is persisted.
type RejectedTurnError struct {
	Errors []error
}

func (e *RejectedTurnError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "turn rejected: " + strings.Join(msgs, "; ")
}

// Messages returns the individual precondition failures, suitable for
// rendering directly to the user.
func (e *RejectedTurnError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return msgs
}

// PersistenceError reports that a turn was committed in memory but the
// subsequent store write failed. The caller should retry the save; the
// instance itself is consistent.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist instance: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
