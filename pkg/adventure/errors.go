package adventure

import "fmt"

// NotFoundError reports that a named entity does not exist in the world.
type NotFoundError struct {
	Kind string // "player", "item" or "room"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s named %q exists", e.Kind, e.Name)
}

// RejectsTurn marks an unknown action target as a playable rejection: the
// generator named an entity that is not there, the world is fine.
func (e *NotFoundError) RejectsTurn() {}

// IntegrityError reports a corrupt world state, such as an entity with a
// missing location relation. These should never occur against a
// well-formed world and are not user errors: callers should abort rather
// than repair.
type IntegrityError struct {
	Subject string
	Detail  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("world state corrupt: %s: %s", e.Subject, e.Detail)
}

// PreconditionError reports that an action failed a domain rule. The
// message carries enough context to render directly to the user.
type PreconditionError struct {
	Action Kind
	Actor  string
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s cannot %s: %s", e.Actor, e.Action, e.Detail)
}

// RejectsTurn marks a precondition failure as a playable rejection.
func (e *PreconditionError) RejectsTurn() {}

func precondition(action Kind, actor, format string, args ...any) *PreconditionError {
	return &PreconditionError{
		Action: action,
		Actor:  actor,
		Detail: fmt.Sprintf(format, args...),
	}
}
