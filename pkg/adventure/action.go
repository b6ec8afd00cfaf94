package adventure

import "fmt"

// Kind names one transition in the closed action vocabulary.
type Kind string

const (
	TakeItem     Kind = "take_item"     // pick up an item from the actor's room
	DropItem     Kind = "drop_item"     // put a held item down in the actor's room
	EquipItem    Kind = "equip_item"    // equip an item from inventory
	StowItem     Kind = "stow_item"     // return an equipped item to inventory
	MoveInRoom   Kind = "move_in_room"  // reposition within the current room
	GoToRoom     Kind = "go_to_room"    // move through a passage to a connected room
	CombineItems Kind = "combine_items" // consume two held items to create a new one
	Inspect      Kind = "inspect"       // look closely at an item, room or player
)

// Kinds returns the full action vocabulary, used to build generator
// prompts.
func Kinds() []Kind {
	return []Kind{TakeItem, DropItem, EquipItem, StowItem, MoveInRoom, GoToRoom, CombineItems, Inspect}
}

// Action is one structured transition produced by the external generator.
// Actor is always required; the other fields depend on Kind. Description
// is free narrative text about the new state of whatever moved, persisted
// into the affected relation.
type Action struct {
	Kind        Kind   `json:"kind"`
	Actor       string `json:"actor"`
	Item        string `json:"item,omitempty"`
	OtherItem   string `json:"other_item,omitempty"`
	Room        string `json:"room,omitempty"`
	Target      string `json:"target,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate checks that the action names its kind-specific required
// fields. It does not touch world state; preconditions are the
// interpreter's job.
func (a Action) Validate() error {
	if a.Actor == "" {
		return fmt.Errorf("action %q is missing an actor", a.Kind)
	}
	switch a.Kind {
	case TakeItem, DropItem, EquipItem, StowItem:
		if a.Item == "" {
			return fmt.Errorf("action %q is missing an item", a.Kind)
		}
	case MoveInRoom:
		if a.Description == "" {
			return fmt.Errorf("action %q is missing a description", a.Kind)
		}
	case GoToRoom:
		if a.Room == "" {
			return fmt.Errorf("action %q is missing a room", a.Kind)
		}
	case CombineItems:
		if a.Item == "" || a.OtherItem == "" {
			return fmt.Errorf("action %q requires two items", a.Kind)
		}
		if a.Item == a.OtherItem {
			return fmt.Errorf("action %q requires two distinct items", a.Kind)
		}
	case Inspect:
		if a.Target == "" {
			return fmt.Errorf("action %q is missing a target", a.Kind)
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}
