package adventure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rybla/sva-engine/pkg/sva"
)

// WorldGenerator is the external collaborator that invents new world
// content on demand: furnishing a room on first entry and producing the
// result of an item combination. Implementations are typically LLM-backed
// and fallible.
type WorldGenerator interface {
	// FurnishRoom fills in an unvisited room: a fuller description plus any
	// items found there. The world is read-only input for prompting.
	FurnishRoom(ctx context.Context, w *World, room string) (*Furnishing, error)

	// CombineItems invents the item produced by combining the two inputs.
	CombineItems(ctx context.Context, w *World, first, second Item) (*CombinedItem, error)
}

// Furnishing is generated room content.
type Furnishing struct {
	Description string       `json:"description"`
	Items       []PlacedItem `json:"items,omitempty"`
}

// PlacedItem is a generated item together with narrative text about where
// it sits in the room.
type PlacedItem struct {
	Item      Item   `json:"item"`
	Placement string `json:"placement,omitempty"`
}

// CombinedItem is the generated result of an item combination.
type CombinedItem struct {
	Item      Item   `json:"item"`
	Narration string `json:"narration,omitempty"`
}

// Game hosts the adventure world model on the generic engine. It is
// stateless: all state flows through the *World arguments.
type Game struct {
	worldGen WorldGenerator
	logger   *slog.Logger
}

var _ sva.Game[*World, *View, Action] = (*Game)(nil)

// NewGame creates the adventure game. worldGen may be nil, in which case
// rooms are entered without furnishing and item combination is rejected.
func NewGame(worldGen WorldGenerator, logger *slog.Logger) *Game {
	return &Game{worldGen: worldGen, logger: logger}
}

func (g *Game) Clone(w *World) *World { return w.Clone() }

func (g *Game) Project(w *World, actor string) (*View, error) {
	return Project(w, actor)
}

// Apply interprets one action against the world, checking every
// precondition before mutating anything for that action. The engine only
// ever calls it on a discardable copy, so a failure mid-turn cannot leak
// partial effects into live state.
func (g *Game) Apply(ctx context.Context, w *World, a Action) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if _, err := w.GetPlayer(a.Actor); err != nil {
		return "", err
	}

	switch a.Kind {
	case TakeItem:
		return g.applyTake(w, a)
	case DropItem:
		return g.applyDrop(w, a)
	case EquipItem:
		return g.applyEquip(w, a)
	case StowItem:
		return g.applyStow(w, a)
	case MoveInRoom:
		return g.applyMoveInRoom(w, a)
	case GoToRoom:
		return g.applyGoToRoom(ctx, w, a)
	case CombineItems:
		return g.applyCombine(ctx, w, a)
	case Inspect:
		return g.applyInspect(w, a)
	}
	// Unreachable after Validate, which rejects unknown kinds.
	return "", fmt.Errorf("unknown action kind %q", a.Kind)
}

func (g *Game) applyTake(w *World, a Action) (string, error) {
	actorLoc, err := w.PlayerLocationOf(a.Actor)
	if err != nil {
		return "", err
	}
	loc, err := w.ItemLocationOf(a.Item)
	if err != nil {
		return "", err
	}

	switch loc.Kind {
	case InRoom:
		if loc.Room != actorLoc.Room {
			return "", precondition(TakeItem, a.Actor, "the %s is in the %s, but %s is in the %s", a.Item, loc.Room, a.Actor, actorLoc.Room)
		}
	case InInventory, OnPlayer:
		if loc.Player == a.Actor {
			return "", precondition(TakeItem, a.Actor, "the %s is already in %s's possession", a.Item, a.Actor)
		}
		return "", precondition(TakeItem, a.Actor, "the %s is held by %s", a.Item, loc.Player)
	default:
		return "", &IntegrityError{Subject: "item " + a.Item, Detail: "unknown location kind " + string(loc.Kind)}
	}

	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("carried by %s", a.Actor)
	}
	if err := w.SetItemLocation(a.Item, ItemLocation{Kind: InInventory, Player: a.Actor, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s takes the %s.", a.Actor, a.Item), nil
}

func (g *Game) applyDrop(w *World, a Action) (string, error) {
	actorLoc, err := w.PlayerLocationOf(a.Actor)
	if err != nil {
		return "", err
	}
	loc, err := w.ItemLocationOf(a.Item)
	if err != nil {
		return "", err
	}

	if loc.Kind == InRoom || loc.Player != a.Actor {
		return "", precondition(DropItem, a.Actor, "the %s is not in %s's possession", a.Item, a.Actor)
	}

	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("left in the %s", actorLoc.Room)
	}
	if err := w.SetItemLocation(a.Item, ItemLocation{Kind: InRoom, Room: actorLoc.Room, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s drops the %s in the %s.", a.Actor, a.Item, actorLoc.Room), nil
}

func (g *Game) applyEquip(w *World, a Action) (string, error) {
	loc, err := w.ItemLocationOf(a.Item)
	if err != nil {
		return "", err
	}

	if loc.Kind == OnPlayer && loc.Player == a.Actor {
		return "", precondition(EquipItem, a.Actor, "the %s is already equipped", a.Item)
	}
	if loc.Kind != InInventory || loc.Player != a.Actor {
		return "", precondition(EquipItem, a.Actor, "the %s is not in %s's inventory", a.Item, a.Actor)
	}

	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("equipped by %s", a.Actor)
	}
	if err := w.SetItemLocation(a.Item, ItemLocation{Kind: OnPlayer, Player: a.Actor, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s equips the %s.", a.Actor, a.Item), nil
}

func (g *Game) applyStow(w *World, a Action) (string, error) {
	loc, err := w.ItemLocationOf(a.Item)
	if err != nil {
		return "", err
	}

	if loc.Kind == InInventory && loc.Player == a.Actor {
		return "", precondition(StowItem, a.Actor, "the %s is already stowed", a.Item)
	}
	if loc.Kind != OnPlayer || loc.Player != a.Actor {
		return "", precondition(StowItem, a.Actor, "the %s is not equipped by %s", a.Item, a.Actor)
	}

	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("stowed in %s's inventory", a.Actor)
	}
	if err := w.SetItemLocation(a.Item, ItemLocation{Kind: InInventory, Player: a.Actor, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s stows the %s.", a.Actor, a.Item), nil
}

func (g *Game) applyMoveInRoom(w *World, a Action) (string, error) {
	actorLoc, err := w.PlayerLocationOf(a.Actor)
	if err != nil {
		return "", err
	}

	actorLoc.Description = a.Description
	if err := w.SetPlayerLocation(a.Actor, actorLoc); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s moves within the %s.", a.Actor, actorLoc.Room), nil
}

func (g *Game) applyGoToRoom(ctx context.Context, w *World, a Action) (string, error) {
	actorLoc, err := w.PlayerLocationOf(a.Actor)
	if err != nil {
		return "", err
	}
	room, err := w.GetRoom(a.Room)
	if err != nil {
		return "", err
	}
	if a.Room == actorLoc.Room {
		return "", precondition(GoToRoom, a.Actor, "%s is already in the %s", a.Actor, a.Room)
	}
	if !w.Connected(actorLoc.Room, a.Room) {
		return "", precondition(GoToRoom, a.Actor, "the %s is not connected to the %s", a.Room, actorLoc.Room)
	}

	if !room.Visited {
		if err := g.furnish(ctx, w, room); err != nil {
			return "", err
		}
	}

	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("just arrived from the %s", actorLoc.Room)
	}
	if err := w.SetPlayerLocation(a.Actor, PlayerLocation{Room: a.Room, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s goes to the %s.", a.Actor, a.Room), nil
}

// furnish runs lazy room generation on first entry and marks the room
// visited.
func (g *Game) furnish(ctx context.Context, w *World, room Room) error {
	if g.worldGen != nil {
		f, err := g.worldGen.FurnishRoom(ctx, w, room.Name)
		if err != nil {
			return &sva.GenerationError{Err: fmt.Errorf("failed to furnish room %q: %w", room.Name, err)}
		}
		if f.Description != "" {
			room.Description = f.Description
		}
		for _, placed := range f.Items {
			if _, ok := w.Items[placed.Item.Name]; ok {
				// The generator reused an existing name; the original wins.
				continue
			}
			if err := w.AddItem(placed.Item, ItemLocation{Kind: InRoom, Room: room.Name, Description: placed.Placement}); err != nil {
				return err
			}
		}
		if g.logger != nil {
			g.logger.Debug("Room furnished", "room", room.Name, "items", len(f.Items))
		}
	}
	room.Visited = true
	w.AddRoom(room)
	return nil
}

func (g *Game) applyCombine(ctx context.Context, w *World, a Action) (string, error) {
	first, err := w.GetItem(a.Item)
	if err != nil {
		return "", err
	}
	second, err := w.GetItem(a.OtherItem)
	if err != nil {
		return "", err
	}
	for _, name := range []string{a.Item, a.OtherItem} {
		loc, err := w.ItemLocationOf(name)
		if err != nil {
			return "", err
		}
		if loc.Kind == InRoom || loc.Player != a.Actor {
			return "", precondition(CombineItems, a.Actor, "the %s is not in %s's possession", name, a.Actor)
		}
	}

	if g.worldGen == nil {
		return "", precondition(CombineItems, a.Actor, "nothing happens when the %s and the %s are combined", a.Item, a.OtherItem)
	}
	combined, err := g.worldGen.CombineItems(ctx, w, first, second)
	if err != nil {
		return "", &sva.GenerationError{Err: fmt.Errorf("failed to combine %q and %q: %w", a.Item, a.OtherItem, err)}
	}
	if combined.Item.Name == "" {
		return "", &sva.GenerationError{Err: fmt.Errorf("combination of %q and %q produced an unnamed item", a.Item, a.OtherItem)}
	}

	// Consume the inputs, then create the result in the actor's inventory.
	// Reusing an input's name is fine once it is consumed, but the result
	// must never displace an unrelated item elsewhere in the world.
	if err := w.RemoveItem(a.Item); err != nil {
		return "", err
	}
	if err := w.RemoveItem(a.OtherItem); err != nil {
		return "", err
	}
	if _, ok := w.Items[combined.Item.Name]; ok {
		return "", &sva.GenerationError{Err: fmt.Errorf("combination of %q and %q produced %q, which already names another item", a.Item, a.OtherItem, combined.Item.Name)}
	}
	desc := a.Description
	if desc == "" {
		desc = fmt.Sprintf("made from the %s and the %s", a.Item, a.OtherItem)
	}
	if err := w.AddItem(combined.Item, ItemLocation{Kind: InInventory, Player: a.Actor, Description: desc}); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s combines the %s and the %s into the %s.", a.Actor, a.Item, a.OtherItem, combined.Item.Name), nil
}

func (g *Game) applyInspect(w *World, a Action) (string, error) {
	if it, err := w.GetItem(a.Target); err == nil {
		loc, err := w.ItemLocationOf(a.Target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s (%s)", it.Name, it.Description, loc.Description), nil
	}
	if r, err := w.GetRoom(a.Target); err == nil {
		return fmt.Sprintf("%s: %s", r.Name, r.Description), nil
	}
	if p, err := w.GetPlayer(a.Target); err == nil {
		loc, err := w.PlayerLocationOf(a.Target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s (%s, in the %s)", p.Name, p.Description, loc.Description, loc.Room), nil
	}
	return "", precondition(Inspect, a.Actor, "there is nothing called %q here", a.Target)
}
