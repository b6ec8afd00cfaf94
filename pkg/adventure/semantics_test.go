package adventure

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/rybla/sva-engine/pkg/sva"
)

type fakeWorldGen struct {
	furnishing   *Furnishing
	furnishErr   error
	combined     *CombinedItem
	combineErr   error
	furnishCalls int
}

func (f *fakeWorldGen) FurnishRoom(ctx context.Context, w *World, room string) (*Furnishing, error) {
	f.furnishCalls++
	if f.furnishErr != nil {
		return nil, f.furnishErr
	}
	return f.furnishing, nil
}

func (f *fakeWorldGen) CombineItems(ctx context.Context, w *World, first, second Item) (*CombinedItem, error) {
	if f.combineErr != nil {
		return nil, f.combineErr
	}
	return f.combined, nil
}

func testGame(gen WorldGenerator) *Game {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGame(gen, logger)
}

func TestGame_Apply_Take(t *testing.T) {
	g := testGame(nil)
	ctx := context.Background()

	w := testWorld(t)
	event, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if event != "Silas takes the mango." {
		t.Errorf("Unexpected event %q", event)
	}
	loc := w.ItemLocations["mango"]
	if loc.Kind != InInventory || loc.Player != "Silas" {
		t.Errorf("Item not in inventory: %+v", loc)
	}

	// Taking an item from another room fails the same-room check.
	w = testWorld(t)
	if err := w.SetPlayerLocation("Silas", PlayerLocation{Room: "Gallery"}); err != nil {
		t.Fatalf("SetPlayerLocation failed: %v", err)
	}
	_, err = g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"})
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("Expected PreconditionError, got %v", err)
	}
	if !strings.Contains(pre.Error(), "Altar Room") {
		t.Errorf("Expected the message to name the item's room, got %q", pre.Error())
	}

	// Taking an already-held item fails.
	w = testWorld(t)
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "machete"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError taking a held item, got %v", err)
	}
}

func TestGame_Apply_Drop(t *testing.T) {
	g := testGame(nil)
	ctx := context.Background()
	w := testWorld(t)

	event, err := g.Apply(ctx, w, Action{Kind: DropItem, Actor: "Silas", Item: "machete", Description: "leaning against the altar"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if event != "Silas drops the machete in the Altar Room." {
		t.Errorf("Unexpected event %q", event)
	}
	loc := w.ItemLocations["machete"]
	if loc.Kind != InRoom || loc.Room != "Altar Room" || loc.Description != "leaning against the altar" {
		t.Errorf("Unexpected location %+v", loc)
	}

	var pre *PreconditionError
	if _, err := g.Apply(ctx, w, Action{Kind: DropItem, Actor: "Silas", Item: "mango"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError dropping an item not held, got %v", err)
	}
}

func TestGame_Apply_EquipStow(t *testing.T) {
	g := testGame(nil)
	ctx := context.Background()
	w := testWorld(t)

	if _, err := g.Apply(ctx, w, Action{Kind: EquipItem, Actor: "Silas", Item: "machete"}); err != nil {
		t.Fatalf("Equip failed: %v", err)
	}
	if w.ItemLocations["machete"].Kind != OnPlayer {
		t.Error("Item not equipped")
	}

	var pre *PreconditionError
	if _, err := g.Apply(ctx, w, Action{Kind: EquipItem, Actor: "Silas", Item: "machete"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError equipping twice, got %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: EquipItem, Actor: "Silas", Item: "mango"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError equipping from the floor, got %v", err)
	}

	if _, err := g.Apply(ctx, w, Action{Kind: StowItem, Actor: "Silas", Item: "machete"}); err != nil {
		t.Fatalf("Stow failed: %v", err)
	}
	if w.ItemLocations["machete"].Kind != InInventory {
		t.Error("Item not stowed")
	}
	if _, err := g.Apply(ctx, w, Action{Kind: StowItem, Actor: "Silas", Item: "machete"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError stowing twice, got %v", err)
	}
}

func TestGame_Apply_MoveInRoom(t *testing.T) {
	g := testGame(nil)
	w := testWorld(t)

	if _, err := g.Apply(context.Background(), w, Action{Kind: MoveInRoom, Actor: "Silas", Description: "crouched behind the altar"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	loc := w.PlayerLocations["Silas"]
	if loc.Room != "Altar Room" || loc.Description != "crouched behind the altar" {
		t.Errorf("Unexpected location %+v", loc)
	}

	// Description is required at the vocabulary level.
	if _, err := g.Apply(context.Background(), w, Action{Kind: MoveInRoom, Actor: "Silas"}); err == nil {
		t.Error("Expected validation error for missing description")
	}
}

func TestGame_Apply_GoToRoom(t *testing.T) {
	gen := &fakeWorldGen{furnishing: &Furnishing{
		Description: "Knee-deep water covers the hall. Something glints below.",
		Items: []PlacedItem{
			{Item: Item{Name: "silver coin", Description: "An old coin."}, Placement: "glinting under the water"},
		},
	}}
	g := testGame(gen)
	ctx := context.Background()
	w := testWorld(t)

	event, err := g.Apply(ctx, w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Gallery"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if event != "Silas goes to the Gallery." {
		t.Errorf("Unexpected event %q", event)
	}
	if w.PlayerLocations["Silas"].Room != "Gallery" {
		t.Error("Player did not move")
	}

	// First entry furnished the room.
	if gen.furnishCalls != 1 {
		t.Errorf("Expected 1 furnish call, got %d", gen.furnishCalls)
	}
	room := w.Rooms["Gallery"]
	if !room.Visited {
		t.Error("Room not marked visited")
	}
	if room.Description != gen.furnishing.Description {
		t.Errorf("Room description not updated: %q", room.Description)
	}
	if loc, ok := w.ItemLocations["silver coin"]; !ok || loc.Room != "Gallery" {
		t.Errorf("Generated item not placed: %+v", loc)
	}
	if err := w.Validate(); err != nil {
		t.Errorf("World invalid after furnishing: %v", err)
	}

	// Re-entering never furnishes again.
	if _, err := g.Apply(ctx, w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Altar Room"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Gallery"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if gen.furnishCalls != 1 {
		t.Errorf("Room furnished again on revisit: %d calls", gen.furnishCalls)
	}

	var pre *PreconditionError
	if _, err := g.Apply(ctx, w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Gallery"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError moving to the current room, got %v", err)
	}

	w2 := testWorld(t)
	w2.AddRoom(Room{Name: "Treasury"})
	if _, err := g.Apply(ctx, w2, Action{Kind: GoToRoom, Actor: "Silas", Room: "Treasury"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError for unconnected room, got %v", err)
	}
}

func TestGame_Apply_GoToRoom_FurnishError(t *testing.T) {
	gen := &fakeWorldGen{furnishErr: errors.New("model overloaded")}
	g := testGame(gen)
	w := testWorld(t)

	var generation *sva.GenerationError
	if _, err := g.Apply(context.Background(), w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Gallery"}); !errors.As(err, &generation) {
		t.Fatalf("Expected GenerationError from a failing furnish, got %v", err)
	}
	if w.PlayerLocations["Silas"].Room != "Altar Room" {
		t.Error("Player moved despite furnish failure")
	}
}

func TestGame_Apply_GoToRoom_NilGenerator(t *testing.T) {
	g := testGame(nil)
	w := testWorld(t)

	if _, err := g.Apply(context.Background(), w, Action{Kind: GoToRoom, Actor: "Silas", Room: "Gallery"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !w.Rooms["Gallery"].Visited {
		t.Error("Room should be marked visited even without a generator")
	}
}

func TestGame_Apply_Combine(t *testing.T) {
	gen := &fakeWorldGen{combined: &CombinedItem{
		Item:      Item{Name: "mango spear", Description: "A mango impaled on a machete."},
		Narration: "With a wet crunch, the machete skewers the mango.",
	}}
	g := testGame(gen)
	ctx := context.Background()

	w := testWorld(t)
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}); err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	event, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if event != "Silas combines the mango and the machete into the mango spear." {
		t.Errorf("Unexpected event %q", event)
	}

	// Inputs are consumed; the result is in the actor's inventory.
	if _, ok := w.Items["mango"]; ok {
		t.Error("First input not consumed")
	}
	if _, ok := w.Items["machete"]; ok {
		t.Error("Second input not consumed")
	}
	loc := w.ItemLocations["mango spear"]
	if loc.Kind != InInventory || loc.Player != "Silas" {
		t.Errorf("Result not in inventory: %+v", loc)
	}
	if err := w.Validate(); err != nil {
		t.Errorf("World invalid after combination: %v", err)
	}
}

func TestGame_Apply_Combine_Preconditions(t *testing.T) {
	gen := &fakeWorldGen{combined: &CombinedItem{Item: Item{Name: "thing"}}}
	g := testGame(gen)
	ctx := context.Background()
	w := testWorld(t)

	// The mango is still on the floor.
	var pre *PreconditionError
	if _, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError for unheld input, got %v", err)
	}

	// Without a generator, combination is refused rather than failed.
	g = testGame(nil)
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError with nil generator, got %v", err)
	}
}

func TestGame_Apply_Combine_NameCollision(t *testing.T) {
	// The generator reuses the name of an unrelated item elsewhere in the
	// world. That item must survive untouched and the turn must fail.
	gen := &fakeWorldGen{combined: &CombinedItem{Item: Item{Name: "stone idol", Description: "a fake"}}}
	g := testGame(gen)
	ctx := context.Background()

	w := testWorld(t)
	if err := w.AddItem(Item{Name: "stone idol", Description: "A jade idol, heavier than it looks."}, ItemLocation{Kind: InRoom, Room: "Gallery", Description: "on a plinth"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}); err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	var generation *sva.GenerationError
	_, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"})
	if !errors.As(err, &generation) {
		t.Fatalf("Expected GenerationError for a colliding result name, got %v", err)
	}
	if w.Items["stone idol"].Description != "A jade idol, heavier than it looks." {
		t.Error("Existing item overwritten by the combination result")
	}
	if loc := w.ItemLocations["stone idol"]; loc.Kind != InRoom || loc.Room != "Gallery" {
		t.Errorf("Existing item's location stolen: %+v", loc)
	}
}

func TestGame_Apply_Combine_ReusesInputName(t *testing.T) {
	// An input's name is free again once the input is consumed.
	gen := &fakeWorldGen{combined: &CombinedItem{Item: Item{Name: "machete", Description: "A machete with mango pulp on the blade."}}}
	g := testGame(gen)
	ctx := context.Background()

	w := testWorld(t)
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"}); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if w.Items["machete"].Description != "A machete with mango pulp on the blade." {
		t.Error("Expected the result to replace the consumed input")
	}
	if err := w.Validate(); err != nil {
		t.Errorf("World invalid after combination: %v", err)
	}
}

func TestGame_Apply_Combine_GeneratorError(t *testing.T) {
	gen := &fakeWorldGen{combineErr: errors.New("model overloaded")}
	g := testGame(gen)
	ctx := context.Background()

	w := testWorld(t)
	if _, err := g.Apply(ctx, w, Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}); err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	var generation *sva.GenerationError
	if _, err := g.Apply(ctx, w, Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"}); !errors.As(err, &generation) {
		t.Errorf("Expected GenerationError from a failing combination, got %v", err)
	}
}

func TestGame_Apply_Inspect(t *testing.T) {
	g := testGame(nil)
	ctx := context.Background()
	w := testWorld(t)

	event, err := g.Apply(ctx, w, Action{Kind: Inspect, Actor: "Silas", Target: "mango"})
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !strings.Contains(event, "A ripe mango.") || !strings.Contains(event, "resting on the altar") {
		t.Errorf("Unexpected inspect output %q", event)
	}

	if _, err := g.Apply(ctx, w, Action{Kind: Inspect, Actor: "Silas", Target: "Altar Room"}); err != nil {
		t.Errorf("Inspecting a room failed: %v", err)
	}
	if _, err := g.Apply(ctx, w, Action{Kind: Inspect, Actor: "Silas", Target: "Silas"}); err != nil {
		t.Errorf("Inspecting a player failed: %v", err)
	}

	var pre *PreconditionError
	if _, err := g.Apply(ctx, w, Action{Kind: Inspect, Actor: "Silas", Target: "the void"}); !errors.As(err, &pre) {
		t.Errorf("Expected PreconditionError for unknown target, got %v", err)
	}
}

func TestGame_Apply_UnknownActor(t *testing.T) {
	g := testGame(nil)
	w := testWorld(t)

	var notFound *NotFoundError
	if _, err := g.Apply(context.Background(), w, Action{Kind: TakeItem, Actor: "Nobody", Item: "mango"}); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for unknown actor, got %v", err)
	}
}

func TestAction_Validate(t *testing.T) {
	cases := []struct {
		name    string
		action  Action
		wantErr bool
	}{
		{"take ok", Action{Kind: TakeItem, Actor: "Silas", Item: "mango"}, false},
		{"take missing item", Action{Kind: TakeItem, Actor: "Silas"}, true},
		{"missing actor", Action{Kind: TakeItem, Item: "mango"}, true},
		{"move missing description", Action{Kind: MoveInRoom, Actor: "Silas"}, true},
		{"go missing room", Action{Kind: GoToRoom, Actor: "Silas"}, true},
		{"combine same item", Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "mango"}, true},
		{"combine ok", Action{Kind: CombineItems, Actor: "Silas", Item: "mango", OtherItem: "machete"}, false},
		{"inspect missing target", Action{Kind: Inspect, Actor: "Silas"}, true},
		{"unknown kind", Action{Kind: "teleport", Actor: "Silas"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.action.Validate()
			if tc.wantErr && err == nil {
				t.Error("Expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
