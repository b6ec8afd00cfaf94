package adventure

import (
	"errors"
	"testing"
)

// testWorld builds a small two-room world with one player and two items.
func testWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld("Test World")
	w.AddRoom(Room{Name: "Altar Room", Description: "A low stone chamber.", Visited: true})
	w.AddRoom(Room{Name: "Gallery", Description: "A pillared hall."})
	if err := w.AddConnection("Altar Room", "Gallery"); err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}
	if err := w.AddPlayer(Player{Name: "Silas"}, PlayerLocation{Room: "Altar Room", Description: "standing before the altar"}); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if err := w.AddItem(Item{Name: "mango", Description: "A ripe mango."}, ItemLocation{Kind: InRoom, Room: "Altar Room", Description: "resting on the altar"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := w.AddItem(Item{Name: "machete"}, ItemLocation{Kind: InInventory, Player: "Silas"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return w
}

func TestWorld_Clone_Independent(t *testing.T) {
	w := testWorld(t)
	c := w.Clone()

	if err := c.SetItemLocation("mango", ItemLocation{Kind: InInventory, Player: "Silas"}); err != nil {
		t.Fatalf("SetItemLocation failed: %v", err)
	}
	c.AddRoom(Room{Name: "Treasury"})
	if err := c.AddConnection("Gallery", "Treasury"); err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}

	if w.ItemLocations["mango"].Kind != InRoom {
		t.Error("Mutating the clone changed the original's item locations")
	}
	if _, ok := w.Rooms["Treasury"]; ok {
		t.Error("Mutating the clone changed the original's rooms")
	}
	if w.Connected("Gallery", "Treasury") {
		t.Error("Mutating the clone changed the original's connections")
	}
}

func TestWorld_AddConnection_Symmetric(t *testing.T) {
	w := testWorld(t)

	if !w.Connected("Altar Room", "Gallery") || !w.Connected("Gallery", "Altar Room") {
		t.Error("Connection should be readable from both rooms")
	}

	// Adding the same edge again must not duplicate it.
	if err := w.AddConnection("Gallery", "Altar Room"); err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}
	if len(w.Connections["Altar Room"]) != 1 || len(w.Connections["Gallery"]) != 1 {
		t.Errorf("Duplicate edge recorded: %v", w.Connections)
	}

	if err := w.AddConnection("Altar Room", "Nowhere"); err == nil {
		t.Error("Expected error connecting to an unknown room")
	}
}

func TestWorld_LocationLookups(t *testing.T) {
	w := testWorld(t)

	loc, err := w.ItemLocationOf("mango")
	if err != nil {
		t.Fatalf("ItemLocationOf failed: %v", err)
	}
	if loc.Kind != InRoom || loc.Room != "Altar Room" {
		t.Errorf("Unexpected location %+v", loc)
	}

	var notFound *NotFoundError
	if _, err := w.ItemLocationOf("unicorn"); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for unknown item, got %v", err)
	}

	// A known item with no relation is corrupt state, not a lookup miss.
	w.Items["orphan"] = Item{Name: "orphan"}
	var integrity *IntegrityError
	if _, err := w.ItemLocationOf("orphan"); !errors.As(err, &integrity) {
		t.Errorf("Expected IntegrityError for missing relation, got %v", err)
	}
}

func TestWorld_SetItemLocation_Checks(t *testing.T) {
	w := testWorld(t)

	if err := w.SetItemLocation("mango", ItemLocation{Kind: InRoom, Room: "Nowhere"}); err == nil {
		t.Error("Expected error for unknown room")
	}
	if err := w.SetItemLocation("mango", ItemLocation{Kind: InInventory, Player: "Nobody"}); err == nil {
		t.Error("Expected error for unknown player")
	}
	if err := w.SetItemLocation("mango", ItemLocation{Kind: "floating"}); err == nil {
		t.Error("Expected error for unknown location kind")
	}
	if err := w.SetItemLocation("mango", ItemLocation{Kind: OnPlayer, Player: "Silas"}); err != nil {
		t.Errorf("Valid relocation failed: %v", err)
	}
}

func TestWorld_RemoveItem(t *testing.T) {
	w := testWorld(t)

	if err := w.RemoveItem("mango"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok := w.Items["mango"]; ok {
		t.Error("Item still present after removal")
	}
	if _, ok := w.ItemLocations["mango"]; ok {
		t.Error("Location relation still present after removal")
	}
	if err := w.RemoveItem("mango"); err == nil {
		t.Error("Expected error removing an item twice")
	}
	if err := w.Validate(); err != nil {
		t.Errorf("World invalid after removal: %v", err)
	}
}

func TestWorld_Queries_Sorted(t *testing.T) {
	w := testWorld(t)
	if err := w.AddItem(Item{Name: "amber bead"}, ItemLocation{Kind: InRoom, Room: "Altar Room"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	items := w.ItemsIn("Altar Room")
	if len(items) != 2 || items[0] != "amber bead" || items[1] != "mango" {
		t.Errorf("Expected sorted room items, got %v", items)
	}

	held := w.ItemsHeldBy("Silas", InInventory)
	if len(held) != 1 || held[0] != "machete" {
		t.Errorf("Unexpected inventory %v", held)
	}
	if got := w.ItemsHeldBy("Silas", OnPlayer); len(got) != 0 {
		t.Errorf("Expected nothing equipped, got %v", got)
	}

	players := w.PlayersIn("Altar Room")
	if len(players) != 1 || players[0] != "Silas" {
		t.Errorf("Unexpected players %v", players)
	}
}

func TestWorld_Validate(t *testing.T) {
	w := testWorld(t)
	if err := w.Validate(); err != nil {
		t.Fatalf("Valid world failed validation: %v", err)
	}

	// One-way connection.
	broken := w.Clone()
	broken.Connections["Altar Room"] = append(broken.Connections["Altar Room"], "Gallery")
	broken.Connections["Gallery"] = nil
	if err := broken.Validate(); err == nil {
		t.Error("Expected validation to catch a one-way connection")
	}

	// Player in a nonexistent room.
	broken = w.Clone()
	broken.PlayerLocations["Silas"] = PlayerLocation{Room: "Nowhere"}
	if err := broken.Validate(); err == nil {
		t.Error("Expected validation to catch a dangling player location")
	}

	// Relation without an entity.
	broken = w.Clone()
	broken.ItemLocations["phantom"] = ItemLocation{Kind: InRoom, Room: "Gallery"}
	if err := broken.Validate(); err == nil {
		t.Error("Expected validation to catch an orphan item relation")
	}
}
