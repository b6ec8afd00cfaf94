package prompts

import (
	"strings"
	"testing"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/chat"
)

func TestBuildTurnMessages(t *testing.T) {
	view := &adventure.View{
		Actor: "Silas",
		Room: adventure.RoomView{
			Name:  "Altar Room",
			Exits: []string{"Gallery"},
			Items: []adventure.ItemView{{Name: "mango"}},
		},
	}

	messages, err := BuildTurnMessages(view, "take the mango")
	if err != nil {
		t.Fatalf("BuildTurnMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != chat.RoleSystem {
		t.Errorf("Expected system role first, got %q", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "take_item") {
		t.Error("System prompt missing the action vocabulary")
	}
	if messages[1].Role != chat.RoleUser {
		t.Errorf("Expected user role second, got %q", messages[1].Role)
	}
	if !strings.Contains(messages[1].Content, `"Altar Room"`) {
		t.Error("User message missing the view JSON")
	}
	if !strings.Contains(messages[1].Content, "take the mango") {
		t.Error("User message missing the player input")
	}
}

func TestBuildFurnishMessages(t *testing.T) {
	w := adventure.NewWorld("Test World")
	w.AddRoom(adventure.Room{Name: "Clearing", Visited: true})
	w.AddRoom(adventure.Room{Name: "Gallery", Description: "A pillared hall."})
	if err := w.AddConnection("Clearing", "Gallery"); err != nil {
		t.Fatalf("AddConnection failed: %v", err)
	}
	if err := w.AddPlayer(adventure.Player{Name: "Silas"}, adventure.PlayerLocation{Room: "Clearing"}); err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if err := w.AddItem(adventure.Item{Name: "mango"}, adventure.ItemLocation{Kind: adventure.InRoom, Room: "Clearing"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	messages, err := BuildFurnishMessages(w, "Gallery")
	if err != nil {
		t.Fatalf("BuildFurnishMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if !strings.Contains(messages[1].Content, "A pillared hall.") {
		t.Error("Furnish input missing the room sketch")
	}
	if !strings.Contains(messages[1].Content, `"mango"`) {
		t.Error("Furnish input missing existing item names")
	}

	if _, err := BuildFurnishMessages(w, "Nowhere"); err == nil {
		t.Error("Expected error for unknown room")
	}
}

func TestParseTurnResponse(t *testing.T) {
	raw := `{"narration": "You take the mango.", "actions": [{"kind": "take_item", "actor": "Silas", "item": "mango"}]}`
	resp, err := ParseTurnResponse(raw)
	if err != nil {
		t.Fatalf("ParseTurnResponse failed: %v", err)
	}
	if resp.Narration != "You take the mango." {
		t.Errorf("Unexpected narration %q", resp.Narration)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Kind != adventure.TakeItem {
		t.Errorf("Unexpected actions %v", resp.Actions)
	}

	// Fenced output is tolerated.
	fenced := "```json\n" + raw + "\n```"
	if _, err := ParseTurnResponse(fenced); err != nil {
		t.Errorf("Fenced response rejected: %v", err)
	}

	// Invalid actions are rejected at parse time.
	if _, err := ParseTurnResponse(`{"narration": "x", "actions": [{"kind": "take_item", "actor": "Silas"}]}`); err == nil {
		t.Error("Expected error for action missing its item")
	}
	if _, err := ParseTurnResponse("the model apologizes profusely"); err == nil {
		t.Error("Expected error for non-JSON output")
	}
}

func TestParseFurnishResponse(t *testing.T) {
	raw := `{"description": "Water everywhere.", "items": [{"item": {"name": "silver coin"}, "placement": "under the water"}]}`
	f, err := ParseFurnishResponse(raw)
	if err != nil {
		t.Fatalf("ParseFurnishResponse failed: %v", err)
	}
	if f.Description != "Water everywhere." || len(f.Items) != 1 {
		t.Errorf("Unexpected furnishing %+v", f)
	}

	if _, err := ParseFurnishResponse(`{"items": [{"item": {"description": "no name"}}]}`); err == nil {
		t.Error("Expected error for unnamed generated item")
	}
}

func TestParseCombineResponse(t *testing.T) {
	raw := `{"item": {"name": "mango spear"}, "narration": "Squish."}`
	c, err := ParseCombineResponse(raw)
	if err != nil {
		t.Fatalf("ParseCombineResponse failed: %v", err)
	}
	if c.Item.Name != "mango spear" {
		t.Errorf("Unexpected item %+v", c.Item)
	}

	if _, err := ParseCombineResponse(`{"narration": "nothing"}`); err == nil {
		t.Error("Expected error for missing item name")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{}":               "{}",
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"```json\n{\"a\":1}\n```\n": `{"a":1}`,
	}
	for in, want := range cases {
		if got := StripFences(in); got != want {
			t.Errorf("StripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
