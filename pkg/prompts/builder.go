package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/chat"
)

// TurnResponse is the JSON document the model returns for a turn request.
type TurnResponse struct {
	Narration string             `json:"narration"`
	Actions   []adventure.Action `json:"actions"`
}

// BuildTurnMessages assembles the conversation for one turn request: the
// system prompt with the action vocabulary, then the actor's view and
// input as the user message.
func BuildTurnMessages(view *adventure.View, input string) ([]chat.Message, error) {
	viewJSON, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal view: %w", err)
	}

	system := fmt.Sprintf(TurnSystemPrompt, ActionVocabulary)
	user := fmt.Sprintf("Current view:\n```json\n%s\n```\n\nThe player says: %s", viewJSON, input)
	return []chat.Message{chat.System(system), chat.User(user)}, nil
}

// BuildFurnishMessages assembles the conversation for furnishing a room on
// first entry.
func BuildFurnishMessages(w *adventure.World, roomName string) ([]chat.Message, error) {
	room, err := w.GetRoom(roomName)
	if err != nil {
		return nil, err
	}

	input := struct {
		World     string   `json:"world"`
		Room      string   `json:"room"`
		Sketch    string   `json:"sketch,omitempty"`
		Exits     []string `json:"exits,omitempty"`
		ItemNames []string `json:"existing_item_names,omitempty"`
	}{
		World:     w.Name,
		Room:      room.Name,
		Sketch:    room.Description,
		Exits:     w.Exits(room.Name),
		ItemNames: itemNames(w),
	}
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal furnish input: %w", err)
	}
	return []chat.Message{chat.System(FurnishSystemPrompt), chat.User(string(data))}, nil
}

// BuildCombineMessages assembles the conversation for an item combination.
func BuildCombineMessages(w *adventure.World, first, second adventure.Item) ([]chat.Message, error) {
	input := struct {
		World     string         `json:"world"`
		First     adventure.Item `json:"first"`
		Second    adventure.Item `json:"second"`
		ItemNames []string       `json:"existing_item_names,omitempty"`
	}{
		World:     w.Name,
		First:     first,
		Second:    second,
		ItemNames: itemNames(w),
	}
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal combine input: %w", err)
	}
	return []chat.Message{chat.System(CombineSystemPrompt), chat.User(string(data))}, nil
}

// ParseTurnResponse decodes the model's turn output, tolerating markdown
// code fences despite the prompt forbidding them.
func ParseTurnResponse(raw string) (*TurnResponse, error) {
	var resp TurnResponse
	if err := json.Unmarshal([]byte(StripFences(raw)), &resp); err != nil {
		return nil, fmt.Errorf("malformed turn response: %w", err)
	}
	for i, a := range resp.Actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("malformed action %d: %w", i, err)
		}
	}
	return &resp, nil
}

// ParseFurnishResponse decodes the model's room furnishing output.
func ParseFurnishResponse(raw string) (*adventure.Furnishing, error) {
	var f adventure.Furnishing
	if err := json.Unmarshal([]byte(StripFences(raw)), &f); err != nil {
		return nil, fmt.Errorf("malformed furnish response: %w", err)
	}
	for _, placed := range f.Items {
		if placed.Item.Name == "" {
			return nil, fmt.Errorf("furnish response contains an unnamed item")
		}
	}
	return &f, nil
}

// ParseCombineResponse decodes the model's item combination output.
func ParseCombineResponse(raw string) (*adventure.CombinedItem, error) {
	var c adventure.CombinedItem
	if err := json.Unmarshal([]byte(StripFences(raw)), &c); err != nil {
		return nil, fmt.Errorf("malformed combine response: %w", err)
	}
	if c.Item.Name == "" {
		return nil, fmt.Errorf("combine response has no item name")
	}
	return &c, nil
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func itemNames(w *adventure.World) []string {
	names := make([]string, 0, len(w.Items))
	for name := range w.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
