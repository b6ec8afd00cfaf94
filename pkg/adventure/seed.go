package adventure

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Seed is the authored definition of a starting world, loaded from a YAML
// file. Build turns it into a validated World.
type Seed struct {
	Name        string       `yaml:"name"`
	Rooms       []SeedRoom   `yaml:"rooms"`
	Connections [][]string   `yaml:"connections"`
	Items       []SeedItem   `yaml:"items"`
	Players     []SeedPlayer `yaml:"players"`
}

type SeedRoom struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Furnished rooms skip lazy generation on first entry.
	Furnished bool `yaml:"furnished,omitempty"`
}

type SeedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Room        string `yaml:"room"`
	Placement   string `yaml:"placement,omitempty"`
}

type SeedPlayer struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Room        string `yaml:"room"`
	Presence    string `yaml:"presence,omitempty"`
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse world seed: %w", err)
	}
	return &s, nil
}

// Build constructs the initial world from the seed, rejecting duplicate
// names, dangling references and malformed connections. Rooms holding a
// player start visited, as do rooms marked furnished.
func (s *Seed) Build() (*World, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("world seed has no name")
	}
	if len(s.Rooms) == 0 {
		return nil, fmt.Errorf("world seed %q has no rooms", s.Name)
	}
	if len(s.Players) == 0 {
		return nil, fmt.Errorf("world seed %q has no players", s.Name)
	}

	w := NewWorld(s.Name)

	for _, r := range s.Rooms {
		if r.Name == "" {
			return nil, fmt.Errorf("world seed %q has a room with no name", s.Name)
		}
		if _, ok := w.Rooms[r.Name]; ok {
			return nil, fmt.Errorf("duplicate room %q", r.Name)
		}
		w.AddRoom(Room{Name: r.Name, Description: r.Description, Visited: r.Furnished})
	}

	for _, conn := range s.Connections {
		if len(conn) != 2 {
			return nil, fmt.Errorf("connection %v must name exactly two rooms", conn)
		}
		if conn[0] == conn[1] {
			return nil, fmt.Errorf("room %q cannot connect to itself", conn[0])
		}
		if err := w.AddConnection(conn[0], conn[1]); err != nil {
			return nil, fmt.Errorf("bad connection %v: %w", conn, err)
		}
	}

	for _, p := range s.Players {
		if p.Name == "" {
			return nil, fmt.Errorf("world seed %q has a player with no name", s.Name)
		}
		if _, ok := w.Players[p.Name]; ok {
			return nil, fmt.Errorf("duplicate player %q", p.Name)
		}
		if err := w.AddPlayer(Player{Name: p.Name, Description: p.Description}, PlayerLocation{Room: p.Room, Description: p.Presence}); err != nil {
			return nil, fmt.Errorf("bad player %q: %w", p.Name, err)
		}
		// A starting room is part of the authored world, not generated.
		room := w.Rooms[p.Room]
		room.Visited = true
		w.AddRoom(room)
	}

	for _, it := range s.Items {
		if it.Name == "" {
			return nil, fmt.Errorf("world seed %q has an item with no name", s.Name)
		}
		if _, ok := w.Items[it.Name]; ok {
			return nil, fmt.Errorf("duplicate item %q", it.Name)
		}
		if err := w.AddItem(Item{Name: it.Name, Description: it.Description}, ItemLocation{Kind: InRoom, Room: it.Room, Description: it.Placement}); err != nil {
			return nil, fmt.Errorf("bad item %q: %w", it.Name, err)
		}
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
