// Package adventure implements a text-adventure world model and the
// action interpreter that mutates it. The world is a graph of rooms,
// items and players; every item and every player has exactly one location
// relation at all times. The package plugs into the generic engine in
// pkg/sva via the Game type.
package adventure

import (
	"maps"
	"slices"
	"sort"
)

// Player is an actor in the world, keyed by name.
type Player struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Item is an object in the world, keyed by name.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Room is a place in the world, keyed by name. Visited records whether the
// room has been furnished; entering an unvisited room triggers lazy
// generation through the WorldGenerator.
type Room struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visited     bool   `json:"visited"`
}

// LocationKind discriminates the item-location union.
type LocationKind string

const (
	InRoom      LocationKind = "room"      // placed in a room
	InInventory LocationKind = "inventory" // stored in a player's inventory
	OnPlayer    LocationKind = "equipped"  // equipped by a player
)

// ItemLocation is where an item currently is. Exactly one of Room or
// Player is set, according to Kind. Description is free narrative text
// about the item's situation, written by the generator.
type ItemLocation struct {
	Kind        LocationKind `json:"kind"`
	Room        string       `json:"room,omitempty"`
	Player      string       `json:"player,omitempty"`
	Description string       `json:"description,omitempty"`
}

// PlayerLocation is where a player currently is, with free narrative text
// about their position inside the room.
type PlayerLocation struct {
	Room        string `json:"room"`
	Description string `json:"description,omitempty"`
}

// World is the full mutable state of one adventure. All maps are keyed by
// entity name. Connections is symmetric: if b appears in Connections[a]
// then a appears in Connections[b], maintained by AddConnection.
type World struct {
	Name            string                    `json:"name"`
	Players         map[string]Player         `json:"players"`
	Items           map[string]Item           `json:"items"`
	Rooms           map[string]Room           `json:"rooms"`
	ItemLocations   map[string]ItemLocation   `json:"item_locations"`
	PlayerLocations map[string]PlayerLocation `json:"player_locations"`
	Connections     map[string][]string       `json:"connections"`
}

func NewWorld(name string) *World {
	return &World{
		Name:            name,
		Players:         make(map[string]Player),
		Items:           make(map[string]Item),
		Rooms:           make(map[string]Room),
		ItemLocations:   make(map[string]ItemLocation),
		PlayerLocations: make(map[string]PlayerLocation),
		Connections:     make(map[string][]string),
	}
}

// Clone returns a deep copy of the world, fully independent of the
// original.
func (w *World) Clone() *World {
	c := &World{
		Name:            w.Name,
		Players:         maps.Clone(w.Players),
		Items:           maps.Clone(w.Items),
		Rooms:           maps.Clone(w.Rooms),
		ItemLocations:   maps.Clone(w.ItemLocations),
		PlayerLocations: maps.Clone(w.PlayerLocations),
		Connections:     make(map[string][]string, len(w.Connections)),
	}
	for room, conns := range w.Connections {
		c.Connections[room] = slices.Clone(conns)
	}
	return c
}

// Lookups

func (w *World) GetPlayer(name string) (Player, error) {
	p, ok := w.Players[name]
	if !ok {
		return Player{}, &NotFoundError{Kind: "player", Name: name}
	}
	return p, nil
}

func (w *World) GetItem(name string) (Item, error) {
	it, ok := w.Items[name]
	if !ok {
		return Item{}, &NotFoundError{Kind: "item", Name: name}
	}
	return it, nil
}

func (w *World) GetRoom(name string) (Room, error) {
	r, ok := w.Rooms[name]
	if !ok {
		return Room{}, &NotFoundError{Kind: "room", Name: name}
	}
	return r, nil
}

// ItemLocationOf returns the item's location relation. A missing relation
// for a known item is a corrupt-state bug, reported as an IntegrityError.
func (w *World) ItemLocationOf(name string) (ItemLocation, error) {
	if _, ok := w.Items[name]; !ok {
		return ItemLocation{}, &NotFoundError{Kind: "item", Name: name}
	}
	loc, ok := w.ItemLocations[name]
	if !ok {
		return ItemLocation{}, &IntegrityError{Subject: "item " + name, Detail: "no location relation"}
	}
	return loc, nil
}

// PlayerLocationOf returns the player's location relation. A missing
// relation for a known player is a corrupt-state bug.
func (w *World) PlayerLocationOf(name string) (PlayerLocation, error) {
	if _, ok := w.Players[name]; !ok {
		return PlayerLocation{}, &NotFoundError{Kind: "player", Name: name}
	}
	loc, ok := w.PlayerLocations[name]
	if !ok {
		return PlayerLocation{}, &IntegrityError{Subject: "player " + name, Detail: "no location relation"}
	}
	return loc, nil
}

// Mutators. These are the only way state changes: whole-relation
// replacement and collection append/remove.

// AddRoom adds or replaces a room record.
func (w *World) AddRoom(r Room) {
	w.Rooms[r.Name] = r
	if _, ok := w.Connections[r.Name]; !ok {
		w.Connections[r.Name] = nil
	}
}

// AddConnection records a passage between two rooms. Both directions are
// written together, so callers cannot desynchronize the edge.
func (w *World) AddConnection(a, b string) error {
	if _, err := w.GetRoom(a); err != nil {
		return err
	}
	if _, err := w.GetRoom(b); err != nil {
		return err
	}
	if !slices.Contains(w.Connections[a], b) {
		w.Connections[a] = append(w.Connections[a], b)
	}
	if !slices.Contains(w.Connections[b], a) {
		w.Connections[b] = append(w.Connections[b], a)
	}
	return nil
}

// Connected reports whether the two rooms share a passage.
func (w *World) Connected(a, b string) bool {
	return slices.Contains(w.Connections[a], b)
}

// Exits returns the sorted list of rooms reachable from the given room.
func (w *World) Exits(room string) []string {
	exits := slices.Clone(w.Connections[room])
	sort.Strings(exits)
	return exits
}

// AddPlayer adds a player together with its location relation.
func (w *World) AddPlayer(p Player, loc PlayerLocation) error {
	if _, err := w.GetRoom(loc.Room); err != nil {
		return err
	}
	w.Players[p.Name] = p
	w.PlayerLocations[p.Name] = loc
	return nil
}

// AddItem adds an item together with its location relation.
func (w *World) AddItem(it Item, loc ItemLocation) error {
	if err := w.checkItemLocation(loc); err != nil {
		return err
	}
	w.Items[it.Name] = it
	w.ItemLocations[it.Name] = loc
	return nil
}

// RemoveItem destroys an item and its location relation. This is the only
// way an entity leaves the world (e.g. item combination consuming its
// inputs).
func (w *World) RemoveItem(name string) error {
	if _, ok := w.Items[name]; !ok {
		return &NotFoundError{Kind: "item", Name: name}
	}
	delete(w.Items, name)
	delete(w.ItemLocations, name)
	return nil
}

// SetItemLocation replaces an item's location relation.
func (w *World) SetItemLocation(name string, loc ItemLocation) error {
	if _, ok := w.Items[name]; !ok {
		return &NotFoundError{Kind: "item", Name: name}
	}
	if err := w.checkItemLocation(loc); err != nil {
		return err
	}
	w.ItemLocations[name] = loc
	return nil
}

// SetPlayerLocation replaces a player's location relation.
func (w *World) SetPlayerLocation(name string, loc PlayerLocation) error {
	if _, ok := w.Players[name]; !ok {
		return &NotFoundError{Kind: "player", Name: name}
	}
	if _, err := w.GetRoom(loc.Room); err != nil {
		return err
	}
	w.PlayerLocations[name] = loc
	return nil
}

func (w *World) checkItemLocation(loc ItemLocation) error {
	switch loc.Kind {
	case InRoom:
		_, err := w.GetRoom(loc.Room)
		return err
	case InInventory, OnPlayer:
		_, err := w.GetPlayer(loc.Player)
		return err
	default:
		return &IntegrityError{Subject: "item location", Detail: "unknown kind " + string(loc.Kind)}
	}
}

// Queries used by the interpreter and the view projector. All results are
// sorted by name so projection is deterministic.

// ItemsIn returns the names of items placed in the room.
func (w *World) ItemsIn(room string) []string {
	var names []string
	for name, loc := range w.ItemLocations {
		if loc.Kind == InRoom && loc.Room == room {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ItemsHeldBy returns the names of items in the player's inventory or
// equipped by the player, according to kind.
func (w *World) ItemsHeldBy(player string, kind LocationKind) []string {
	var names []string
	for name, loc := range w.ItemLocations {
		if loc.Kind == kind && loc.Player == player {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PlayersIn returns the names of players currently in the room.
func (w *World) PlayersIn(room string) []string {
	var names []string
	for name, loc := range w.PlayerLocations {
		if loc.Room == room {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks the world's structural invariants: every item and every
// player has exactly one location relation, every relation references
// existing entities, and connections are symmetric.
func (w *World) Validate() error {
	for name := range w.Items {
		loc, ok := w.ItemLocations[name]
		if !ok {
			return &IntegrityError{Subject: "item " + name, Detail: "no location relation"}
		}
		if err := w.checkItemLocation(loc); err != nil {
			return &IntegrityError{Subject: "item " + name, Detail: err.Error()}
		}
	}
	for name := range w.ItemLocations {
		if _, ok := w.Items[name]; !ok {
			return &IntegrityError{Subject: "item location " + name, Detail: "relation for nonexistent item"}
		}
	}
	for name := range w.Players {
		loc, ok := w.PlayerLocations[name]
		if !ok {
			return &IntegrityError{Subject: "player " + name, Detail: "no location relation"}
		}
		if _, ok := w.Rooms[loc.Room]; !ok {
			return &IntegrityError{Subject: "player " + name, Detail: "located in nonexistent room " + loc.Room}
		}
	}
	for name := range w.PlayerLocations {
		if _, ok := w.Players[name]; !ok {
			return &IntegrityError{Subject: "player location " + name, Detail: "relation for nonexistent player"}
		}
	}
	for room, conns := range w.Connections {
		if _, ok := w.Rooms[room]; !ok {
			return &IntegrityError{Subject: "room " + room, Detail: "connections for nonexistent room"}
		}
		for _, other := range conns {
			if _, ok := w.Rooms[other]; !ok {
				return &IntegrityError{Subject: "room " + room, Detail: "connected to nonexistent room " + other}
			}
			if !slices.Contains(w.Connections[other], room) {
				return &IntegrityError{Subject: "room " + room, Detail: "one-way connection to " + other}
			}
		}
	}
	return nil
}
