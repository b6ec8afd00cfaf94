package adventure

// View is a read-only projection of the world from one actor's
// perspective: the room they stand in, what they can see there, and what
// they carry. Views are derived on demand and never persisted; projecting
// the same state twice yields structurally identical views.
type View struct {
	Actor    string     `json:"actor"`
	Presence string     `json:"presence,omitempty"` // the actor's position within the room
	Room     RoomView   `json:"room"`
	Others   []ActorRef `json:"others,omitempty"` // co-located players
	Carried  []ItemView `json:"carried,omitempty"`
	Equipped []ItemView `json:"equipped,omitempty"`
}

type RoomView struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Exits       []string   `json:"exits,omitempty"`
	Items       []ItemView `json:"items,omitempty"`
}

type ItemView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Situation   string `json:"situation,omitempty"` // the location relation's narrative text
}

type ActorRef struct {
	Name     string `json:"name"`
	Presence string `json:"presence,omitempty"`
}

// Project derives the actor's view of the world. It is a pure function:
// no side effects, safe to call on historical turn snapshots. All slices
// are sorted by name for deterministic output.
func Project(w *World, actor string) (*View, error) {
	if _, err := w.GetPlayer(actor); err != nil {
		return nil, err
	}
	actorLoc, err := w.PlayerLocationOf(actor)
	if err != nil {
		return nil, err
	}
	room, err := w.GetRoom(actorLoc.Room)
	if err != nil {
		return nil, err
	}

	view := &View{
		Actor:    actor,
		Presence: actorLoc.Description,
		Room: RoomView{
			Name:        room.Name,
			Description: room.Description,
			Exits:       w.Exits(room.Name),
		},
	}

	for _, name := range w.ItemsIn(room.Name) {
		iv, err := itemView(w, name)
		if err != nil {
			return nil, err
		}
		view.Room.Items = append(view.Room.Items, iv)
	}
	for _, name := range w.ItemsHeldBy(actor, InInventory) {
		iv, err := itemView(w, name)
		if err != nil {
			return nil, err
		}
		view.Carried = append(view.Carried, iv)
	}
	for _, name := range w.ItemsHeldBy(actor, OnPlayer) {
		iv, err := itemView(w, name)
		if err != nil {
			return nil, err
		}
		view.Equipped = append(view.Equipped, iv)
	}
	for _, name := range w.PlayersIn(room.Name) {
		if name == actor {
			continue
		}
		loc, err := w.PlayerLocationOf(name)
		if err != nil {
			return nil, err
		}
		view.Others = append(view.Others, ActorRef{Name: name, Presence: loc.Description})
	}

	return view, nil
}

func itemView(w *World, name string) (ItemView, error) {
	it, err := w.GetItem(name)
	if err != nil {
		return ItemView{}, err
	}
	loc, err := w.ItemLocationOf(name)
	if err != nil {
		return ItemView{}, err
	}
	return ItemView{Name: it.Name, Description: it.Description, Situation: loc.Description}, nil
}
