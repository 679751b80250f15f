package world

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	DefaultMaxItems      = 20
	DefaultMaxCombatants = 4
)

// World is the complete simulation state. It is owned by a single writer
// at a time; nothing in this package locks.
type World struct {
	CurrentPos    Coord             `json:"current_pos"`
	Locations     Locations         `json:"locations"`
	Actors        map[string]*Actor `json:"actors"`
	Items         map[string]*Item  `json:"items"`
	Player        Player            `json:"player"`
	Combat        Combat            `json:"combat"`
	MaxItems      int               `json:"max_items"`
	MaxCombatants int               `json:"max_combatants"`
}

// Player holds the player's inventory (item ids) and purse.
type Player struct {
	Inventory []string `json:"inventory"`
	Money     int      `json:"money"`
}

// Actor is a persistent NPC.
type Actor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CurrentPos  Coord    `json:"current_pos"`
	Inventory   []string `json:"inventory"`
	Money       int      `json:"money"`
}

// Location is a single grid cell. A nil exit means the way is blocked.
type Location struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	Items           []string             `json:"items"`
	Actors          []string             `json:"actors"`
	Exits           map[Direction]*Coord `json:"exits"`
	CachedImagePath *string              `json:"cached_image_path"`
	ImagePrompt     string               `json:"image_prompt"`
	Visited         bool                 `json:"visited"`
}

func (l *Location) UnmarshalJSON(data []byte) error {
	type alias Location
	loc := alias{
		Name:        "Unknown Location",
		Description: "An unknown place.",
		ImagePrompt: "A mysterious location",
	}
	if err := json.Unmarshal(data, &loc); err != nil {
		return err
	}
	*l = Location(loc)
	return nil
}

// Link sets the exit in direction d to target.
func (l *Location) Link(d Direction, target Coord) {
	if l.Exits == nil {
		l.Exits = make(map[Direction]*Coord)
	}
	t := target
	l.Exits[d] = &t
}

// Exit returns the linked coordinate in direction d, if any.
func (l *Location) Exit(d Direction) (Coord, bool) {
	c, ok := l.Exits[d]
	if !ok || c == nil {
		return Coord{}, false
	}
	return *c, true
}

// Locations maps grid coordinates to locations. Saved worlds key it by
// "x,y" strings.
type Locations map[Coord]*Location

func (ls Locations) MarshalJSON() ([]byte, error) {
	m := make(map[string]*Location, len(ls))
	for c, loc := range ls {
		m[c.Key()] = loc
	}
	return json.Marshal(m)
}

// UnmarshalJSON skips keys that do not parse as coordinates.
func (ls *Locations) UnmarshalJSON(data []byte) error {
	var m map[string]*Location
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Locations, len(m))
	for key, loc := range m {
		c, err := ParseCoordKey(key)
		if err != nil || loc == nil {
			continue
		}
		out[c] = loc
	}
	*ls = out
	return nil
}

// New returns an empty world at the origin with default limits.
func New() *World {
	return &World{
		Locations:     make(Locations),
		Actors:        make(map[string]*Actor),
		Items:         make(map[string]*Item),
		MaxItems:      DefaultMaxItems,
		MaxCombatants: DefaultMaxCombatants,
	}
}

// NewWithStart returns a fresh world with the starting location at the origin.
func NewWithStart() *World {
	w := New()
	w.Locations[Coord{}] = StartingLocation()
	return w
}

// StartingLocation is the first location of every new world.
func StartingLocation() *Location {
	return &Location{
		Name:        "The Beginning",
		Description: "You stand in a void of potential. Anything can happen here.",
		Items:       []string{},
		Actors:      []string{},
		Exits:       map[Direction]*Coord{},
		ImagePrompt: "A swirling void of colors and shapes, representing potential.",
		Visited:     true,
	}
}

// Decode parses a saved world document and fills in missing maps.
func Decode(data []byte) (*World, error) {
	w := New()
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("failed to decode world: %w", err)
	}
	if w.Locations == nil {
		w.Locations = make(Locations)
	}
	if w.Actors == nil {
		w.Actors = make(map[string]*Actor)
	}
	if w.Items == nil {
		w.Items = make(map[string]*Item)
	}
	return w, nil
}

// Clone returns a deep copy made through the saved-world encoding.
func (w *World) Clone() (*World, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode world: %w", err)
	}
	return Decode(data)
}

func (w *World) CurrentLocation() (*Location, bool) {
	loc, ok := w.Locations[w.CurrentPos]
	return loc, ok
}

// ItemNames resolves ids to item names, skipping ids that are not registered.
func (w *World) ItemNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if item, ok := w.Items[id]; ok {
			names = append(names, item.Name)
		}
	}
	return names
}

// ActorNames resolves ids to actor names, skipping unknown ids.
func (w *World) ActorNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := w.Actors[id]; ok {
			names = append(names, a.Name)
		}
	}
	return names
}

func (w *World) InInventory(id string) bool {
	return slices.Contains(w.Player.Inventory, id)
}

// AddID appends id unless it is already present.
func AddID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveIDs returns ids without any of the given values.
func RemoveIDs(ids []string, remove ...string) []string {
	return slices.DeleteFunc(ids, func(s string) bool {
		return slices.Contains(remove, s)
	})
}
