package prompts

import (
	"fmt"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/tools"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Builder constructs the chat messages for one turn using a fluent interface.
type Builder struct {
	world       *world.World
	userMessage string
	messages    []chat.ChatMessage
}

// New creates a new prompt builder.
func New() *Builder {
	return &Builder{
		messages: make([]chat.ChatMessage, 0),
	}
}

// WithWorld sets the world the context snapshot is taken from.
func (b *Builder) WithWorld(w *world.World) *Builder {
	b.world = w
	return b
}

// WithUserMessage sets the player's input.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// Build returns the system context followed by the player's action.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.world == nil {
		return nil, fmt.Errorf("world is required")
	}

	b.messages = make([]chat.ChatMessage, 0, 2)

	system, err := SystemContext(b.world)
	if err != nil {
		return nil, fmt.Errorf("error building system prompt: %w", err)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: system,
	})

	if b.userMessage != "" {
		b.messages = append(b.messages, chat.ChatMessage{
			Role:    chat.ChatRoleUser,
			Content: fmt.Sprintf(UserActionFormat, b.userMessage),
		})
	}
	return b.messages, nil
}

type adjacentArea struct {
	Direction world.Direction
	Name      string
}

type combatantLine struct {
	ID          string
	Side        string
	HP          int
	MaxHP       int
	Weapon      string
	Armor       string
	TempDefense int
	Effects     []string
}

type combatContext struct {
	Round      int
	Turn       string
	Combatants []combatantLine
	Actions    []string
}

type systemContext struct {
	Name        string
	Description string
	Pos         world.Coord
	Items       []string
	Actors      []string
	Inventory   []string
	Money       int
	Adjacent    []adjacentArea
	Combat      *combatContext
	Tools       []string
}

// SystemContext renders the snapshot of w the model sees each turn.
func SystemContext(w *world.World) (string, error) {
	data := systemContext{
		Name:        "Unknown",
		Description: "You are nowhere.",
		Pos:         w.CurrentPos,
		Items:       []string{},
		Actors:      []string{},
		Inventory:   w.ItemNames(w.Player.Inventory),
		Money:       w.Player.Money,
		Tools:       tools.Names(),
	}
	if loc, ok := w.CurrentLocation(); ok {
		data.Name = loc.Name
		data.Description = loc.Description
		data.Items = w.ItemNames(loc.Items)
		data.Actors = w.ActorNames(loc.Actors)
	}

	for _, dir := range world.Directions {
		name := "unexplored"
		if loc, ok := w.Locations[w.CurrentPos.Step(dir)]; ok {
			name = loc.Name
		}
		data.Adjacent = append(data.Adjacent, adjacentArea{Direction: dir, Name: name})
	}

	if w.Combat.Active {
		data.Combat = combatSummary(&w.Combat)
	}
	return render(systemContextTmpl, data)
}

func combatSummary(c *world.Combat) *combatContext {
	out := &combatContext{
		Round:   c.RoundNumber,
		Turn:    "none",
		Actions: tools.CombatOps,
	}
	if current, ok := c.Current(); ok {
		out.Turn = current.ID
	}
	for _, cb := range c.Combatants {
		line := combatantLine{
			ID:          cb.ID,
			Side:        "ENEMY",
			HP:          cb.HP,
			MaxHP:       cb.MaxHP,
			TempDefense: cb.TempDefense,
			Effects:     make([]string, 0, len(cb.StatusEffects)),
		}
		if cb.IsPlayer {
			line.Side = "PLAYER"
		}
		if cb.WeaponID != nil {
			line.Weapon = *cb.WeaponID
		}
		if cb.ArmorID != nil {
			line.Armor = *cb.ArmorID
		}
		for _, e := range cb.StatusEffects {
			line.Effects = append(line.Effects, fmt.Sprintf("%s(%dt)", e.Type, e.Duration))
		}
		out.Combatants = append(out.Combatants, line)
	}
	return out
}

type locationRequest struct {
	Name        string
	Description string
	From        world.Coord
	Direction   world.Direction
	Target      world.Coord
}

// LocationPrompt asks for the location one step from `from` in dir.
func LocationPrompt(current *world.Location, from world.Coord, dir world.Direction) (string, error) {
	if current == nil {
		return "", fmt.Errorf("current location is required")
	}
	return render(locationTmpl, locationRequest{
		Name:        current.Name,
		Description: current.Description,
		From:        from,
		Direction:   dir,
		Target:      from.Step(dir),
	})
}
