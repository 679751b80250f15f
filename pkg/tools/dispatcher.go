package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/infinite-adventure/pkg/actor"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Expander creates the location at an unexplored coordinate. It inserts
// the new location into w and links it to the location at from. It must
// always produce a location.
type Expander interface {
	Expand(ctx context.Context, w *world.World, from world.Coord, dir world.Direction) *world.Location
}

// Roller is a uniform random source returning values in [0, n).
// *actor.Dice satisfies it.
type Roller interface {
	IntN(n int) int
}

// Dispatcher applies decoded tool calls to a World. It is not safe for
// concurrent use; one turn owns it at a time.
type Dispatcher struct {
	world    *world.World
	expander Expander
	roller   Roller
	logger   *slog.Logger

	narrative    string
	hasNarrative bool
}

// NewDispatcher creates a dispatcher over w. Without an expander, moves
// into unexplored coordinates fail with ErrEntityNotFound.
func NewDispatcher(w *world.World, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		world:  w,
		roller: actor.NewRandomDice(),
		logger: logger,
	}
}

func (d *Dispatcher) WithExpander(e Expander) *Dispatcher {
	d.expander = e
	return d
}

func (d *Dispatcher) WithRoller(r Roller) *Dispatcher {
	if r != nil {
		d.roller = r
	}
	return d
}

func (d *Dispatcher) World() *world.World { return d.world }

// ResetTurn clears the narrative recorded by generate_turn_narrative.
func (d *Dispatcher) ResetTurn() {
	d.narrative = ""
	d.hasNarrative = false
}

// TurnNarrative returns the narrative recorded this turn, if any.
func (d *Dispatcher) TurnNarrative() (string, bool) {
	return d.narrative, d.hasNarrative
}

// Execute decodes and applies one operation.
func (d *Dispatcher) Execute(ctx context.Context, name, arguments string) (string, error) {
	cmd, err := Decode(name, arguments)
	if err != nil {
		return "", err
	}
	return d.Apply(ctx, cmd)
}

// Call applies a protocol tool call. Failures are reported in the result
// text rather than returned, so one bad call never stops the rest.
func (d *Dispatcher) Call(ctx context.Context, call chat.ToolCall) chat.ToolResult {
	d.logger.Debug("Executing tool",
		"tool", call.Function.Name,
		"tool_call_id", call.ID,
		"arguments", call.Function.Arguments)

	msg, err := d.Execute(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		d.logger.Warn("Tool call failed",
			"tool", call.Function.Name,
			"tool_call_id", call.ID,
			"error", err)
		return chat.ToolResult{ToolCallID: call.ID, Content: "Error: " + err.Error(), Failed: true}
	}
	return chat.ToolResult{ToolCallID: call.ID, Content: msg}
}

// Apply performs exactly one mutation. On error the world is unchanged.
func (d *Dispatcher) Apply(ctx context.Context, cmd Command) (string, error) {
	switch c := cmd.(type) {
	case MoveTo:
		return d.moveTo(ctx, c)
	case UpdateLocationDescription:
		return d.updateLocationDescription(c)
	case GenerateTurnNarrative:
		d.narrative = c.Text
		d.hasNarrative = true
		return "Turn narrative generated", nil
	case CreateLocation:
		return d.createLocation(c)
	case InspectObject:
		return d.inspectObject(c)
	case CreateItem:
		return d.createItem(c)
	case AddItemToInventory:
		return d.addItemToInventory(c)
	case RemoveItemFromInventory:
		return d.removeItemFromInventory(c)
	case AddItemToLocation:
		return d.addItemToLocation(c)
	case RemoveItemFromLocation:
		return d.removeItemFromLocation(c)
	case UseItem:
		return d.useItem(c)
	case EquipItem:
		return d.equipItem(c)
	case UnequipItem:
		return d.unequipItem(c)
	case CombineItems:
		return d.combineItems(c)
	case BreakItem:
		return d.breakItem(c)
	case AddItemToContainer:
		return d.addItemToContainer(c)
	case RemoveItemFromContainer:
		return d.removeItemFromContainer(c)
	case SetItemState:
		return d.setItemState(c)
	case StartCombat:
		return d.startCombat(c)
	case AttackActor:
		return d.attackActor(c)
	case Defend:
		return d.defend(c)
	case Flee:
		return d.flee(c)
	case UseItemInCombat:
		return d.useItemInCombat(c)
	case EndTurn:
		return d.endTurn(c)
	case nil:
		return "", errors.New("nil command")
	}
	return "", &Error{Op: cmd.Op(), Kind: ErrUnknownOperation}
}

func (d *Dispatcher) moveTo(ctx context.Context, c MoveTo) (string, error) {
	w := d.world
	from := w.CurrentPos
	current, ok := w.Locations[from]
	if !ok {
		return "", notFound(OpMoveTo, "current location %s not found", from)
	}

	target := from.Step(c.Direction)
	dest, ok := w.Locations[target]
	if !ok {
		if d.expander == nil {
			return "", notFound(OpMoveTo, "no location at %s and no generator configured", target)
		}
		d.logger.Info("Generating new location",
			"from", from.String(),
			"to", target.String(),
			"direction", c.Direction)
		dest = d.expander.Expand(ctx, w, from, c.Direction)
	} else {
		current.Link(c.Direction, target)
		dest.Link(c.Direction.Opposite(), from)
	}

	w.CurrentPos = target
	dest.Visited = true

	d.logger.Info("Location changed",
		"from", from.String(),
		"to", target.String(),
		"name", dest.Name)
	return fmt.Sprintf("Moved %s to (%d, %d) - %s", c.Direction, target.X, target.Y, dest.Name), nil
}

func (d *Dispatcher) updateLocationDescription(c UpdateLocationDescription) (string, error) {
	loc, ok := d.world.CurrentLocation()
	if !ok {
		return "", notFound(OpUpdateLocationDescription, "current location %s not found", d.world.CurrentPos)
	}
	loc.Description = c.Text
	return "Location description updated", nil
}

func (d *Dispatcher) createLocation(c CreateLocation) (string, error) {
	if _, exists := d.world.Locations[c.Pos]; exists {
		return "", duplicate(OpCreateLocation, "a location already exists at %s", c.Pos)
	}
	prompt := c.ImagePrompt
	if prompt == "" {
		prompt = c.Description
	}
	d.world.Locations[c.Pos] = &world.Location{
		Name:        c.Name,
		Description: c.Description,
		Items:       []string{},
		Actors:      []string{},
		Exits:       map[world.Direction]*world.Coord{},
		ImagePrompt: prompt,
	}
	return fmt.Sprintf("Created location %s at %s", c.Name, c.Pos), nil
}

func (d *Dispatcher) inspectObject(c InspectObject) (string, error) {
	if item, ok := d.world.Items[c.ObjectID]; ok {
		return fmt.Sprintf("Item: %s\nDescription: %s\nType: %s\nState: %s\nProperties: %s",
			item.Name, item.Description, item.ItemType, item.State, describeProperties(item.Properties)), nil
	}
	if a, ok := d.world.Actors[c.ObjectID]; ok {
		return fmt.Sprintf("Actor: %s\nDescription: %s\nInventory: %v\nMoney: %d",
			a.Name, a.Description, a.Inventory, a.Money), nil
	}
	return "", notFound(OpInspectObject, "object %s not found", c.ObjectID)
}

func describeProperties(p world.ItemProperties) string {
	s := fmt.Sprintf("carryable=%t usable=%t", p.Carryable, p.Usable)
	if p.Damage != nil {
		s += fmt.Sprintf(" damage=%d", *p.Damage)
	}
	if p.Defense != nil {
		s += fmt.Sprintf(" defense=%d", *p.Defense)
	}
	if p.Value != nil {
		s += fmt.Sprintf(" value=%d", *p.Value)
	}
	if p.Weight != nil {
		s += fmt.Sprintf(" weight=%d", *p.Weight)
	}
	if p.EquipSlot != nil {
		s += " slot=" + *p.EquipSlot
	}
	if len(p.StatusEffects) > 0 {
		s += fmt.Sprintf(" effects=%v", p.StatusEffects)
	}
	return s
}
