package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Command is one decoded tool call. Every operation in the catalogue has
// exactly one Command type; Decode is the only place raw arguments are read.
type Command interface {
	Op() string
}

type MoveTo struct{ Direction world.Direction }
type UpdateLocationDescription struct{ Text string }
type GenerateTurnNarrative struct{ Text string }
type CreateItem struct{ Item world.Item }
type AddItemToInventory struct{ ItemID string }
type RemoveItemFromInventory struct{ ItemID string }
type AddItemToLocation struct{ ItemID string }
type RemoveItemFromLocation struct{ ItemID string }
type UseItem struct{ ItemID string }
type EquipItem struct{ ItemID string }
type UnequipItem struct{ ItemID string }

type CombineItems struct {
	Item1ID  string
	Item2ID  string
	ResultID string
}

type BreakItem struct{ ItemID string }

type AddItemToContainer struct {
	ContainerID string
	ItemID      string
}

type RemoveItemFromContainer struct {
	ContainerID string
	ItemID      string
}

type SetItemState struct {
	ItemID string
	State  world.ItemState
}

type CreateLocation struct {
	Pos         world.Coord
	Name        string
	Description string
	ImagePrompt string
}

type InspectObject struct{ ObjectID string }

type StartCombat struct{ EnemyIDs []string }

type AttackActor struct {
	AttackerID string
	TargetID   string
	WeaponID   *string
}

type Defend struct{ ActorID string }
type Flee struct{ ActorID string }

type UseItemInCombat struct {
	UserID   string
	ItemID   string
	TargetID *string
}

type EndTurn struct{ ActorID string }

func (MoveTo) Op() string                    { return OpMoveTo }
func (UpdateLocationDescription) Op() string { return OpUpdateLocationDescription }
func (GenerateTurnNarrative) Op() string     { return OpGenerateTurnNarrative }
func (CreateItem) Op() string                { return OpCreateItem }
func (AddItemToInventory) Op() string        { return OpAddItemToInventory }
func (RemoveItemFromInventory) Op() string   { return OpRemoveItemFromInventory }
func (AddItemToLocation) Op() string         { return OpAddItemToLocation }
func (RemoveItemFromLocation) Op() string    { return OpRemoveItemFromLocation }
func (UseItem) Op() string                   { return OpUseItem }
func (EquipItem) Op() string                 { return OpEquipItem }
func (UnequipItem) Op() string               { return OpUnequipItem }
func (CombineItems) Op() string              { return OpCombineItems }
func (BreakItem) Op() string                 { return OpBreakItem }
func (AddItemToContainer) Op() string        { return OpAddItemToContainer }
func (RemoveItemFromContainer) Op() string   { return OpRemoveItemFromContainer }
func (SetItemState) Op() string              { return OpSetItemState }
func (CreateLocation) Op() string            { return OpCreateLocation }
func (InspectObject) Op() string             { return OpInspectObject }
func (StartCombat) Op() string               { return OpStartCombat }
func (AttackActor) Op() string               { return OpAttackActor }
func (Defend) Op() string                    { return OpDefend }
func (Flee) Op() string                      { return OpFlee }
func (UseItemInCombat) Op() string           { return OpUseItemInCombat }
func (EndTurn) Op() string                   { return OpEndTurn }

type decoder func(a *args) (Command, error)

var decoders = map[string]decoder{
	OpMoveTo: func(a *args) (Command, error) {
		s, err := a.str("direction")
		if err != nil {
			return nil, err
		}
		d, ok := world.ParseDirection(s)
		if !ok {
			return nil, invalidEnum(a.op, "direction", s)
		}
		return MoveTo{Direction: d}, nil
	},
	OpUpdateLocationDescription: func(a *args) (Command, error) {
		s, err := a.str("text")
		return UpdateLocationDescription{Text: s}, err
	},
	OpGenerateTurnNarrative: func(a *args) (Command, error) {
		s, err := a.str("text")
		return GenerateTurnNarrative{Text: s}, err
	},
	OpCreateItem:              decodeCreateItem,
	OpAddItemToInventory:      itemIDCommand(func(id string) Command { return AddItemToInventory{ItemID: id} }),
	OpRemoveItemFromInventory: itemIDCommand(func(id string) Command { return RemoveItemFromInventory{ItemID: id} }),
	OpAddItemToLocation:       itemIDCommand(func(id string) Command { return AddItemToLocation{ItemID: id} }),
	OpRemoveItemFromLocation:  itemIDCommand(func(id string) Command { return RemoveItemFromLocation{ItemID: id} }),
	OpUseItem:                 itemIDCommand(func(id string) Command { return UseItem{ItemID: id} }),
	OpEquipItem:               itemIDCommand(func(id string) Command { return EquipItem{ItemID: id} }),
	OpUnequipItem:             itemIDCommand(func(id string) Command { return UnequipItem{ItemID: id} }),
	OpBreakItem:               itemIDCommand(func(id string) Command { return BreakItem{ItemID: id} }),
	OpCombineItems: func(a *args) (Command, error) {
		var c CombineItems
		var err error
		if c.Item1ID, err = a.str("item1_id"); err != nil {
			return nil, err
		}
		if c.Item2ID, err = a.str("item2_id"); err != nil {
			return nil, err
		}
		if c.ResultID, err = a.str("result_id"); err != nil {
			return nil, err
		}
		return c, nil
	},
	OpAddItemToContainer: func(a *args) (Command, error) {
		container, item, err := a.containerPair()
		return AddItemToContainer{ContainerID: container, ItemID: item}, err
	},
	OpRemoveItemFromContainer: func(a *args) (Command, error) {
		container, item, err := a.containerPair()
		return RemoveItemFromContainer{ContainerID: container, ItemID: item}, err
	},
	OpSetItemState: func(a *args) (Command, error) {
		id, err := a.str("item_id")
		if err != nil {
			return nil, err
		}
		raw, ok := a.present("state")
		if !ok {
			return nil, missingField(a.op, "state")
		}
		state, err := a.state(raw)
		if err != nil {
			return nil, err
		}
		return SetItemState{ItemID: id, State: state}, nil
	},
	OpCreateLocation: func(a *args) (Command, error) {
		var c CreateLocation
		var err error
		if c.Pos.X, err = a.integer("x"); err != nil {
			return nil, err
		}
		if c.Pos.Y, err = a.integer("y"); err != nil {
			return nil, err
		}
		if c.Name, err = a.str("name"); err != nil {
			return nil, err
		}
		if c.Description, err = a.str("description"); err != nil {
			return nil, err
		}
		prompt, err := a.optStr("image_prompt")
		if err != nil {
			return nil, err
		}
		if prompt != nil {
			c.ImagePrompt = *prompt
		}
		return c, nil
	},
	OpInspectObject: func(a *args) (Command, error) {
		s, err := a.str("object_id")
		return InspectObject{ObjectID: s}, err
	},
	OpStartCombat: func(a *args) (Command, error) {
		ids, err := a.strSlice("enemy_ids")
		return StartCombat{EnemyIDs: ids}, err
	},
	OpAttackActor: func(a *args) (Command, error) {
		var c AttackActor
		var err error
		if c.AttackerID, err = a.str("attacker_id"); err != nil {
			return nil, err
		}
		if c.TargetID, err = a.str("target_id"); err != nil {
			return nil, err
		}
		if c.WeaponID, err = a.optStr("weapon_id"); err != nil {
			return nil, err
		}
		return c, nil
	},
	OpDefend: func(a *args) (Command, error) {
		s, err := a.str("actor_id")
		return Defend{ActorID: s}, err
	},
	OpFlee: func(a *args) (Command, error) {
		s, err := a.str("actor_id")
		return Flee{ActorID: s}, err
	},
	OpUseItemInCombat: func(a *args) (Command, error) {
		var c UseItemInCombat
		var err error
		if c.UserID, err = a.str("user_id"); err != nil {
			return nil, err
		}
		if c.ItemID, err = a.str("item_id"); err != nil {
			return nil, err
		}
		if c.TargetID, err = a.optStr("target_id"); err != nil {
			return nil, err
		}
		return c, nil
	},
	OpEndTurn: func(a *args) (Command, error) {
		s, err := a.str("actor_id")
		return EndTurn{ActorID: s}, err
	},
}

// Decode turns an operation name and its JSON argument text into a Command.
func Decode(name, arguments string) (Command, error) {
	dec, ok := decoders[name]
	if !ok {
		return nil, &Error{Op: name, Kind: ErrUnknownOperation}
	}
	a, err := parseArgs(name, arguments)
	if err != nil {
		return nil, err
	}
	cmd, err := dec(a)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func itemIDCommand(build func(id string) Command) decoder {
	return func(a *args) (Command, error) {
		id, err := a.str("item_id")
		if err != nil {
			return nil, err
		}
		return build(id), nil
	}
}

func decodeCreateItem(a *args) (Command, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	typeName, err := a.str("item_type")
	if err != nil {
		return nil, err
	}
	itemType, err := world.ParseItemType(typeName)
	if err != nil {
		return nil, invalidEnum(a.op, "item_type", typeName)
	}

	item := world.Item{
		ID:         id,
		Name:       id,
		ItemType:   itemType,
		State:      world.Normal(),
		Properties: world.DefaultProperties(),
	}
	if name, err := a.optStr("name"); err != nil {
		return nil, err
	} else if name != nil && *name != "" {
		item.Name = *name
	}
	if desc, err := a.optStr("description"); err != nil {
		return nil, err
	} else if desc != nil {
		item.Description = *desc
	}
	if raw, ok := a.present("state"); ok {
		if item.State, err = a.state(raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := a.present("properties"); ok {
		if err := json.Unmarshal(raw, &item.Properties); err != nil {
			return nil, malformedField(a.op, "properties", err.Error())
		}
		for name, v := range map[string]*int{"damage": item.Properties.Damage, "defense": item.Properties.Defense} {
			if v != nil && *v < 0 {
				return nil, malformedField(a.op, "properties", name+" must not be negative")
			}
		}
	}
	return CreateItem{Item: item}, nil
}

type args struct {
	op     string
	fields map[string]json.RawMessage
}

func parseArgs(op, raw string) (*args, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, malformed(op, err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return &args{op: op, fields: fields}, nil
}

// present reports whether field was supplied with a non-null value.
func (a *args) present(field string) (json.RawMessage, bool) {
	raw, ok := a.fields[field]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}

// str reads a required, non-empty string.
func (a *args) str(field string) (string, error) {
	raw, ok := a.present(field)
	if !ok {
		return "", missingField(a.op, field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformedField(a.op, field, "expected a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", missingField(a.op, field)
	}
	return s, nil
}

func (a *args) optStr(field string) (*string, error) {
	raw, ok := a.present(field)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, malformedField(a.op, field, "expected a string")
	}
	return &s, nil
}

func (a *args) strSlice(field string) ([]string, error) {
	raw, ok := a.present(field)
	if !ok {
		return nil, missingField(a.op, field)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, malformedField(a.op, field, "expected an array of strings")
	}
	return out, nil
}

// integer accepts a JSON number or a numeric string.
func (a *args) integer(field string) (int, error) {
	raw, ok := a.present(field)
	if !ok {
		return 0, missingField(a.op, field)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, malformedField(a.op, field, "expected an integer")
}

func (a *args) containerPair() (string, string, error) {
	container, err := a.str("container_id")
	if err != nil {
		return "", "", err
	}
	item, err := a.str("item_id")
	if err != nil {
		return "", "", err
	}
	return container, item, nil
}

func (a *args) state(raw json.RawMessage) (world.ItemState, error) {
	state, err := world.ParseItemState(raw)
	if err != nil {
		if errors.Is(err, world.ErrUnknownTag) {
			return world.ItemState{}, invalidEnum(a.op, "state", strings.TrimSpace(string(raw)))
		}
		return world.ItemState{}, malformedField(a.op, "state", err.Error())
	}
	return state, nil
}
