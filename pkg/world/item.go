package world

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTag is returned when an item type or state tag is not recognised.
var ErrUnknownTag = errors.New("unknown tag")

type ItemType string

const (
	ItemWeapon     ItemType = "Weapon"
	ItemArmor      ItemType = "Armor"
	ItemConsumable ItemType = "Consumable"
	ItemTool       ItemType = "Tool"
	ItemKey        ItemType = "Key"
	ItemContainer  ItemType = "Container"
	ItemQuestItem  ItemType = "QuestItem"
	ItemMaterial   ItemType = "Material"
)

var ItemTypes = []ItemType{
	ItemWeapon, ItemArmor, ItemConsumable, ItemTool,
	ItemKey, ItemContainer, ItemQuestItem, ItemMaterial,
}

func ParseItemType(s string) (ItemType, error) {
	for _, t := range ItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: item_type %q", ErrUnknownTag, s)
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseItemType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type StateKind string

const (
	StateNormal   StateKind = "Normal"
	StateEquipped StateKind = "Equipped"
	StateDamaged  StateKind = "Damaged"
	StateConsumed StateKind = "Consumed"
	StateLocked   StateKind = "Locked"
	StateOpen     StateKind = "Open"
)

// ItemState is a tagged variant; only the fields of Kind are meaningful.
//
// JSON form: unit variants are bare strings ("Normal"), data variants are
// single-key objects ({"Consumed": {"charges": 2, "max_charges": 3}}).
type ItemState struct {
	Kind          StateKind
	Durability    int
	MaxDurability int
	Charges       int
	MaxCharges    int
	KeyID         *string
	Contents      []string
}

func Normal() ItemState   { return ItemState{Kind: StateNormal} }
func Equipped() ItemState { return ItemState{Kind: StateEquipped} }

func Damaged(durability, maxDurability int) ItemState {
	return ItemState{Kind: StateDamaged, Durability: durability, MaxDurability: maxDurability}
}

func Consumed(charges, maxCharges int) ItemState {
	return ItemState{Kind: StateConsumed, Charges: charges, MaxCharges: maxCharges}
}

func Locked(keyID *string) ItemState {
	return ItemState{Kind: StateLocked, KeyID: keyID}
}

func Open(contents ...string) ItemState {
	if contents == nil {
		contents = []string{}
	}
	return ItemState{Kind: StateOpen, Contents: contents}
}

type damagedBody struct {
	Durability    *int `json:"durability"`
	MaxDurability *int `json:"max_durability"`
}

type consumedBody struct {
	Charges    *int `json:"charges"`
	MaxCharges *int `json:"max_charges"`
}

type lockedBody struct {
	KeyID *string `json:"key_id"`
}

type openBody struct {
	Contents []string `json:"contents"`
}

func (s ItemState) MarshalJSON() ([]byte, error) {
	var body any
	switch s.Kind {
	case StateNormal, "":
		return json.Marshal(string(StateNormal))
	case StateEquipped:
		return json.Marshal(string(StateEquipped))
	case StateDamaged:
		body = damagedBody{Durability: &s.Durability, MaxDurability: &s.MaxDurability}
	case StateConsumed:
		body = consumedBody{Charges: &s.Charges, MaxCharges: &s.MaxCharges}
	case StateLocked:
		body = lockedBody{KeyID: s.KeyID}
	case StateOpen:
		contents := s.Contents
		if contents == nil {
			contents = []string{}
		}
		body = openBody{Contents: contents}
	default:
		return nil, fmt.Errorf("%w: state %q", ErrUnknownTag, s.Kind)
	}
	return json.Marshal(map[string]any{string(s.Kind): body})
}

func (s *ItemState) UnmarshalJSON(data []byte) error {
	parsed, err := ParseItemState(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseItemState decodes a state value. Missing Damaged fields default to
// 10, missing Consumed fields default to 1.
func ParseItemState(data []byte) (ItemState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Normal(), nil
	}

	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return ItemState{}, err
		}
		switch StateKind(tag) {
		case StateNormal:
			return Normal(), nil
		case StateEquipped:
			return Equipped(), nil
		}
		return ItemState{}, fmt.Errorf("%w: state %q", ErrUnknownTag, tag)
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(data, &variant); err != nil {
		return ItemState{}, err
	}
	if len(variant) != 1 {
		return ItemState{}, fmt.Errorf("%w: state object must have exactly one key", ErrUnknownTag)
	}

	for tag, raw := range variant {
		switch StateKind(tag) {
		case StateNormal:
			return Normal(), nil
		case StateEquipped:
			return Equipped(), nil
		case StateDamaged:
			var b damagedBody
			if err := unmarshalBody(raw, &b); err != nil {
				return ItemState{}, err
			}
			return Damaged(intOr(b.Durability, 10), intOr(b.MaxDurability, 10)), nil
		case StateConsumed:
			var b consumedBody
			if err := unmarshalBody(raw, &b); err != nil {
				return ItemState{}, err
			}
			return Consumed(intOr(b.Charges, 1), intOr(b.MaxCharges, 1)), nil
		case StateLocked:
			var b lockedBody
			if err := unmarshalBody(raw, &b); err != nil {
				return ItemState{}, err
			}
			return Locked(b.KeyID), nil
		case StateOpen:
			var b openBody
			if err := unmarshalBody(raw, &b); err != nil {
				return ItemState{}, err
			}
			return Open(b.Contents...), nil
		default:
			return ItemState{}, fmt.Errorf("%w: state %q", ErrUnknownTag, tag)
		}
	}
	return Normal(), nil
}

func unmarshalBody(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func (s ItemState) String() string {
	switch s.Kind {
	case StateDamaged:
		return fmt.Sprintf("Damaged %d/%d", s.Durability, s.MaxDurability)
	case StateConsumed:
		return fmt.Sprintf("Consumed %d/%d", s.Charges, s.MaxCharges)
	case StateLocked:
		if s.KeyID != nil {
			return "Locked (key " + *s.KeyID + ")"
		}
		return "Locked"
	case StateOpen:
		return fmt.Sprintf("Open %v", s.Contents)
	case "":
		return string(StateNormal)
	}
	return string(s.Kind)
}

// ItemProperties defaults: carryable, not usable.
type ItemProperties struct {
	Damage        *int     `json:"damage"`
	Defense       *int     `json:"defense"`
	Value         *int     `json:"value"`
	Weight        *int     `json:"weight"`
	Carryable     bool     `json:"carryable"`
	Usable        bool     `json:"usable"`
	EquipSlot     *string  `json:"equip_slot"`
	StatusEffects []string `json:"status_effects"`
}

func DefaultProperties() ItemProperties {
	return ItemProperties{Carryable: true, StatusEffects: []string{}}
}

func (p *ItemProperties) UnmarshalJSON(data []byte) error {
	type alias ItemProperties
	props := alias(DefaultProperties())
	if err := json.Unmarshal(data, &props); err != nil {
		return err
	}
	if props.StatusEffects == nil {
		props.StatusEffects = []string{}
	}
	*p = ItemProperties(props)
	return nil
}

type Item struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ItemType    ItemType       `json:"item_type"`
	State       ItemState      `json:"state"`
	Properties  ItemProperties `json:"properties"`
}

func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	item := alias{State: Normal(), Properties: DefaultProperties()}
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*i = Item(item)
	return nil
}
