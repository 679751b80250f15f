package tools

import (
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	OpMoveTo                    = "move_to"
	OpUpdateLocationDescription = "update_location_description"
	OpGenerateTurnNarrative     = "generate_turn_narrative"
	OpCreateItem                = "create_item"
	OpAddItemToInventory        = "add_item_to_inventory"
	OpRemoveItemFromInventory   = "remove_item_from_inventory"
	OpAddItemToLocation         = "add_item_to_location"
	OpRemoveItemFromLocation    = "remove_item_from_location"
	OpUseItem                   = "use_item"
	OpEquipItem                 = "equip_item"
	OpUnequipItem               = "unequip_item"
	OpCombineItems              = "combine_items"
	OpBreakItem                 = "break_item"
	OpAddItemToContainer        = "add_item_to_container"
	OpRemoveItemFromContainer   = "remove_item_from_container"
	OpSetItemState              = "set_item_state"
	OpCreateLocation            = "create_location"
	OpInspectObject             = "inspect_object"
	OpStartCombat               = "start_combat"
	OpAttackActor               = "attack_actor"
	OpDefend                    = "defend"
	OpFlee                      = "flee"
	OpUseItemInCombat           = "use_item_in_combat"
	OpEndTurn                   = "end_turn"
)

// CombatOps are the operations listed to the model while combat is active.
var CombatOps = []string{OpStartCombat, OpAttackActor, OpDefend, OpFlee, OpUseItemInCombat, OpEndTurn}

type definition struct {
	name        string
	description string
	properties  map[string]any
	required    []string
}

func str() map[string]any { return map[string]any{"type": "string"} }

func strDesc(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func itemIDOnly(name, desc string) definition {
	return definition{
		name:        name,
		description: desc,
		properties:  map[string]any{"item_id": str()},
		required:    []string{"item_id"},
	}
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var stateSchema = map[string]any{
	"oneOf": []any{
		map[string]any{"type": "string", "enum": []string{"Normal", "Equipped"}},
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Damaged": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"durability":     map[string]any{"type": "integer"},
						"max_durability": map[string]any{"type": "integer"},
					},
					"required": []string{"durability", "max_durability"},
				},
			},
		},
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Consumed": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"charges":     map[string]any{"type": "integer"},
						"max_charges": map[string]any{"type": "integer"},
					},
					"required": []string{"charges", "max_charges"},
				},
			},
		},
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Locked": map[string]any{
					"type":       "object",
					"properties": map[string]any{"key_id": str()},
				},
			},
		},
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Open": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"contents": map[string]any{"type": "array", "items": str()},
					},
				},
			},
		},
	},
}

var definitions = []definition{
	{
		name:        OpMoveTo,
		description: "Move the player one tile in a direction. New tiles are generated automatically.",
		properties: map[string]any{
			"direction": map[string]any{"type": "string", "enum": enumStrings(world.Directions)},
		},
		required: []string{"direction"},
	},
	{
		name:        OpUpdateLocationDescription,
		description: "Permanently change the current location's description",
		properties:  map[string]any{"text": str()},
		required:    []string{"text"},
	},
	{
		name:        OpGenerateTurnNarrative,
		description: "Generate the narrative response for the current turn (transient, not stored per location)",
		properties:  map[string]any{"text": str()},
		required:    []string{"text"},
	},
	{
		name:        OpCreateItem,
		description: "Create a new item in the world",
		properties: map[string]any{
			"id":          strDesc("Unique identifier for the item"),
			"name":        str(),
			"description": str(),
			"item_type":   map[string]any{"type": "string", "enum": enumStrings(world.ItemTypes)},
			"state":       stateSchema,
			"properties": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"damage":         map[string]any{"type": "integer"},
					"defense":        map[string]any{"type": "integer"},
					"value":          map[string]any{"type": "integer"},
					"weight":         map[string]any{"type": "integer"},
					"carryable":      map[string]any{"type": "boolean"},
					"usable":         map[string]any{"type": "boolean"},
					"equip_slot":     map[string]any{"type": []string{"string", "null"}, "enum": []any{"weapon", "armor", nil}},
					"status_effects": map[string]any{"type": "array", "items": str()},
				},
			},
		},
		required: []string{"id", "name", "description", "item_type"},
	},
	itemIDOnly(OpAddItemToInventory, "Add an existing item to the player's inventory"),
	itemIDOnly(OpRemoveItemFromInventory, "Remove an item from the player's inventory"),
	itemIDOnly(OpAddItemToLocation, "Add an item to the current location"),
	itemIDOnly(OpRemoveItemFromLocation, "Remove an item from the current location"),
	itemIDOnly(OpUseItem, "Use an item (activates consumables or tools)"),
	itemIDOnly(OpEquipItem, "Equip an item to its slot"),
	itemIDOnly(OpUnequipItem, "Unequip an item"),
	{
		name:        OpCombineItems,
		description: "Combine two items into an existing result item",
		properties: map[string]any{
			"item1_id":  str(),
			"item2_id":  str(),
			"result_id": str(),
		},
		required: []string{"item1_id", "item2_id", "result_id"},
	},
	itemIDOnly(OpBreakItem, "Break and remove an item from the world"),
	{
		name:        OpAddItemToContainer,
		description: "Add an item to an open container",
		properties:  map[string]any{"container_id": str(), "item_id": str()},
		required:    []string{"container_id", "item_id"},
	},
	{
		name:        OpRemoveItemFromContainer,
		description: "Remove an item from an open container",
		properties:  map[string]any{"container_id": str(), "item_id": str()},
		required:    []string{"container_id", "item_id"},
	},
	{
		name:        OpSetItemState,
		description: "Replace an item's state (e.g. unlock, open, damage)",
		properties:  map[string]any{"item_id": str(), "state": stateSchema},
		required:    []string{"item_id", "state"},
	},
	{
		name:        OpCreateLocation,
		description: "Create a location at an empty grid coordinate",
		properties: map[string]any{
			"x":            map[string]any{"type": "integer"},
			"y":            map[string]any{"type": "integer"},
			"name":         str(),
			"description":  str(),
			"image_prompt": str(),
		},
		required: []string{"x", "y", "name", "description"},
	},
	{
		name:        OpInspectObject,
		description: "Get details about an item or actor",
		properties:  map[string]any{"object_id": str()},
		required:    []string{"object_id"},
	},
	{
		name:        OpStartCombat,
		description: "Start combat with enemies at the current location. Enemies must be actors present at this location.",
		properties: map[string]any{
			"enemy_ids": map[string]any{
				"type":        "array",
				"items":       str(),
				"description": "IDs of enemy actors to engage in combat (max 4 total including player)",
			},
		},
		required: []string{"enemy_ids"},
	},
	{
		name:        OpAttackActor,
		description: "Attack another combatant. Damage is weapon damage minus armor and temporary defense, minimum 1.",
		properties: map[string]any{
			"attacker_id": str(),
			"target_id":   str(),
			"weapon_id":   strDesc("Optional weapon item ID"),
		},
		required: []string{"attacker_id", "target_id"},
	},
	{
		name:        OpDefend,
		description: "Increase temporary defense for one round (adds +5 to defense)",
		properties:  map[string]any{"actor_id": str()},
		required:    []string{"actor_id"},
	},
	{
		name:        OpFlee,
		description: "Attempt to flee from combat. Success chance based on random check.",
		properties:  map[string]any{"actor_id": str()},
		required:    []string{"actor_id"},
	},
	{
		name:        OpUseItemInCombat,
		description: "Use an item during combat (consumables, healing potions, etc.)",
		properties: map[string]any{
			"user_id":   str(),
			"item_id":   str(),
			"target_id": strDesc("Optional target actor for the item effect"),
		},
		required: []string{"user_id", "item_id"},
	},
	{
		name:        OpEndTurn,
		description: "End the current combatant's turn and move to the next combatant",
		properties:  map[string]any{"actor_id": str()},
		required:    []string{"actor_id"},
	},
}

// Definitions returns the tool catalogue in the chat completion format.
func Definitions() []chat.Tool {
	out := make([]chat.Tool, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, chat.Tool{
			Type: chat.ToolCallType,
			Function: chat.FunctionDefinition{
				Name:        d.name,
				Description: d.description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": d.properties,
					"required":   d.required,
				},
			},
		})
	}
	return out
}

// Names lists every operation in catalogue order.
func Names() []string {
	out := make([]string, len(definitions))
	for i, d := range definitions {
		out[i] = d.name
	}
	return out
}
