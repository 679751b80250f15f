package prompts

import (
	"strings"
	"testing"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func testWorld() *world.World {
	w := world.NewWithStart()
	w.Items["lamp"] = &world.Item{ID: "lamp", Name: "Brass Lamp"}
	w.Items["coin"] = &world.Item{ID: "coin", Name: "Old Coin"}
	w.Actors["hermit"] = &world.Actor{ID: "hermit", Name: "Hermit"}
	start := w.Locations[world.Coord{}]
	start.Items = []string{"lamp", "missing"}
	start.Actors = []string{"hermit"}
	w.Player.Inventory = []string{"coin"}
	w.Player.Money = 12
	w.Locations[world.Coord{Y: 1}] = &world.Location{Name: "Misty Hill"}
	return w
}

func TestBuilder_Build_RequiresWorld(t *testing.T) {
	_, err := New().WithUserMessage("look").Build()
	if err == nil {
		t.Fatal("Expected error when world is missing")
	}
}

func TestBuilder_Build(t *testing.T) {
	msgs, err := New().WithWorld(testWorld()).WithUserMessage("look around").Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != chat.ChatRoleSystem {
		t.Errorf("Expected system role first, got %s", msgs[0].Role)
	}
	if msgs[1].Role != chat.ChatRoleUser || msgs[1].Content != "Player Action: look around" {
		t.Errorf("Unexpected user message: %+v", msgs[1])
	}
}

func TestSystemContext(t *testing.T) {
	text, err := SystemContext(testWorld())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{
		"Current Location: The Beginning at (0, 0)",
		"Items here: [Brass Lamp]",
		"Actors here: [Hermit]",
		"Player Inventory: [Old Coin]",
		"Player Money: 12",
		"Adjacent Areas: north: Misty Hill, south: unexplored, east: unexplored, west: unexplored",
		"Available tools: move_to,",
	}
	for _, s := range want {
		if !strings.Contains(text, s) {
			t.Errorf("Expected context to contain %q, got:\n%s", s, text)
		}
	}
	if strings.Contains(text, "COMBAT ACTIVE") {
		t.Error("Expected no combat section while combat is inactive")
	}
}

func TestSystemContext_Combat(t *testing.T) {
	w := testWorld()
	sword := "sword"
	w.Combat = world.Combat{
		Active:      true,
		RoundNumber: 3,
		Combatants: []world.Combatant{
			{ID: "player", IsPlayer: true, HP: 80, MaxHP: 100, WeaponID: &sword, TempDefense: 5},
			{ID: "goblin", HP: 20, MaxHP: 50, StatusEffects: []world.StatusEffect{
				{Type: world.StatusPoison, Duration: 2, Severity: 3},
			}},
		},
		CurrentTurnIndex: 1,
	}

	text, err := SystemContext(w)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{
		"COMBAT ACTIVE - Round 3 - Turn: goblin",
		"- player (PLAYER): HP 80/100 | Weapon: sword | Armor: none | Temp Def: 5 | Status: none",
		"- goblin (ENEMY): HP 20/50 | Weapon: none | Armor: none | Temp Def: 0 | Status: Poison(2t)",
		"Combat Actions: start_combat, attack_actor, defend, flee, use_item_in_combat, end_turn",
	}
	for _, s := range want {
		if !strings.Contains(text, s) {
			t.Errorf("Expected context to contain %q, got:\n%s", s, text)
		}
	}
}

func TestSystemContext_MissingLocation(t *testing.T) {
	w := world.New()
	text, err := SystemContext(w)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(text, "Current Location: Unknown at (0, 0)") {
		t.Errorf("Expected unknown location placeholder, got:\n%s", text)
	}
}

func TestLocationPrompt(t *testing.T) {
	current := &world.Location{Name: "Dark Cave", Description: "Dripping water.  "}
	text, err := LocationPrompt(current, world.Coord{X: 2, Y: -1}, world.East)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{
		"Current Location: Dark Cave at (2, -1)",
		"Description: Dripping water.\n",
		"heading east toward coordinates (3, -1)",
		"Create a new location at (3, -1)",
		`"exits": {"north": null, "south": null, "east": null, "west": null}`,
		"Just the JSON. Nothing else.",
	}
	for _, s := range want {
		if !strings.Contains(text, s) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", s, text)
		}
	}

	if _, err := LocationPrompt(nil, world.Coord{}, world.North); err == nil {
		t.Error("Expected error for nil location")
	}
}
