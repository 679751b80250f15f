package game

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

var titleCaser = cases.Title(language.English)

// Describe renders the world state block shown by the line console.
func Describe(st *State, debug []string) string {
	var b strings.Builder
	w := st.World

	b.WriteString("========================================\n")
	b.WriteString("WORLD STATE\n")
	b.WriteString("========================================\n")

	if loc, ok := w.CurrentLocation(); ok {
		b.WriteString("\n--- Location ---\n")
		fmt.Fprintf(&b, "Name: %s\n", loc.Name)
		fmt.Fprintf(&b, "Position: %s\n", w.CurrentPos)
		fmt.Fprintf(&b, "Description: %s\n", loc.Description)
		fmt.Fprintf(&b, "Visited: %t\n", loc.Visited)

		if len(loc.Items) > 0 {
			b.WriteString("\n--- Items Here ---\n")
			writeItems(&b, w, loc.Items)
		}

		if names := w.ActorNames(loc.Actors); len(names) > 0 {
			b.WriteString("\n--- Actors Here ---\n")
			for _, name := range names {
				fmt.Fprintf(&b, "  - %s\n", name)
			}
		}

		if exits := ExitLines(w, loc); len(exits) > 0 {
			b.WriteString("\n--- Exits ---\n")
			for _, line := range exits {
				fmt.Fprintf(&b, "  - %s\n", line)
			}
		}
	}

	if len(w.Player.Inventory) > 0 {
		b.WriteString("\n--- Player Inventory ---\n")
		writeItems(&b, w, w.Player.Inventory)
	}

	b.WriteString("\n--- Player Stats ---\n")
	fmt.Fprintf(&b, "Money: %d\n", w.Player.Money)

	if w.Combat.Active {
		b.WriteString("\n--- Combat ---\n")
		fmt.Fprintf(&b, "Round: %d\n", w.Combat.RoundNumber)
		for i, c := range w.Combat.Combatants {
			marker := " "
			if i == w.Combat.CurrentTurnIndex {
				marker = ">"
			}
			fmt.Fprintf(&b, " %s %s %d/%d HP\n", marker, combatantName(w, c), c.HP, c.MaxHP)
		}
	}

	b.WriteString("\n--- Narrative ---\n")
	b.WriteString(st.Narrative)
	b.WriteString("\n")

	if len(st.SuggestedActions) > 0 {
		b.WriteString("\n--- Suggested Actions ---\n")
		for i, option := range st.SuggestedActions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, option)
		}
	}

	b.WriteString("\n--- Debug Log (Last 5) ---\n")
	for i := len(debug) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  %s\n", debug[i])
	}

	return b.String()
}

// ExitLines lists a location's exits in compass order, for example
// "North: (0, 1) - Foggy Moor" or "West: blocked".
func ExitLines(w *world.World, loc *world.Location) []string {
	var lines []string
	for _, dir := range world.Directions {
		target, exists := loc.Exits[dir]
		if !exists {
			continue
		}
		label := titleCaser.String(string(dir))
		if target == nil {
			lines = append(lines, label+": blocked")
			continue
		}
		name := "Unknown"
		if l, ok := w.Locations[*target]; ok {
			name = l.Name
		}
		lines = append(lines, fmt.Sprintf("%s: %s - %s", label, *target, name))
	}
	return lines
}

func writeItems(b *strings.Builder, w *world.World, ids []string) {
	for _, id := range ids {
		item, ok := w.Items[id]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  - %s (%s) [%s]\n", item.Name, item.ItemType, item.State)
	}
}

func combatantName(w *world.World, c world.Combatant) string {
	if c.IsPlayer {
		return "You"
	}
	if a, ok := w.Actors[c.ID]; ok {
		return a.Name
	}
	return c.ID
}
