package game

import (
	"strings"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// Map draws the explored grid, north up. A location shows once it is
// visited or when it touches the player's cell, diagonals included:
// '@' is the player, '#' a visited location and '?' one only seen from
// next door. Linked neighbours are joined with '-' and '|'.
func Map(w *world.World) string {
	if len(w.Locations) == 0 {
		return "No locations"
	}

	pos := w.CurrentPos
	visible := make(map[world.Coord]*world.Location)
	for c, loc := range w.Locations {
		if loc.Visited || (abs(c.X-pos.X) <= 1 && abs(c.Y-pos.Y) <= 1) {
			visible[c] = loc
		}
	}
	if len(visible) == 0 {
		return "No visible locations"
	}

	minX, maxX, minY, maxY := pos.X, pos.X, pos.Y, pos.Y
	for c := range visible {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}

	// Cells sit on even columns and rows; connectors go between them.
	width, height := 2*(maxX-minX)+1, 2*(maxY-minY)+1
	grid := make([][]rune, height)
	for gy := range grid {
		grid[gy] = make([]rune, width)
		for gx := range grid[gy] {
			grid[gy][gx] = ' '
			if gx%2 == 0 && gy%2 == 0 {
				grid[gy][gx] = '.'
			}
		}
	}

	for c, loc := range visible {
		gx, gy := 2*(c.X-minX), 2*(maxY-c.Y)
		switch {
		case c == pos:
			grid[gy][gx] = '@'
		case loc.Visited:
			grid[gy][gx] = '#'
		default:
			grid[gy][gx] = '?'
		}

		for _, d := range world.Directions {
			target, ok := loc.Exit(d)
			if !ok || target != c.Step(d) {
				continue
			}
			if _, seen := visible[target]; !seen {
				continue
			}
			dx, dy := d.Delta()
			if dx != 0 {
				grid[gy][gx+dx] = '-'
			} else {
				grid[gy-dy][gx] = '|'
			}
		}
	}

	// The player always shows, even standing somewhere unmapped.
	if _, ok := visible[pos]; !ok {
		grid[2*(maxY-pos.Y)][2*(pos.X-minX)] = '@'
	}

	rows := make([]string, height)
	for gy, row := range grid {
		rows[gy] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(rows, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
