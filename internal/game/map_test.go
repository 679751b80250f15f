package game

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func TestMap(t *testing.T) {
	explored := func() *world.World {
		w := world.NewWithStart()
		start := w.Locations[world.Coord{}]
		w.Locations[world.Coord{X: 0, Y: 1}] = &world.Location{Name: "Moor", Visited: true}
		w.Locations[world.Coord{X: 1, Y: 0}] = &world.Location{Name: "Ford"}
		w.Locations[world.Coord{X: 1, Y: 1}] = &world.Location{Name: "Hill"}
		w.Locations[world.Coord{X: 3, Y: 3}] = &world.Location{Name: "Far Tower"}
		start.Link(world.North, world.Coord{X: 0, Y: 1})
		start.Link(world.East, world.Coord{X: 1, Y: 0})
		w.Locations[world.Coord{X: 0, Y: 1}].Link(world.South, world.Coord{})
		return w
	}

	tests := map[string]struct {
		world func() *world.World
		want  string
	}{
		"empty": {
			world: world.New,
			want:  "No locations",
		},
		"nothing visible": {
			world: func() *world.World {
				w := world.New()
				w.CurrentPos = world.Coord{X: 5, Y: 5}
				w.Locations[world.Coord{}] = &world.Location{Name: "Unseen"}
				return w
			},
			want: "No visible locations",
		},
		"fog of war": {
			world: explored,
			want:  "# ?\n|\n@-?",
		},
		"player off the map": {
			world: func() *world.World {
				w := world.NewWithStart()
				w.CurrentPos = world.Coord{X: 2, Y: 0}
				return w
			},
			want: "# . @",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "map", Map(tt.world()), tt.want)
		})
	}
}
