package actor

import (
	"testing"

	"github.com/jwebster45206/d20"
	"github.com/pixil98/go-testutil"
)

func TestDiceIntN(t *testing.T) {
	dice := NewDice(d20.NewRoller(42))
	seen := make(map[int]bool)
	for range 500 {
		v := dice.IntN(20)
		if v < 0 || v >= 20 {
			t.Fatalf("IntN(20) = %d, out of range", v)
		}
		seen[v] = true
	}
	testutil.AssertEqual(t, "distinct faces", len(seen), 20)
}

func TestDiceSeedRepeats(t *testing.T) {
	a, b := NewDice(d20.NewRoller(7)), NewDice(d20.NewRoller(7))
	for i := range 50 {
		if x, y := a.IntN(20), b.IntN(20); x != y {
			t.Fatalf("roll %d: %d != %d", i, x, y)
		}
	}
}

func TestDiceDegenerate(t *testing.T) {
	dice := NewRandomDice()
	testutil.AssertEqual(t, "IntN(0)", dice.IntN(0), 0)
	testutil.AssertEqual(t, "IntN(-3)", dice.IntN(-3), 0)
	testutil.AssertEqual(t, "Roll(0)", dice.Roll(0), 0)
	testutil.AssertEqual(t, "IntN(1)", dice.IntN(1), 0)
}
