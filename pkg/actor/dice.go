package actor

import "github.com/jwebster45206/d20"

// Dice rolls combat checks on a d20 roller. It is not safe for
// concurrent use.
type Dice struct {
	roller *d20.Roller
}

func NewDice(roller *d20.Roller) *Dice {
	return &Dice{roller: roller}
}

// NewRandomDice seeds a roller from the clock.
func NewRandomDice() *Dice {
	return NewDice(d20.NewRandomRoller())
}

// Roll throws one die with the given number of faces and returns 1..faces.
func (d *Dice) Roll(faces int) int {
	if faces <= 0 {
		return 0
	}
	out, err := d.roller.Dice(1, uint(faces)).Roll()
	if err != nil {
		return 0
	}
	return out.Value
}

// IntN returns a value in [0, n) from one n-sided die.
func (d *Dice) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return d.Roll(n) - 1
}
