package actor

import (
	"fmt"

	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	// PlayerID is the combatant id used for the player.
	PlayerID = "player"

	PlayerMaxHP = 100
	EnemyMaxHP  = 50

	// BaseAC is carried on the stat block; damage resolution uses item
	// defense, not AC.
	BaseAC = 10
)

// NewStatBlock builds the d20 actor backing a combatant.
func NewStatBlock(id string, isPlayer bool) (*d20.Actor, error) {
	maxHP := EnemyMaxHP
	if isPlayer {
		maxHP = PlayerMaxHP
	}
	a, err := d20.NewActor(id).
		WithHP(maxHP).
		WithAC(BaseAC).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build stat block for %s: %w", id, err)
	}
	return a, nil
}

// NewCombatant creates a combat participant with full hp and no effects.
func NewCombatant(id string, isPlayer bool, initiative int) (world.Combatant, error) {
	block, err := NewStatBlock(id, isPlayer)
	if err != nil {
		return world.Combatant{}, err
	}
	return world.Combatant{
		ID:            id,
		IsPlayer:      isPlayer,
		HP:            block.HP(),
		MaxHP:         block.MaxHP(),
		Initiative:    initiative,
		StatusEffects: []world.StatusEffect{},
	}, nil
}
