package world

import (
	"encoding/json"
	"fmt"
	"slices"
)

type StatusType string

const (
	StatusPoison   StatusType = "Poison"
	StatusStunned  StatusType = "Stunned"
	StatusBurning  StatusType = "Burning"
	StatusFrozen   StatusType = "Frozen"
	StatusBleeding StatusType = "Bleeding"
)

var StatusTypes = []StatusType{StatusPoison, StatusStunned, StatusBurning, StatusFrozen, StatusBleeding}

func ParseStatusType(s string) (StatusType, error) {
	for _, t := range StatusTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: status %q", ErrUnknownTag, s)
}

func (t *StatusType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseStatusType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DamagesOverTime reports whether the effect costs hp at the end of a round.
func (t StatusType) DamagesOverTime() bool {
	return t == StatusPoison || t == StatusBurning
}

type StatusEffect struct {
	Type     StatusType `json:"effect_type"`
	Duration int        `json:"duration"`
	Severity int        `json:"severity"`
}

// Combatant is a combat-scoped participant. It is discarded when combat ends.
type Combatant struct {
	ID            string         `json:"id"`
	IsPlayer      bool           `json:"is_player"`
	HP            int            `json:"hp"`
	MaxHP         int            `json:"max_hp"`
	WeaponID      *string        `json:"weapon_id"`
	ArmorID       *string        `json:"armor_id"`
	Initiative    int            `json:"initiative"`
	StatusEffects []StatusEffect `json:"status_effects"`
	TempDefense   int            `json:"temp_defense"`
}

func (c *Combatant) HasEffect(t StatusType) bool {
	return slices.ContainsFunc(c.StatusEffects, func(e StatusEffect) bool {
		return e.Type == t
	})
}

// TakeDamage reduces hp, never below zero.
func (c *Combatant) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	c.HP -= n
	if c.HP < 0 {
		c.HP = 0
	}
}

// Heal increases hp up to MaxHP.
func (c *Combatant) Heal(n int) {
	if n <= 0 {
		return
	}
	c.HP += n
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

func (c *Combatant) IsDefeated() bool {
	return c.HP <= 0
}

// Combat is the combat sub-state. While Active, Combatants is non-empty
// and CurrentTurnIndex indexes into it.
type Combat struct {
	Active           bool        `json:"active"`
	Combatants       []Combatant `json:"combatants"`
	CurrentTurnIndex int         `json:"current_turn_index"`
	RoundNumber      int         `json:"round_number"`
}

// Find returns the index of the combatant with id, or -1.
func (c *Combat) Find(id string) int {
	return slices.IndexFunc(c.Combatants, func(cb Combatant) bool {
		return cb.ID == id
	})
}

// Current returns the combatant whose turn it is.
func (c *Combat) Current() (*Combatant, bool) {
	if !c.Active || c.CurrentTurnIndex < 0 || c.CurrentTurnIndex >= len(c.Combatants) {
		return nil, false
	}
	return &c.Combatants[c.CurrentTurnIndex], true
}

// SidesStanding reports whether the player side and the enemy side each
// still have at least one combatant.
func (c *Combat) SidesStanding() (player, enemies bool) {
	for _, cb := range c.Combatants {
		if cb.IsPlayer {
			player = true
		} else {
			enemies = true
		}
	}
	return player, enemies
}

// End resets the sub-state to inactive and discards combatants.
func (c *Combat) End() {
	c.Active = false
	c.Combatants = nil
	c.CurrentTurnIndex = 0
}
