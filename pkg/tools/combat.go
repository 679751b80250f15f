package tools

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/infinite-adventure/pkg/actor"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	InitiativeDie  = 20
	BaseDamage     = 5
	DefendBonus    = 5
	FleeDie        = 20
	FleeThreshold  = 10
	CombatHealing  = 20
	combatEndedMsg = "Combat ended"
)

func (d *Dispatcher) startCombat(c StartCombat) (string, error) {
	w := d.world
	if w.Combat.Active {
		return "", precondition(OpStartCombat, "combat is already active")
	}
	if len(c.EnemyIDs) == 0 {
		return "", precondition(OpStartCombat, "no enemies given")
	}
	if total := 1 + len(c.EnemyIDs); total > w.MaxCombatants {
		return "", precondition(OpStartCombat, "too many combatants (%d, max %d)", total, w.MaxCombatants)
	}

	seen := make(map[string]bool, len(c.EnemyIDs))
	for _, id := range c.EnemyIDs {
		if id == actor.PlayerID || seen[id] {
			return "", precondition(OpStartCombat, "enemy %s listed more than once", id)
		}
		seen[id] = true
		a, ok := w.Actors[id]
		if !ok {
			return "", notFound(OpStartCombat, "actor %s not found", id)
		}
		if a.CurrentPos != w.CurrentPos {
			return "", precondition(OpStartCombat, "enemy %s is not at the current location", id)
		}
	}

	combatants := make([]world.Combatant, 0, 1+len(c.EnemyIDs))
	player, err := actor.NewCombatant(actor.PlayerID, true, d.rollInitiative())
	if err != nil {
		return "", err
	}
	combatants = append(combatants, player)
	for _, id := range c.EnemyIDs {
		enemy, err := actor.NewCombatant(id, false, d.rollInitiative())
		if err != nil {
			return "", err
		}
		combatants = append(combatants, enemy)
	}
	slices.SortStableFunc(combatants, func(a, b world.Combatant) int {
		return b.Initiative - a.Initiative
	})

	w.Combat = world.Combat{
		Active:           true,
		Combatants:       combatants,
		CurrentTurnIndex: 0,
		RoundNumber:      1,
	}
	d.logger.Info("Combat started",
		"enemies", c.EnemyIDs,
		"first", combatants[0].ID)
	return fmt.Sprintf("Started combat with %d enemies", len(c.EnemyIDs)), nil
}

func (d *Dispatcher) rollInitiative() int {
	return d.roller.IntN(InitiativeDie) + 1
}

// combatant returns the participant with id, or a typed failure.
func (d *Dispatcher) combatant(op, id string) (*world.Combatant, error) {
	if !d.world.Combat.Active {
		return nil, precondition(op, "combat is not active")
	}
	idx := d.world.Combat.Find(id)
	if idx < 0 {
		return nil, precondition(op, "%s is not in combat", id)
	}
	return &d.world.Combat.Combatants[idx], nil
}

func (d *Dispatcher) attackActor(c AttackActor) (string, error) {
	if _, err := d.combatant(OpAttackActor, c.AttackerID); err != nil {
		return "", err
	}
	target, err := d.combatant(OpAttackActor, c.TargetID)
	if err != nil {
		return "", err
	}

	damage := BaseDamage
	if c.WeaponID != nil {
		if weapon, ok := d.world.Items[*c.WeaponID]; ok && weapon.Properties.Damage != nil {
			damage = max(0, *weapon.Properties.Damage)
		}
	}
	defense := target.TempDefense
	if target.ArmorID != nil {
		if armor, ok := d.world.Items[*target.ArmorID]; ok && armor.Properties.Defense != nil {
			defense += max(0, *armor.Properties.Defense)
		}
	}
	dealt := max(1, damage-defense)
	target.TakeDamage(dealt)

	return fmt.Sprintf("%s attacked %s for %d damage", c.AttackerID, c.TargetID, dealt), nil
}

func (d *Dispatcher) defend(c Defend) (string, error) {
	cb, err := d.combatant(OpDefend, c.ActorID)
	if err != nil {
		return "", err
	}
	cb.TempDefense += DefendBonus
	return fmt.Sprintf("%s is defending (+%d temp defense)", c.ActorID, DefendBonus), nil
}

func (d *Dispatcher) flee(c Flee) (string, error) {
	if _, err := d.combatant(OpFlee, c.ActorID); err != nil {
		return "", err
	}
	if d.roller.IntN(FleeDie) < FleeThreshold {
		return fmt.Sprintf("%s failed to flee", c.ActorID), nil
	}

	combat := &d.world.Combat
	idx := combat.Find(c.ActorID)
	combat.Combatants = slices.Delete(combat.Combatants, idx, idx+1)
	if player, enemies := combat.SidesStanding(); !player || !enemies {
		combat.End()
		d.logger.Info("Combat ended", "reason", "flee", "actor_id", c.ActorID)
		return fmt.Sprintf("%s fled successfully!", c.ActorID), nil
	}
	if idx < combat.CurrentTurnIndex {
		combat.CurrentTurnIndex--
	}
	if combat.CurrentTurnIndex >= len(combat.Combatants) {
		combat.CurrentTurnIndex = 0
	}
	return fmt.Sprintf("%s fled successfully!", c.ActorID), nil
}

func (d *Dispatcher) useItemInCombat(c UseItemInCombat) (string, error) {
	user, err := d.combatant(OpUseItemInCombat, c.UserID)
	if err != nil {
		return "", err
	}
	if !d.world.InInventory(c.ItemID) {
		return "", precondition(OpUseItemInCombat, "item %s is not in the inventory", c.ItemID)
	}
	item, ok := d.world.Items[c.ItemID]
	if !ok {
		return "", notFound(OpUseItemInCombat, "item %s not found", c.ItemID)
	}
	if !item.Properties.Usable {
		return "", precondition(OpUseItemInCombat, "item %s is not usable", c.ItemID)
	}

	d.consume(item)
	user.Heal(CombatHealing)
	return fmt.Sprintf("%s used %s and healed for %d", c.UserID, c.ItemID, CombatHealing), nil
}

func (d *Dispatcher) endTurn(c EndTurn) (string, error) {
	combat := &d.world.Combat
	if !combat.Active {
		return "", precondition(OpEndTurn, "combat is not active")
	}
	current, ok := combat.Current()
	if !ok || current.ID != c.ActorID {
		return "", precondition(OpEndTurn, "not %s's turn", c.ActorID)
	}

	for i := range combat.Combatants {
		combat.Combatants[i].TempDefense = 0
	}

	next := combat.CurrentTurnIndex + 1
	for next < len(combat.Combatants) && combat.Combatants[next].HasEffect(world.StatusStunned) {
		skipped := &combat.Combatants[next]
		for i := range skipped.StatusEffects {
			if skipped.StatusEffects[i].Type == world.StatusStunned && skipped.StatusEffects[i].Duration > 0 {
				skipped.StatusEffects[i].Duration--
			}
		}
		next++
	}

	if next >= len(combat.Combatants) {
		combat.RoundNumber++
		for i := range combat.Combatants {
			tickEffects(&combat.Combatants[i])
		}
		combat.Combatants = slices.DeleteFunc(combat.Combatants, func(cb world.Combatant) bool {
			return cb.IsDefeated()
		})

		if player, enemies := combat.SidesStanding(); !player || !enemies {
			combat.End()
			d.logger.Info("Combat ended",
				"reason", "side defeated",
				"round", combat.RoundNumber,
				"player_standing", player)
			return combatEndedMsg, nil
		}

		next = slices.IndexFunc(combat.Combatants, func(cb world.Combatant) bool {
			return !cb.HasEffect(world.StatusStunned)
		})
		if next < 0 {
			next = 0
		}
	}

	combat.CurrentTurnIndex = next
	return fmt.Sprintf("Turn ended. Next: %s", combat.Combatants[next].ID), nil
}

// tickEffects applies damage over time, then decrements every effect and
// drops the expired ones.
func tickEffects(cb *world.Combatant) {
	kept := cb.StatusEffects[:0]
	for _, e := range cb.StatusEffects {
		if e.Type.DamagesOverTime() {
			cb.TakeDamage(e.Severity)
		}
		e.Duration--
		if e.Duration > 0 {
			kept = append(kept, e)
		}
	}
	cb.StatusEffects = kept
}
