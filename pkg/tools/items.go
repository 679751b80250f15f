package tools

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func (d *Dispatcher) createItem(c CreateItem) (string, error) {
	if _, exists := d.world.Items[c.Item.ID]; exists {
		return "", duplicate(OpCreateItem, "item %s already exists", c.Item.ID)
	}
	item := c.Item
	d.world.Items[item.ID] = &item
	return fmt.Sprintf("Created item: %s", item.ID), nil
}

func (d *Dispatcher) addItemToInventory(c AddItemToInventory) (string, error) {
	d.world.Player.Inventory = world.AddID(d.world.Player.Inventory, c.ItemID)
	return fmt.Sprintf("Added %s to inventory", c.ItemID), nil
}

func (d *Dispatcher) removeItemFromInventory(c RemoveItemFromInventory) (string, error) {
	d.world.Player.Inventory = world.RemoveIDs(d.world.Player.Inventory, c.ItemID)
	return fmt.Sprintf("Removed %s from inventory", c.ItemID), nil
}

func (d *Dispatcher) addItemToLocation(c AddItemToLocation) (string, error) {
	loc, ok := d.world.CurrentLocation()
	if !ok {
		return "", notFound(OpAddItemToLocation, "current location %s not found", d.world.CurrentPos)
	}
	loc.Items = world.AddID(loc.Items, c.ItemID)
	return fmt.Sprintf("Added %s to current location", c.ItemID), nil
}

func (d *Dispatcher) removeItemFromLocation(c RemoveItemFromLocation) (string, error) {
	loc, ok := d.world.CurrentLocation()
	if !ok {
		return "", notFound(OpRemoveItemFromLocation, "current location %s not found", d.world.CurrentPos)
	}
	loc.Items = world.RemoveIDs(loc.Items, c.ItemID)
	return fmt.Sprintf("Removed %s from current location", c.ItemID), nil
}

// useOutcome names what consuming an item did.
type useOutcome int

const (
	useNoEffect useOutcome = iota
	useChargeSpent
	// useConsumedRegistryRetained: the last charge was used. The item
	// leaves the inventory but stays in the registry.
	useConsumedRegistryRetained
)

// consume applies the charge rule shared by use_item and
// use_item_in_combat. The caller has checked that item is usable.
func (d *Dispatcher) consume(item *world.Item) useOutcome {
	if item.State.Kind != world.StateConsumed {
		return useNoEffect
	}
	if item.State.Charges > 1 {
		item.State.Charges--
		return useChargeSpent
	}
	d.world.Player.Inventory = world.RemoveIDs(d.world.Player.Inventory, item.ID)
	return useConsumedRegistryRetained
}

func (d *Dispatcher) useItem(c UseItem) (string, error) {
	item, ok := d.world.Items[c.ItemID]
	if !ok || !item.Properties.Usable {
		return fmt.Sprintf("Used item: %s", c.ItemID), nil
	}
	switch d.consume(item) {
	case useChargeSpent:
		return fmt.Sprintf("Used item: %s (%d charges left)", c.ItemID, item.State.Charges), nil
	case useConsumedRegistryRetained:
		return fmt.Sprintf("Used item: %s (used up)", c.ItemID), nil
	}
	return fmt.Sprintf("Used item: %s", c.ItemID), nil
}

func (d *Dispatcher) equipItem(c EquipItem) (string, error) {
	if item, ok := d.world.Items[c.ItemID]; ok && item.Properties.EquipSlot != nil {
		item.State = world.Equipped()
	}
	return fmt.Sprintf("Equipped item: %s", c.ItemID), nil
}

func (d *Dispatcher) unequipItem(c UnequipItem) (string, error) {
	if item, ok := d.world.Items[c.ItemID]; ok && item.State.Kind == world.StateEquipped {
		item.State = world.Normal()
	}
	return fmt.Sprintf("Unequipped item: %s", c.ItemID), nil
}

// combineItems removes both sources everywhere. The result only appears
// when it is already registered; an unregistered result is a no-op, not
// an error.
func (d *Dispatcher) combineItems(c CombineItems) (string, error) {
	w := d.world
	w.Player.Inventory = world.RemoveIDs(w.Player.Inventory, c.Item1ID, c.Item2ID)
	for _, loc := range w.Locations {
		loc.Items = world.RemoveIDs(loc.Items, c.Item1ID, c.Item2ID)
	}

	if _, registered := w.Items[c.ResultID]; !registered {
		d.logger.Debug("Combine result not registered",
			"item1_id", c.Item1ID,
			"item2_id", c.Item2ID,
			"result_id", c.ResultID)
		return fmt.Sprintf("Combined %s and %s, but %s does not exist", c.Item1ID, c.Item2ID, c.ResultID), nil
	}
	w.Player.Inventory = world.AddID(w.Player.Inventory, c.ResultID)
	return fmt.Sprintf("Combined %s and %s into %s", c.Item1ID, c.Item2ID, c.ResultID), nil
}

func (d *Dispatcher) breakItem(c BreakItem) (string, error) {
	w := d.world
	w.Player.Inventory = world.RemoveIDs(w.Player.Inventory, c.ItemID)
	for _, loc := range w.Locations {
		loc.Items = world.RemoveIDs(loc.Items, c.ItemID)
	}
	delete(w.Items, c.ItemID)
	return fmt.Sprintf("Broke item: %s", c.ItemID), nil
}

func (d *Dispatcher) addItemToContainer(c AddItemToContainer) (string, error) {
	if container, ok := d.world.Items[c.ContainerID]; ok && container.State.Kind == world.StateOpen {
		container.State.Contents = world.AddID(container.State.Contents, c.ItemID)
	}
	return fmt.Sprintf("Added %s to container %s", c.ItemID, c.ContainerID), nil
}

func (d *Dispatcher) removeItemFromContainer(c RemoveItemFromContainer) (string, error) {
	if container, ok := d.world.Items[c.ContainerID]; ok && container.State.Kind == world.StateOpen {
		container.State.Contents = world.RemoveIDs(container.State.Contents, c.ItemID)
	}
	return fmt.Sprintf("Removed %s from container %s", c.ItemID, c.ContainerID), nil
}

func (d *Dispatcher) setItemState(c SetItemState) (string, error) {
	item, ok := d.world.Items[c.ItemID]
	if !ok {
		return "", notFound(OpSetItemState, "item %s not found", c.ItemID)
	}
	state := c.State
	if state.Contents != nil {
		state.Contents = slices.Clone(state.Contents)
	}
	item.State = state
	return fmt.Sprintf("Set %s state to %s", c.ItemID, state), nil
}
