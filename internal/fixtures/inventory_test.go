package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedItem(t *testing.T, c *Catalog) InventoryItem {
	t.Helper()
	for _, it := range c.Inventory() {
		if it.Shared() && len(DefaultRotation(it)) > 0 {
			return it
		}
	}
	t.Fatal("no shared account with assigned slots")
	return InventoryItem{}
}

func TestInventoryMatchesSubscriptions(t *testing.T) {
	c := catalog(t)
	ids := make(map[string]bool)
	for _, it := range c.Inventory() {
		assert.False(t, ids[it.ID], "duplicate %s", it.ID)
		ids[it.ID] = true
		assert.NotEmpty(t, it.Provider, it.ID)
		if !it.Shared() {
			assert.Empty(t, it.Slots, it.ID)
		}
	}
	for _, s := range c.Subscriptions() {
		it, ok := c.InventoryItem(s.InventoryID)
		require.True(t, ok, s.ID)
		assert.Equal(t, s.Product, it.Product, s.ID)
		if s.Type != TypeShared {
			continue
		}
		require.NotNil(t, s.Slots)
		assert.Equal(t, len(it.Slots), s.Slots.Total, s.ID)
		occupied := 0
		held := false
		for _, slot := range it.Slots {
			if slot.Occupied() {
				occupied++
			}
			if slot.SubscriptionID == s.ID {
				held = true
			}
		}
		assert.Equal(t, occupied, s.Slots.Used, s.ID)
		assert.True(t, held, "%s holds no slot in %s", s.ID, it.ID)
	}
}

func TestFilterInventory(t *testing.T) {
	c := catalog(t)
	for _, it := range c.FilterInventory(InventoryFilter{Shared: true}) {
		assert.True(t, it.Shared())
	}
	available := c.FilterInventory(InventoryFilter{Status: InventoryAvailable})
	assert.GreaterOrEqual(t, len(available), stockAvailable)
	for _, it := range available {
		assert.False(t, it.Shared())
		assert.Equal(t, InventoryAvailable, it.Status)
	}
	assert.Len(t, c.FilterInventory(InventoryFilter{Search: "inv-stk01"}), 1)
	assert.Equal(t, stockCleaning, InventoryCounts(c.FilterInventory(InventoryFilter{}))[InventoryCleaning])
}

func TestAccessHistoryIsNewestFirst(t *testing.T) {
	c := catalog(t)
	sub := c.Subscriptions()[0]
	events := c.AccessHistory(sub.InventoryID)
	require.NotEmpty(t, events)
	for i, e := range events {
		assert.Equal(t, sub.InventoryID, e.InventoryID)
		if i > 0 {
			assert.False(t, e.Timestamp.After(events[i-1].Timestamp))
		}
	}
	assert.Empty(t, c.AccessHistory("INV-NONE"))
}

func TestRotateCredentials(t *testing.T) {
	c := catalog(t)
	item := sharedItem(t, c)
	slots := DefaultRotation(item)

	rot, err := c.RotateCredentials(RotationRequest{InventoryID: item.ID, SlotIDs: slots}, refDate)
	require.NoError(t, err)
	assert.Regexp(t, `^ROT-`, rot.ID)
	assert.Equal(t, item.Product, rot.Product)
	assert.Equal(t, "artstock."+slug(item.Product)+".20250115@gmail.com", rot.Username)
	assert.Len(t, rot.Notified, len(slots))
	occupied := 0
	for _, s := range item.Slots {
		if s.Occupied() {
			occupied++
		}
	}
	assert.Equal(t, occupied-len(slots), rot.Kept)

	again, _ := c.InventoryItem(item.ID)
	assert.Equal(t, item, again, "rotation must not modify the catalog")
}

func TestRotateCredentialsRejects(t *testing.T) {
	c := catalog(t)
	item := sharedItem(t, c)
	var free, individual string
	for _, s := range item.Slots {
		if !s.Occupied() {
			free = s.ID
		}
	}
	for _, it := range c.Inventory() {
		if !it.Shared() {
			individual = it.ID
			break
		}
	}

	_, err := c.RotateCredentials(RotationRequest{InventoryID: item.ID}, refDate)
	assert.ErrorIs(t, err, ErrInvalidRotation)

	_, err = c.RotateCredentials(RotationRequest{InventoryID: "INV-NONE", SlotIDs: []string{"x"}}, refDate)
	assert.ErrorIs(t, err, ErrInventoryNotFound)

	_, err = c.RotateCredentials(RotationRequest{InventoryID: individual, SlotIDs: []string{"x"}}, refDate)
	assert.ErrorIs(t, err, ErrRotationNotShared)

	_, err = c.RotateCredentials(RotationRequest{InventoryID: item.ID, SlotIDs: []string{item.ID + "-S99"}}, refDate)
	assert.ErrorIs(t, err, ErrInvalidRotation)

	if free != "" {
		_, err = c.RotateCredentials(RotationRequest{InventoryID: item.ID, SlotIDs: []string{free}}, refDate)
		assert.ErrorIs(t, err, ErrInvalidRotation)
	}
}
