package services

import (
	"context"
	"testing"
	"time"

	"mymenu-bot/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddItemNeverMerges(t *testing.T) {
	f := testFood()
	c := NewCart()

	for i := 1; i <= 3; i++ {
		c.AddItem(Commit(InitDraft(f), ""))
		assert.Equal(t, i, c.Len())
	}
	items := c.Items()
	for _, it := range items {
		assert.Equal(t, "burger", it.ItemID)
		assert.Equal(t, 1, it.Quantity)
	}
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestCart_AddItemCopiesByValue(t *testing.T) {
	f := testFood()
	line := Commit(AddSubItem(InitDraft(f), f.ItemCategories[0].FoodItems[0]), "")
	c := NewCart()
	c.AddItem(line)

	line.Items[0].Quantity = 7
	line.Title = "changed"
	got := c.Items()[0]
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, "Burger", got.Title)
}

func TestCart_ItemsIsSnapshot(t *testing.T) {
	f := testFood()
	c := NewCart()
	c.AddItem(Commit(AddSubItem(InitDraft(f), f.ItemCategories[0].FoodItems[0]), ""))

	snap := c.Items()
	snap[0].Items[0].Quantity = 42
	snap[0].Observation = "x"
	snap = append(snap, snap[0])

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Items()[0].Items[0].Quantity)
	assert.Empty(t, c.Items()[0].Observation)
}

func TestCart_RemoveItem(t *testing.T) {
	f := testFood()
	c := NewCart()
	first, second, third := Commit(InitDraft(f), "1"), Commit(InitDraft(f), "2"), Commit(InitDraft(f), "3")
	c.AddItem(first)
	c.AddItem(second)
	c.AddItem(third)

	assert.True(t, c.RemoveItem(second.ID))
	assert.False(t, c.RemoveItem(second.ID), "second removal is a no-op")
	assert.False(t, c.RemoveItem("unknown"))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, third.ID, items[1].ID)
}

func TestCart_UpdateItem(t *testing.T) {
	c := NewCart()
	line := Commit(InitDraft(testFood()), "ponto da carne")
	c.AddItem(line)

	obs := "bem passado"
	assert.True(t, c.UpdateItem(line.ID, OrderItemPatch{Observation: &obs}))
	got, ok := c.Item(line.ID)
	require.True(t, ok)
	assert.Equal(t, "bem passado", got.Observation)

	assert.True(t, c.UpdateItem(line.ID, OrderItemPatch{}), "empty patch keeps fields")
	got, _ = c.Item(line.ID)
	assert.Equal(t, "bem passado", got.Observation)

	assert.False(t, c.UpdateItem("unknown", OrderItemPatch{Observation: &obs}))
	assert.Equal(t, 1, c.Len())
}

func TestCart_TotalAndClear(t *testing.T) {
	f := testFood()
	a := f.ItemCategories[0].FoodItems[0]
	c := NewCart()
	assert.True(t, c.Total().IsZero())

	c.AddItem(Commit(AddSubItem(InitDraft(f), a), ""))
	c.AddItem(Commit(InitDraft(f), ""))
	assert.True(t, c.Total().Equal(decimal.NewFromInt(22)))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Items())
	assert.True(t, c.Total().IsZero())
}

func TestCart_Restore(t *testing.T) {
	src := NewCart()
	src.AddItem(Commit(InitDraft(testFood()), "a"))
	src.AddItem(Commit(InitDraft(testFood()), "b"))

	dst := NewCart()
	dst.AddItem(Commit(InitDraft(testFood()), "old"))
	dst.Restore(src.Items())
	assert.Equal(t, src.Items(), dst.Items())
}

// Integration test for the snapshot repository (requires DB). Skip if db.Pool is nil or -short.
func TestCartRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cart repository integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping cart repository integration test: no DB pool")
	}
	ctx := context.Background()
	const chatID int64 = 999999991
	defer func() { _ = DeleteCart(ctx, chatID) }()

	f := testFood()
	c := NewCart()
	c.AddItem(Commit(AddSubItem(InitDraft(f), f.ItemCategories[0].FoodItems[1]), "sem sal"))
	require.NoError(t, SaveCart(ctx, chatID, "acme", c))

	snap, err := GetCart(ctx, chatID, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "acme", snap.CompanyID)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "sem sal", snap.Items[0].Observation)
	assert.True(t, snap.ItemsTotal.Equal(decimal.NewFromInt(13)))

	// a zero TTL keeps snapshots forever
	n, err := PurgeStaleCarts(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
	snap, err = GetCart(ctx, chatID, 0)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Items, 1)

	require.NoError(t, DeleteCart(ctx, chatID))
	snap, err = GetCart(ctx, chatID, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCartRepository_NoDatabase(t *testing.T) {
	if db.Pool != nil {
		t.Skip("database configured")
	}
	ctx := context.Background()
	assert.NoError(t, SaveCart(ctx, 1, "acme", NewCart()))
	snap, err := GetCart(ctx, 1, time.Hour)
	assert.NoError(t, err)
	assert.Nil(t, snap)
	n, err := PurgeStaleCarts(ctx, time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurgeStaleCarts_ZeroTTLKeepsEverything(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Minute} {
		n, err := PurgeStaleCarts(context.Background(), ttl)
		assert.NoError(t, err)
		assert.Zero(t, n, "ttl %v", ttl)
	}
}
