package contract

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsLedger_AddItem(t *testing.T) {
	l := NewItemsLedger(nil)

	idx := l.AddItem()

	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, l.Len())
	item := l.Item(0)
	assert.Equal(t, uuid.Nil, item.ProductID)
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.UnitValue.IsZero())
}

func TestItemsLedger_SetProduct(t *testing.T) {
	c := newTestCatalog()

	t.Run("copies the rental value of the product", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()

		l.SetProduct(0, c.p2)

		assert.Equal(t, c.p2, l.Item(0).ProductID)
		assertDecimal(t, "120.50", l.Item(0).UnitValue)
	})

	t.Run("overwrites a manually edited price", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()
		l.SetUnitValue(0, dec("999"))

		l.SetProduct(0, c.p1)

		assertDecimal(t, "50", l.Item(0).UnitValue)
	})

	t.Run("price stays editable after product choice", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()
		l.SetProduct(0, c.p1)

		l.SetUnitValue(0, dec("45"))

		assertDecimal(t, "45", l.Item(0).UnitValue)
		assert.Equal(t, c.p1, l.Item(0).ProductID)
	})

	t.Run("unknown product prices at zero", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()
		l.SetUnitValue(0, dec("10"))

		l.SetProduct(0, uuid.New())

		assert.True(t, l.Item(0).UnitValue.IsZero())
	})

	t.Run("nil catalog prices at zero", func(t *testing.T) {
		l := NewItemsLedger(nil)
		l.AddItem()

		l.SetProduct(0, c.p1)

		assert.True(t, l.Item(0).UnitValue.IsZero())
	})
}

func TestItemsLedger_SetItem(t *testing.T) {
	c := newTestCatalog()

	t.Run("parses form values", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()

		require.NoError(t, l.SetItem(0, ItemFieldProductID, c.p1.String()))
		require.NoError(t, l.SetItem(0, ItemFieldQuantity, " 3 "))
		require.NoError(t, l.SetItem(0, ItemFieldUnitValue, "42.5"))

		item := l.Item(0)
		assert.Equal(t, c.p1, item.ProductID)
		assert.Equal(t, 3, item.Quantity)
		assertDecimal(t, "42.5", item.UnitValue)
	})

	t.Run("empty product clears the selection", func(t *testing.T) {
		l := NewItemsLedger(c.refs.ProductOptions(nil))
		l.AddItem()
		l.SetProduct(0, c.p1)

		require.NoError(t, l.SetItem(0, ItemFieldProductID, ""))

		assert.Equal(t, uuid.Nil, l.Item(0).ProductID)
		assert.True(t, l.Item(0).UnitValue.IsZero())
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		l := NewItemsLedger(nil)
		l.AddItem()

		assert.Error(t, l.SetItem(0, ItemFieldProductID, "not-a-uuid"))
		assert.Error(t, l.SetItem(0, ItemFieldQuantity, "two"))
		assert.Error(t, l.SetItem(0, ItemFieldUnitValue, "abc"))
		assert.Error(t, l.SetItem(0, ItemField("color"), "red"))
		assert.Equal(t, 1, l.Item(0).Quantity)
	})
}

func TestItemsLedger_RemoveItem(t *testing.T) {
	c := newTestCatalog()
	l := NewItemsLedger(c.refs.ProductOptions(nil))
	for range 3 {
		l.AddItem()
	}
	l.SetQuantity(0, 1)
	l.SetQuantity(1, 2)
	l.SetQuantity(2, 3)

	l.RemoveItem(1)

	require.Equal(t, 2, l.Len())
	assert.Equal(t, 1, l.Item(0).Quantity)
	assert.Equal(t, 3, l.Item(1).Quantity)
}

func TestItemsLedger_Total(t *testing.T) {
	c := newTestCatalog()
	l := NewItemsLedger(c.refs.ProductOptions(nil))
	assert.True(t, l.Total().IsZero())

	l.AddItem()
	l.SetProduct(0, c.p1)
	l.SetQuantity(0, 2)
	assertDecimal(t, "100", l.Total())

	l.AddItem()
	l.SetProduct(1, c.p2)
	assertDecimal(t, "220.50", l.Total())

	l.SetQuantity(1, 2)
	assertDecimal(t, "341", l.Total())

	l.RemoveItem(0)
	assertDecimal(t, "241", l.Total())
}

func TestItemsLedger_OutOfRangePanics(t *testing.T) {
	l := NewItemsLedger(nil)
	l.AddItem()

	assert.Panics(t, func() { l.SetQuantity(1, 2) })
	assert.Panics(t, func() { l.RemoveItem(-1) })
	assert.Panics(t, func() { _ = l.SetItem(5, ItemFieldQuantity, "1") })
	assert.Panics(t, func() { l.Item(1) })
}
