package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewCartSnapshotTotals(t *testing.T) {
	items := []CartItem{
		{CartItemID: 1, BookID: 10, Type: ItemBuy, Price: dec("19.99"), OriginalPrice: dec("24.99")},
		{CartItemID: 2, BookID: 11, Type: ItemRent, Price: dec("5.50"), OriginalPrice: dec("5.50")},
	}
	s := NewCartSnapshot(items)

	require.Equal(t, 2, s.ItemsCount)
	require.Equal(t, 2, s.RemainingSlots)
	require.Equal(t, MaxCartItems, s.MaxItems)
	require.True(t, s.TotalAmount.Equal(dec("25.49")), "total %s", s.TotalAmount)
	require.True(t, s.TotalDiscount.Equal(dec("5.00")), "discount %s", s.TotalDiscount)
	require.False(t, s.IsFull())
}

func TestNewCartSnapshotEmpty(t *testing.T) {
	s := NewCartSnapshot(nil)
	require.Equal(t, 0, s.ItemsCount)
	require.Equal(t, MaxCartItems, s.RemainingSlots)
	require.True(t, s.TotalAmount.IsZero())
	require.True(t, s.TotalDiscount.IsZero())
}

func TestNewCartSnapshotIgnoresNegativeDiscount(t *testing.T) {
	// Original price below the charged price must not produce a
	// negative discount line.
	s := NewCartSnapshot([]CartItem{
		{Price: dec("10.00"), OriginalPrice: dec("8.00")},
	})
	require.True(t, s.TotalDiscount.IsZero())
}

func TestCartSnapshotFullAtMax(t *testing.T) {
	items := make([]CartItem, MaxCartItems)
	s := NewCartSnapshot(items)
	require.True(t, s.IsFull())
	require.Equal(t, 0, s.RemainingSlots)
}

func TestParseSpecialCategory(t *testing.T) {
	for _, raw := range []string{"discounts", "new", "bestsellers"} {
		c, err := ParseSpecialCategory(raw)
		require.NoError(t, err)
		require.Equal(t, raw, string(c))
		require.NotEmpty(t, c.Title())
	}
	_, err := ParseSpecialCategory("sale")
	require.Error(t, err)
}

func TestParseSortOrder(t *testing.T) {
	require.Equal(t, SortDesc, ParseSortOrder("desc"))
	require.Equal(t, SortAsc, ParseSortOrder("asc"))
	require.Equal(t, SortAsc, ParseSortOrder("weird"))
	require.Equal(t, SortAsc, ParseSortOrder(""))
}
