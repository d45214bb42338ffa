package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCartItems is the hard cap on cart lines, enforced by both the
// backend and the client-side store.
const MaxCartItems = 4

type CartItem struct {
	CartItemID      int64           `json:"cartItemId"`
	BookID          int64           `json:"bookId"`
	Title           string          `json:"title"`
	AuthorName      string          `json:"authorName"`
	ImageURLs       []string        `json:"imageUrls,omitempty"`
	Type            ItemType        `json:"type"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	RentalDays      *int            `json:"rentalDays,omitempty"`
	StockQuantity   int             `json:"stockQuantity"`
	AddedAt         time.Time       `json:"addedAt"`
	Available       bool            `json:"available"`
}

// CartSnapshot is the cart as last reconciled with the backend plus any
// optimistic local mutations. ItemsCount always equals len(Items).
type CartSnapshot struct {
	Items          []CartItem      `json:"items"`
	ItemsCount     int             `json:"itemsCount"`
	MaxItems       int             `json:"maxItems"`
	RemainingSlots int             `json:"remainingSlots"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	TotalDiscount  decimal.Decimal `json:"totalDiscount"`
}

// NewCartSnapshot builds a consistent snapshot from a list of items,
// recomputing count, remaining slots and totals the same way the
// backend does.
func NewCartSnapshot(items []CartItem) CartSnapshot {
	s := CartSnapshot{
		Items:    items,
		MaxItems: MaxCartItems,
	}
	s.ItemsCount = len(items)
	s.RemainingSlots = MaxCartItems - s.ItemsCount
	s.TotalAmount = decimal.Zero
	s.TotalDiscount = decimal.Zero
	for _, it := range items {
		s.TotalAmount = s.TotalAmount.Add(it.Price)
		if it.OriginalPrice.GreaterThan(it.Price) {
			s.TotalDiscount = s.TotalDiscount.Add(it.OriginalPrice.Sub(it.Price))
		}
	}
	return s
}

// IsFull reports whether no more items can be added.
func (s CartSnapshot) IsFull() bool {
	return s.ItemsCount >= MaxCartItems
}
