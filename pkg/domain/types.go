package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType says whether a cart line is a purchase or a rental.
type ItemType string

const (
	ItemBuy  ItemType = "BUY"
	ItemRent ItemType = "RENT"
)

// SortOrder is the catalog price sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder maps a raw value to a SortOrder, defaulting to ascending.
func ParseSortOrder(raw string) SortOrder {
	if raw == string(SortDesc) {
		return SortDesc
	}
	return SortAsc
}

// SpecialCategory is a backend-defined feed that replaces ordinary
// filtered querying. The set is fixed by the catalog service.
type SpecialCategory string

const (
	SpecialDiscounts   SpecialCategory = "discounts"
	SpecialNew         SpecialCategory = "new"
	SpecialBestsellers SpecialCategory = "bestsellers"
)

// ParseSpecialCategory validates a raw category id from a URL or config.
func ParseSpecialCategory(raw string) (SpecialCategory, error) {
	switch SpecialCategory(raw) {
	case SpecialDiscounts, SpecialNew, SpecialBestsellers:
		return SpecialCategory(raw), nil
	}
	return "", fmt.Errorf("unknown special category %q", raw)
}

// Title returns the display name shown above the special feed.
func (c SpecialCategory) Title() string {
	switch c {
	case SpecialDiscounts:
		return "Discounts"
	case SpecialNew:
		return "New Releases"
	case SpecialBestsellers:
		return "Bestsellers"
	}
	return string(c)
}

type Book struct {
	BookID          int64           `json:"bookId"`
	Title           string          `json:"title"`
	AuthorName      string          `json:"authorName"`
	Description     string          `json:"description,omitempty"`
	ImageURLs       []string        `json:"imageUrls,omitempty"`
	PurchasePrice   decimal.Decimal `json:"purchasePrice"`
	RentalPrice     decimal.Decimal `json:"rentalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StockQuantity   int             `json:"stockQuantity"`
}

type Genre struct {
	GenreID int64  `json:"genreId"`
	Name    string `json:"name"`
}

type CategoryWithGenres struct {
	CategoryID   int64   `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Genres       []Genre `json:"genres"`
}

type Review struct {
	ReviewID  int64     `json:"reviewId"`
	BookID    int64     `json:"bookId"`
	BookTitle string    `json:"bookTitle,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	OrderID     int64           `json:"orderId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PickupPoint string          `json:"pickupPoint,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Rental struct {
	RentalID  int64     `json:"rentalId"`
	BookID    int64     `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// PaginationState describes the position inside a paged result set.
// PageIndex is zero-based.
type PaginationState struct {
	PageIndex     int
	PageSize      int
	TotalPages    int
	TotalElements int
}
