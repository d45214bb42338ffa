package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookstorefront/pkg/domain"
)

// CartContents fetches the authoritative cart snapshot.
func (c *Client) CartContents(ctx context.Context) (domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	if err := c.doAuthed(ctx, http.MethodGet, "/api/cart/contents", nil, &snap); err != nil {
		return domain.CartSnapshot{}, err
	}
	return snap, nil
}

type cartAddRequest struct {
	BookID     int64           `json:"bookId"`
	Type       domain.ItemType `json:"type"`
	RentalDays *int            `json:"rentalDays,omitempty"`
}

// CartAdd adds one item to the server cart and returns the created
// line. The server enforces stock; the caller enforces capacity.
func (c *Client) CartAdd(ctx context.Context, bookID int64, itemType domain.ItemType, rentalDays *int) (domain.CartItem, error) {
	body, err := json.Marshal(cartAddRequest{BookID: bookID, Type: itemType, RentalDays: rentalDays})
	if err != nil {
		return domain.CartItem{}, networkError("encode request: "+err.Error(), err)
	}
	var item domain.CartItem
	if err := c.doAuthed(ctx, http.MethodPost, "/api/cart/add", body, &item); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

// CartRemove deletes one cart line by its id.
func (c *Client) CartRemove(ctx context.Context, cartItemID int64) error {
	path := fmt.Sprintf("/api/cart/remove/%d", cartItemID)
	return c.doAuthed(ctx, http.MethodDelete, path, nil, nil)
}

// CartClear empties the server cart.
func (c *Client) CartClear(ctx context.Context) error {
	return c.doAuthed(ctx, http.MethodDelete, "/api/cart/clear", nil, nil)
}

// Availability is the pre-checkout stock probe result. RemainingStock
// and Reason are optional; older backends return only the flag.
type Availability struct {
	Available      bool   `json:"available"`
	RemainingStock *int   `json:"remainingStock,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// CheckAvailability probes whether a book can currently be bought or
// rented. Read-only; never touches cart state.
func (c *Client) CheckAvailability(ctx context.Context, bookID int64, itemType domain.ItemType) (Availability, error) {
	v := url.Values{}
	v.Set("bookId", strconv.FormatInt(bookID, 10))
	v.Set("type", string(itemType))
	var out Availability
	if err := c.doAuthed(ctx, http.MethodGet, "/api/cart/check-availability?"+v.Encode(), nil, &out); err != nil {
		return Availability{}, err
	}
	return out, nil
}
