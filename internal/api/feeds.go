package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookstorefront/pkg/domain"
)

// FeedPage is one page of an append-only feed in normalized form.
type FeedPage[T any] struct {
	Items         []T
	PageIndex     int
	HasNext       bool
	TotalElements int
}

// ReviewSort values accepted by the reviews endpoint.
const (
	ReviewSortNewest  = "newest"
	ReviewSortOldest  = "oldest"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
)

// BookReviews fetches one page of a book's review feed.
// Envelope: {reviews, currentPage, hasNext, totalElements}.
func (c *Client) BookReviews(ctx context.Context, bookID int64, pageIndex, size int, sort string) (FeedPage[domain.Review], error) {
	if sort == "" {
		sort = ReviewSortNewest
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(pageIndex))
	v.Set("size", strconv.Itoa(size))
	v.Set("sort", sort)
	path := fmt.Sprintf("/api/catalog/books/%d/reviews?%s", bookID, v.Encode())

	var env struct {
		Reviews       []domain.Review `json:"reviews"`
		CurrentPage   int             `json:"currentPage"`
		HasNext       bool            `json:"hasNext"`
		TotalElements int             `json:"totalElements"`
	}
	if err := c.get(ctx, path, &env); err != nil {
		return FeedPage[domain.Review]{}, err
	}
	return FeedPage[domain.Review]{
		Items:         env.Reviews,
		PageIndex:     env.CurrentPage,
		HasNext:       env.HasNext,
		TotalElements: env.TotalElements,
	}, nil
}

// springPage is the Spring Data page envelope used by the orders and
// rentals endpoints.
type springPage[T any] struct {
	Content  []T `json:"content"`
	Pageable struct {
		PageNumber int `json:"pageNumber"`
	} `json:"pageable"`
	Last          bool `json:"last"`
	TotalElements int  `json:"totalElements"`
}

func (p springPage[T]) normalize() FeedPage[T] {
	return FeedPage[T]{
		Items:         p.Content,
		PageIndex:     p.Pageable.PageNumber,
		HasNext:       !p.Last,
		TotalElements: p.TotalElements,
	}
}

// MyOrders fetches one page of the authenticated user's orders.
func (c *Client) MyOrders(ctx context.Context, pageIndex, size int) (FeedPage[domain.Order], error) {
	path := fmt.Sprintf("/api/orders/my-orders?page=%d&size=%d", pageIndex, size)
	var env springPage[domain.Order]
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, &env); err != nil {
		return FeedPage[domain.Order]{}, err
	}
	return env.normalize(), nil
}

// MyRentals fetches one page of the authenticated user's rentals.
func (c *Client) MyRentals(ctx context.Context, pageIndex, size int) (FeedPage[domain.Rental], error) {
	path := fmt.Sprintf("/api/rentals/my-rentals?page=%d&size=%d", pageIndex, size)
	var env springPage[domain.Rental]
	if err := c.doAuthed(ctx, http.MethodGet, path, nil, &env); err != nil {
		return FeedPage[domain.Rental]{}, err
	}
	return env.normalize(), nil
}
