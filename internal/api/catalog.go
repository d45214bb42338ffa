package api

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"bookstorefront/pkg/domain"
)

// CatalogParams are the query parameters of a filtered catalog request.
type CatalogParams struct {
	Page        int
	Size        int
	GenreIDs    []int64
	CategoryIDs []int64
	Sort        domain.SortOrder
	Title       string
}

// Values renders the parameters as the backend expects them. Title is
// included only when non-empty after trimming; id lists are
// comma-joined.
func (p CatalogParams) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.Size))
	if len(p.GenreIDs) > 0 {
		v.Set("genres", joinIDs(p.GenreIDs))
	}
	if len(p.CategoryIDs) > 0 {
		v.Set("categories", joinIDs(p.CategoryIDs))
	}
	sort := p.Sort
	if sort == "" {
		sort = domain.SortAsc
	}
	v.Set("sort", string(sort))
	if title := strings.TrimSpace(p.Title); title != "" {
		v.Set("title", title)
	}
	return v
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// BookPage is one page of catalog results in normalized form.
type BookPage struct {
	Books      []domain.Book
	Pagination domain.PaginationState
}

// UnmarshalJSON accepts both response shapes the backend produces: a
// bare book list (normalized to a single full page) and the paged
// envelope {books, currentPage, totalPages, totalElements}.
func (p *BookPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var books []domain.Book
		if err := json.Unmarshal(data, &books); err != nil {
			return err
		}
		p.Books = books
		p.Pagination = domain.PaginationState{
			PageIndex:     0,
			TotalPages:    1,
			TotalElements: len(books),
		}
		return nil
	}
	var env struct {
		Books         []domain.Book `json:"books"`
		CurrentPage   int           `json:"currentPage"`
		TotalPages    int           `json:"totalPages"`
		TotalElements int           `json:"totalElements"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	p.Books = env.Books
	p.Pagination = domain.PaginationState{
		PageIndex:     env.CurrentPage,
		TotalPages:    env.TotalPages,
		TotalElements: env.TotalElements,
	}
	return nil
}

// CatalogBooks runs a filtered catalog query.
func (c *Client) CatalogBooks(ctx context.Context, params CatalogParams) (BookPage, error) {
	var page BookPage
	path := "/api/catalog/books?" + params.Values().Encode()
	if err := c.get(ctx, path, &page); err != nil {
		return BookPage{}, err
	}
	page.Pagination.PageSize = params.Size
	return page, nil
}

// SpecialBooks fetches one of the special-category feeds. Filters and
// search never apply here; page and size are the only parameters.
func (c *Client) SpecialBooks(ctx context.Context, cat domain.SpecialCategory, pageIndex, size int) (BookPage, error) {
	if _, err := domain.ParseSpecialCategory(string(cat)); err != nil {
		return BookPage{}, &APIError{Message: err.Error(), Kind: FailureValidation}
	}
	var page BookPage
	path := fmt.Sprintf("/api/catalog/books/%s?page=%d&size=%d", cat, pageIndex, size)
	if err := c.get(ctx, path, &page); err != nil {
		return BookPage{}, err
	}
	page.Pagination.PageSize = size
	return page, nil
}

// CategoriesWithGenres loads the filter facet tree.
func (c *Client) CategoriesWithGenres(ctx context.Context) ([]domain.CategoryWithGenres, error) {
	var cats []domain.CategoryWithGenres
	if err := c.get(ctx, "/api/categories/with-genres", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
