package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"bookstorefront/pkg/domain"
)

// ViewState is everything the catalog view owns in the URL: the
// applied filter, the applied search text, an optional special-category
// override and the zero-based page index.
type ViewState struct {
	Filter  FilterState
	Search  string
	Special domain.SpecialCategory // empty when no override is active
	Page    int
}

// Equal is the fetch-dedup equality: all components must match.
func (v ViewState) Equal(o ViewState) bool {
	return v.Page == o.Page &&
		v.Special == o.Special &&
		strings.TrimSpace(v.Search) == strings.TrimSpace(o.Search) &&
		v.Filter.Equal(o.Filter)
}

// IsZero reports whether the view equals the canonical default.
func (v ViewState) IsZero() bool {
	return v.Page == 0 && v.Special == "" && strings.TrimSpace(v.Search) == "" && v.Filter.IsZero()
}

// URL query keys owned by the catalog view.
const (
	keyPage       = "page"
	keyGenres     = "genres"
	keyCategories = "categories"
	keySort       = "sort"
	keyTitle      = "title"
	keyCategory   = "category" // special-category id
)

// EncodeView renders the view as a URL query string without the
// leading "?". Defaults are omitted entirely so the default view
// encodes to the empty string. An active override suppresses filter
// and search keys: the two never co-encode.
func EncodeView(v ViewState) string {
	params := url.Values{}
	if v.Special != "" {
		params.Set(keyCategory, string(v.Special))
		if v.Page > 0 {
			params.Set(keyPage, strconv.Itoa(v.Page))
		}
		return params.Encode()
	}
	if ids := v.Filter.GenreIDs(); len(ids) > 0 {
		params.Set(keyGenres, joinIDs(ids))
	}
	if ids := v.Filter.CategoryIDs(); len(ids) > 0 {
		params.Set(keyCategories, joinIDs(ids))
	}
	if v.Filter.Sort() != domain.SortAsc {
		params.Set(keySort, string(v.Filter.Sort()))
	}
	if title := strings.TrimSpace(v.Search); title != "" {
		params.Set(keyTitle, title)
	}
	if v.Page > 0 {
		params.Set(keyPage, strconv.Itoa(v.Page))
	}
	return params.Encode()
}

// DecodeView parses a raw query string back into a view. It never
// fails: unknown keys are ignored, malformed or non-positive numeric
// ids are dropped, an unknown sort or special category falls back to
// the default, and a malformed page resolves to 0. When a valid
// override is present every other owned key is ignored, mirroring the
// encode-side exclusivity.
func DecodeView(rawQuery string) ViewState {
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Keep whatever ParseQuery salvaged before the error.
		if params == nil {
			return ViewState{}
		}
	}

	page := 0
	if raw := params.Get(keyPage); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	if raw := params.Get(keyCategory); raw != "" {
		if special, err := domain.ParseSpecialCategory(raw); err == nil {
			return ViewState{Special: special, Page: page}
		}
	}

	return ViewState{
		Filter: NewFilterState(
			parseIDList(params[keyGenres]),
			parseIDList(params[keyCategories]),
			domain.ParseSortOrder(params.Get(keySort)),
		),
		Search: strings.TrimSpace(params.Get(keyTitle)),
		Page:   page,
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// parseIDList accepts both repeated keys and comma-joined values.
func parseIDList(values []string) []int64 {
	var ids []int64
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids
}
