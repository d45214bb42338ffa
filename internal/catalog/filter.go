// Package catalog implements the storefront's catalog query core: the
// immutable filter snapshot, the URL codec that mirrors the applied
// view into the navigable query string, and the orchestrator that turns
// user triggers into deduplicated backend fetches.
package catalog

import (
	"slices"

	"bookstorefront/pkg/domain"
)

// FilterState is an immutable snapshot of the faceted catalog filter.
// Two live instances exist per catalog view: the draft bound to the
// filter controls and the applied state driving fetches.
type FilterState struct {
	genreIDs    []int64
	categoryIDs []int64
	sort        domain.SortOrder
}

// NewFilterState builds a snapshot. IDs are copied, sorted and
// deduplicated; non-positive ids are dropped (the backend has no id 0).
func NewFilterState(genreIDs, categoryIDs []int64, sort domain.SortOrder) FilterState {
	if sort == "" {
		sort = domain.SortAsc
	}
	return FilterState{
		genreIDs:    normalizeIDs(genreIDs),
		categoryIDs: normalizeIDs(categoryIDs),
		sort:        sort,
	}
}

func normalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// GenreIDs returns a copy of the selected genre ids.
func (f FilterState) GenreIDs() []int64 {
	return slices.Clone(f.genreIDs)
}

// CategoryIDs returns a copy of the selected category ids.
func (f FilterState) CategoryIDs() []int64 {
	return slices.Clone(f.categoryIDs)
}

// Sort returns the price sort direction.
func (f FilterState) Sort() domain.SortOrder {
	if f.sort == "" {
		return domain.SortAsc
	}
	return f.sort
}

// IsZero reports whether the filter equals the default view.
func (f FilterState) IsZero() bool {
	return len(f.genreIDs) == 0 && len(f.categoryIDs) == 0 && f.Sort() == domain.SortAsc
}

// Equal compares two snapshots component-wise.
func (f FilterState) Equal(o FilterState) bool {
	return f.Sort() == o.Sort() &&
		slices.Equal(f.genreIDs, o.genreIDs) &&
		slices.Equal(f.categoryIDs, o.categoryIDs)
}

// WithGenreToggled returns a snapshot with the genre selected or, when
// already selected, removed. Used by the draft bound to the controls.
func (f FilterState) WithGenreToggled(id int64) FilterState {
	return NewFilterState(toggle(f.genreIDs, id), f.categoryIDs, f.sort)
}

// WithCategoryToggled returns a snapshot with the category toggled.
func (f FilterState) WithCategoryToggled(id int64) FilterState {
	return NewFilterState(f.genreIDs, toggle(f.categoryIDs, id), f.sort)
}

// WithSort returns a snapshot with the sort direction replaced.
func (f FilterState) WithSort(sort domain.SortOrder) FilterState {
	return NewFilterState(f.genreIDs, f.categoryIDs, sort)
}

func toggle(ids []int64, id int64) []int64 {
	if slices.Contains(ids, id) {
		out := make([]int64, 0, len(ids)-1)
		for _, v := range ids {
			if v != id {
				out = append(out, v)
			}
		}
		return out
	}
	return append(slices.Clone(ids), id)
}
