package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bookstorefront/pkg/domain"
)

func TestEncodeDefaultViewIsEmpty(t *testing.T) {
	require.Equal(t, "", EncodeView(ViewState{}))
}

func TestEncodeOmitsDefaults(t *testing.T) {
	v := ViewState{
		Filter: NewFilterState([]int64{3}, nil, domain.SortAsc),
		Search: "dune",
		Page:   0,
	}
	require.Equal(t, "genres=3&title=dune", EncodeView(v))
}

func TestEncodeFullFilter(t *testing.T) {
	v := ViewState{
		Filter: NewFilterState([]int64{5, 3}, []int64{2}, domain.SortDesc),
		Search: " dune ",
		Page:   2,
	}
	require.Equal(t, "categories=2&genres=3%2C5&page=2&sort=desc&title=dune", EncodeView(v))
}

func TestEncodeOverrideSuppressesFilterKeys(t *testing.T) {
	v := ViewState{
		Filter:  NewFilterState([]int64{3}, nil, domain.SortDesc),
		Search:  "dune",
		Special: domain.SpecialBestsellers,
	}
	require.Equal(t, "category=bestsellers", EncodeView(v))
}

func TestDecodeDefaults(t *testing.T) {
	v := DecodeView("")
	require.True(t, v.IsZero())
	require.Equal(t, domain.SortAsc, v.Filter.Sort())
}

func TestDecodeDropsMalformedIDs(t *testing.T) {
	v := DecodeView("genres=3,abc,0,-4,5&categories=x")
	require.Equal(t, []int64{3, 5}, v.Filter.GenreIDs())
	require.Empty(t, v.Filter.CategoryIDs())
}

func TestDecodeAcceptsRepeatedKeys(t *testing.T) {
	v := DecodeView("genres=3&genres=5")
	require.Equal(t, []int64{3, 5}, v.Filter.GenreIDs())
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	v := DecodeView("genres=3&utm_source=mail&theme=dark")
	require.Equal(t, []int64{3}, v.Filter.GenreIDs())
}

func TestDecodeMalformedPageResolvesToZero(t *testing.T) {
	for _, raw := range []string{"page=abc", "page=-2", "page="} {
		require.Equal(t, 0, DecodeView(raw).Page, raw)
	}
}

func TestDecodeValidOverrideIgnoresFilterKeys(t *testing.T) {
	v := DecodeView("category=discounts&genres=3&title=dune&page=1")
	require.Equal(t, domain.SpecialDiscounts, v.Special)
	require.Empty(t, v.Filter.GenreIDs())
	require.Equal(t, "", v.Search)
	require.Equal(t, 1, v.Page)
}

func TestDecodeUnknownOverrideFallsBackToFilters(t *testing.T) {
	v := DecodeView("category=blowout&genres=3")
	require.Equal(t, domain.SpecialCategory(""), v.Special)
	require.Equal(t, []int64{3}, v.Filter.GenreIDs())
}

func TestDecodeLeadingQuestionMark(t *testing.T) {
	v := DecodeView("?genres=3")
	require.Equal(t, []int64{3}, v.Filter.GenreIDs())
}

func TestRoundTripReachableStates(t *testing.T) {
	states := []ViewState{
		{},
		{Filter: NewFilterState([]int64{3}, nil, domain.SortAsc), Search: "dune"},
		{Filter: NewFilterState([]int64{3, 5}, []int64{2, 7}, domain.SortDesc), Page: 4},
		{Filter: NewFilterState(nil, nil, domain.SortDesc)},
		{Search: "war and peace"},
		{Special: domain.SpecialDiscounts},
		{Special: domain.SpecialNew, Page: 3},
		{Filter: NewFilterState([]int64{9}, nil, domain.SortAsc), Page: 12},
	}
	for _, s := range states {
		encoded := EncodeView(s)
		decoded := DecodeView(encoded)
		require.True(t, decoded.Equal(s), "state %+v encoded as %q decoded as %+v", s, encoded, decoded)
	}
}

func TestFilterStateNormalization(t *testing.T) {
	f := NewFilterState([]int64{5, 3, 3, 0, -1}, []int64{2, 2}, "")
	require.Equal(t, []int64{3, 5}, f.GenreIDs())
	require.Equal(t, []int64{2}, f.CategoryIDs())
	require.Equal(t, domain.SortAsc, f.Sort())
}

func TestFilterStateToggle(t *testing.T) {
	f := NewFilterState(nil, nil, domain.SortAsc)
	f = f.WithGenreToggled(3)
	require.Equal(t, []int64{3}, f.GenreIDs())
	f = f.WithGenreToggled(3)
	require.Empty(t, f.GenreIDs())
	f = f.WithCategoryToggled(2).WithSort(domain.SortDesc)
	require.Equal(t, []int64{2}, f.CategoryIDs())
	require.Equal(t, domain.SortDesc, f.Sort())
	require.False(t, f.IsZero())
}

func TestViewStateEqualIgnoresSearchPadding(t *testing.T) {
	a := ViewState{Search: "dune"}
	b := ViewState{Search: "  dune  "}
	require.True(t, a.Equal(b))
}
