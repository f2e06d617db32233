package listing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Defaults(t *testing.T) {
	q := Build(Params{}, "title", "description")

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset())
	assert.Empty(t, q.Sort.Field)
	assert.False(t, q.Sort.Desc)
	assert.False(t, q.Filter.HasTerm())
	assert.Empty(t, q.Filter.SearchFields)
	assert.Empty(t, q.Filter.OwnerID)
}

func TestBuild_FullParams(t *testing.T) {
	q := Build(Params{
		Page:     "3",
		Limit:    "25",
		Query:    "  ocean ",
		SortBy:   "createdAt",
		SortType: "DESC",
		UserID:   "owner-1",
	}, "title", "description")

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, 50, q.Offset())
	assert.Equal(t, "ocean", q.Filter.Term)
	assert.Equal(t, []string{"title", "description"}, q.Filter.SearchFields)
	assert.True(t, q.Filter.HasTerm())
	assert.Equal(t, "owner-1", q.Filter.OwnerID)
	assert.Equal(t, Sort{Field: "createdAt", Desc: true}, q.Sort)
}

func TestBuild_CoercesPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"non numeric", "abc", "x", 1, 10},
		{"zero", "0", "0", 1, 10},
		{"negative", "-2", "-5", 1, 10},
		{"no upper bound", "1", "5000", 1, 5000},
		{"padded", " 2 ", " 7", 2, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Build(Params{Page: tt.page, Limit: tt.limit})
			assert.Equal(t, tt.wantPage, q.Page)
			assert.Equal(t, tt.wantLimit, q.Limit)
		})
	}
}

func TestBuild_SortDirection(t *testing.T) {
	assert.False(t, Build(Params{SortBy: "title"}).Sort.Desc)
	assert.False(t, Build(Params{SortBy: "title", SortType: "asc"}).Sort.Desc)
	assert.False(t, Build(Params{SortBy: "title", SortType: "descending"}).Sort.Desc)
	assert.True(t, Build(Params{SortBy: "title", SortType: "desc"}).Sort.Desc)
}

func TestNewPage(t *testing.T) {
	q := Query{Page: 2, Limit: 5}
	page := NewPage([]string{"a", "b", "c", "d", "e"}, 12, q)

	assert.Equal(t, int64(12), page.TotalDocs)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 6, page.PagingCounter)
	assert.True(t, page.HasPrevPage)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, 1, *page.PrevPage)
	assert.Equal(t, 3, *page.NextPage)

	empty := NewPage[string](nil, 0, Query{Page: 1, Limit: 10})
	assert.NotNil(t, empty.Docs)
	assert.Empty(t, empty.Docs)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.Nil(t, empty.NextPage)
	assert.Nil(t, empty.PrevPage)
}

func TestQuery_OffsetSaturates(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want int
	}{
		{"first page", Query{Page: 1, Limit: math.MaxInt}, 0},
		{"exact", Query{Page: 4, Limit: 2}, 6},
		{"huge page", Query{Page: math.MaxInt, Limit: 2}, math.MaxInt},
		{"huge limit", Query{Page: 2, Limit: math.MaxInt}, math.MaxInt},
		{"boundary", Query{Page: math.MaxInt/3 + 1, Limit: 3}, math.MaxInt / 3 * 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Offset())
		})
	}
}

func TestNewPage_HugeLimitAndPage(t *testing.T) {
	wide := NewPage([]string{"a"}, 12, Query{Page: 1, Limit: math.MaxInt})
	assert.Equal(t, 1, wide.TotalPages)
	assert.Equal(t, 1, wide.PagingCounter)
	assert.False(t, wide.HasNextPage)

	far := NewPage[string](nil, 12, Query{Page: math.MaxInt, Limit: 2})
	assert.Equal(t, 6, far.TotalPages)
	assert.Equal(t, math.MaxInt, far.PagingCounter)
	assert.True(t, far.HasPrevPage)
	assert.False(t, far.HasNextPage)
	assert.Nil(t, far.NextPage)
}
