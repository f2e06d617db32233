package listing

import "math"

// Page is one slice of a filtered, sorted and joined result set.
type Page[T any] struct {
	Docs          []T   `json:"docs"`
	TotalDocs     int64 `json:"totalDocs"`
	Limit         int   `json:"limit"`
	Page          int   `json:"page"`
	TotalPages    int   `json:"totalPages"`
	PagingCounter int   `json:"pagingCounter"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	HasNextPage   bool  `json:"hasNextPage"`
	PrevPage      *int  `json:"prevPage"`
	NextPage      *int  `json:"nextPage"`
}

// NewPage wraps docs, the items of page q, with metadata derived from total.
func NewPage[T any](docs []T, total int64, q Query) *Page[T] {
	if docs == nil {
		docs = []T{}
	}

	totalPages := 0
	if total > 0 && q.Limit > 0 {
		totalPages = int((total-1)/int64(q.Limit) + 1)
	}

	pagingCounter := q.Offset()
	if pagingCounter < math.MaxInt {
		pagingCounter++
	}

	p := &Page[T]{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         q.Limit,
		Page:          q.Page,
		TotalPages:    totalPages,
		PagingCounter: pagingCounter,
		HasPrevPage:   q.Page > 1,
		HasNextPage:   q.Page < totalPages,
	}
	if p.HasPrevPage {
		prev := q.Page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := q.Page + 1
		p.NextPage = &next
	}
	return p
}
