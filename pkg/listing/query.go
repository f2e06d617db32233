// Package listing turns listing parameters into a store-agnostic query and
// shapes paginated results.
package listing

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params are the raw listing parameters as received from a request.
type Params struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Query    string `form:"query"`
	SortBy   string `form:"sortBy"`
	SortType string `form:"sortType"`
	UserID   string `form:"userId"`
}

// Filter selects resources. Term matches case-insensitively as a substring of
// any of SearchFields.
type Filter struct {
	Term         string
	SearchFields []string
	OwnerID      string
}

func (f Filter) HasTerm() bool {
	return f.Term != "" && len(f.SearchFields) > 0
}

// Sort orders resources. An empty Field means natural (creation) order.
type Sort struct {
	Field string
	Desc  bool
}

type Query struct {
	Filter Filter
	Sort   Sort
	Page   int
	Limit  int
}

// Offset is the number of joined results skipped before the page starts. It
// saturates at math.MaxInt instead of overflowing.
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Build translates params into a Query. searchFields are the fields the
// free-text term is matched against.
func Build(p Params, searchFields ...string) Query {
	q := Query{
		Filter: Filter{
			Term:    strings.TrimSpace(p.Query),
			OwnerID: strings.TrimSpace(p.UserID),
		},
		Sort: Sort{
			Field: strings.TrimSpace(p.SortBy),
			Desc:  strings.EqualFold(strings.TrimSpace(p.SortType), "desc"),
		},
		Page:  positiveInt(p.Page, DefaultPage),
		Limit: positiveInt(p.Limit, DefaultLimit),
	}
	if q.Filter.Term != "" {
		q.Filter.SearchFields = append([]string(nil), searchFields...)
	}
	return q
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
