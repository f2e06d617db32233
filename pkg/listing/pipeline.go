package listing

import (
	"slices"
	"strings"
)

// Pipeline runs a Query over an in-memory collection of R, joining each
// match into a public view V.
type Pipeline[R any, V any] struct {
	// Field returns the value of a searchable field, and whether it exists.
	Field func(r R, name string) (string, bool)
	// OwnerID returns the owner reference of r.
	OwnerID func(r R) string
	// Compare orders a and b by the named sort field. ok is false for
	// fields that cannot be sorted on.
	Compare func(a, b R, field string) (c int, ok bool)
	// Tiebreak gives a total order used after Compare and for natural order.
	Tiebreak func(a, b R) int
	// Join resolves the owner profile; false drops r from the result.
	Join func(r R) (V, bool)
}

func (p Pipeline[R, V]) Run(items []R, q Query) *Page[V] {
	matched := make([]R, 0, len(items))
	for _, item := range items {
		if p.matches(item, q.Filter) {
			matched = append(matched, item)
		}
	}

	slices.SortStableFunc(matched, func(a, b R) int {
		if q.Sort.Field != "" {
			if c, ok := p.Compare(a, b, q.Sort.Field); ok && c != 0 {
				if q.Sort.Desc {
					return -c
				}
				return c
			}
		}
		return p.Tiebreak(a, b)
	})

	joined := make([]V, 0, len(matched))
	for _, item := range matched {
		if view, ok := p.Join(item); ok {
			joined = append(joined, view)
		}
	}

	total := int64(len(joined))
	start := min(q.Offset(), len(joined))
	end := start + min(q.Limit, len(joined)-start)

	return NewPage(slices.Clone(joined[start:end]), total, q)
}

func (p Pipeline[R, V]) matches(item R, f Filter) bool {
	if f.OwnerID != "" && p.OwnerID(item) != f.OwnerID {
		return false
	}
	if !f.HasTerm() {
		return true
	}
	for _, name := range f.SearchFields {
		if value, ok := p.Field(item, name); ok && ContainsFold(value, f.Term) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
