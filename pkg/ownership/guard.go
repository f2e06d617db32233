// Package ownership gates mutations on the acting user owning the resource.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediashare/pkg/apperror"
)

// Owned is implemented by resources bound to an owning user.
type Owned interface {
	GetOwnerID() string
}

// Lookup resolves a resource by id. It returns apperror.ErrRecordNotFound
// when no resource exists.
type Lookup[T Owned] func(ctx context.Context, id string) (T, error)

type Guard[T Owned] struct {
	kind   string
	lookup Lookup[T]
}

// NewGuard builds a guard for resources named kind (e.g. "video").
func NewGuard[T Owned](kind string, lookup Lookup[T]) *Guard[T] {
	return &Guard[T]{kind: kind, lookup: lookup}
}

// Authorize resolves resourceID and confirms actingUserID owns it. The
// resolved resource is returned so callers can mutate it without a second read.
func (g *Guard[T]) Authorize(ctx context.Context, actingUserID, resourceID, action string) (T, error) {
	var zero T

	resource, err := g.lookup(ctx, resourceID)
	if err != nil {
		if errors.Is(err, apperror.ErrRecordNotFound) {
			return zero, apperror.NotFound(fmt.Sprintf("%s not found", capitalize(g.kind)))
		}
		return zero, apperror.Upstream(fmt.Sprintf("failed to load %s", g.kind), err)
	}

	if actingUserID == "" || resource.GetOwnerID() != actingUserID {
		return zero, apperror.Forbidden(fmt.Sprintf("You do not have permission to %s this %s", action, g.kind))
	}

	return resource, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
