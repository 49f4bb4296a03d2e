package ports

import (
	"context"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
)

// WayProvider fetches raw street geometry for a bounding box, filtered to
// the given highway classes.
type WayProvider interface {
	FetchWays(ctx context.Context, bounds domain.Bounds, highwayClasses []string) ([]domain.RawWay, error)
}

// StateStore persists string-keyed JSON blobs: the exploration ledger,
// cumulative XP, route history, achievements, and the exploration-day log.
// Get returns ErrKeyNotFound for absent keys.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrKeyNotFound is returned by StateStore.Get for absent keys.
var ErrKeyNotFound = errKeyNotFound{}

type errKeyNotFound struct{}

func (errKeyNotFound) Error() string { return "state key not found" }
