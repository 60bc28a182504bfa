// Package graph persists (caption, age, gender) facts as
// Description -[:DESCRIBES]-> Person, merged by value.
package graph

import (
	"context"
	"errors"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// ErrNullProperty is returned by backends that cannot merge on a null key.
var ErrNullProperty = errors.New("graph backend cannot merge a person with null age or gender")

// Store is a value-keyed graph of descriptions and persons.
// Upsert is idempotent: repeating a fact creates no new nodes or edges.
type Store interface {
	Upsert(ctx context.Context, fact domain.GraphFact) error
	Counts(ctx context.Context) (domain.GraphCounts, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
