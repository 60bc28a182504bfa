package graph

import (
	"context"
	"sync"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

type personKey struct {
	age       int
	hasAge    bool
	gender    string
	hasGender bool
}

type edgeKey struct {
	description string
	person      personKey
}

// MemoryStore keeps the graph in process memory. Nulls are ordinary values,
// so a fact without a face still merges.
type MemoryStore struct {
	mu           sync.Mutex
	descriptions map[string]struct{}
	persons      map[personKey]struct{}
	edges        map[edgeKey]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		descriptions: make(map[string]struct{}),
		persons:      make(map[personKey]struct{}),
		edges:        make(map[edgeKey]struct{}),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, fact domain.GraphFact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	person := personKey{}
	if fact.Age != nil {
		person.age, person.hasAge = *fact.Age, true
	}
	if fact.Gender != nil {
		person.gender, person.hasGender = *fact.Gender, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.descriptions[fact.Caption] = struct{}{}
	s.persons[person] = struct{}{}
	s.edges[edgeKey{description: fact.Caption, person: person}] = struct{}{}

	return nil
}

func (s *MemoryStore) Counts(ctx context.Context) (domain.GraphCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.GraphCounts{
		Descriptions: int64(len(s.descriptions)),
		Persons:      int64(len(s.persons)),
		Edges:        int64(len(s.edges)),
	}, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
