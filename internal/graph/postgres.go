package graph

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/repository"
)

// PostgresStore adapts the relational graph repository and owns its pool
type PostgresStore struct {
	*repository.GraphRepository
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		GraphRepository: repository.NewGraphRepository(pool),
		pool:            pool,
	}
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
