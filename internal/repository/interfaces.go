package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// GraphRepositoryInterface defines operations for graph fact storage
type GraphRepositoryInterface interface {
	Upsert(ctx context.Context, fact domain.GraphFact) error
	Counts(ctx context.Context) (domain.GraphCounts, error)
	Ping(ctx context.Context) error
}
