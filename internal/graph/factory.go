package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/config"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/database"
)

// BackendType defines supported graph backends
type BackendType string

const (
	BackendNeo4j    BackendType = "neo4j"
	BackendPostgres BackendType = "postgres"
	BackendMemory   BackendType = "memory"
)

// migrationDBName labels the schema_migrations lock; it is not a database name
const migrationDBName = "ki_metadata"

// NewStore creates the backend named by GRAPH_BACKEND.
// An unreachable Neo4j is only logged: persistence is best-effort and the
// driver reconnects on the next write.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch BackendType(cfg.GraphBackend) {
	case BackendNeo4j, "":
		store, err := NewNeo4jStore(Neo4jConfig{
			URI:      cfg.Neo4jURI,
			User:     cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
		})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			logger.Warn("neo4j not reachable at startup", "uri", cfg.Neo4jURI, "error", err)
		}
		return store, nil

	case BackendPostgres:
		pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("connect graph database: %w", err)
		}
		if err := database.MigrateUp(pool, migrationDBName); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate graph database: %w", err)
		}
		return NewPostgresStore(pool), nil

	case BackendMemory:
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown graph backend: %s (supported: %s, %s, %s)",
			cfg.GraphBackend, BackendNeo4j, BackendPostgres, BackendMemory)
	}
}
