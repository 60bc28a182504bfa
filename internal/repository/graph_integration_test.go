//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/database"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "ki_metadata_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/ki_metadata_test?sslmode=disable", host, port.Port())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.MigrateUp(db, "ki_metadata_test"))

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func TestGraphRepository_UpsertIdempotent_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewGraphRepository(db)

	scored := `{"Man":7.5,"Woman":92.5}`
	facts := []domain.GraphFact{
		{Caption: domain.CaptionPerson, Age: ptrInt(31), Gender: &scored},
		{Caption: domain.CaptionPhoto},
		{Caption: domain.CaptionPerson, Age: ptrInt(31), Gender: &scored},
		{Caption: domain.CaptionPhoto},
		{Caption: domain.CaptionPhoto, Age: ptrInt(31), Gender: &scored},
	}

	for _, f := range facts {
		require.NoError(t, repo.Upsert(ctx, f))
	}

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GraphCounts{Descriptions: 2, Persons: 2, Edges: 3}, counts)
}

func TestGraphRepository_ConcurrentUpsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewGraphRepository(db)
	fact := domain.GraphFact{Caption: domain.CaptionPerformance, Age: ptrInt(22), Gender: ptrString("Man")}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Upsert(ctx, fact)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GraphCounts{Descriptions: 1, Persons: 1, Edges: 1}, counts)
}
