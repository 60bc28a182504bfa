//go:build integration

package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

func setupNeo4j(t *testing.T) (*Neo4jStore, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/integration-pass",
		},
		WaitingFor: wait.ForLog("Started.").WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	store, err := NewNeo4jStore(Neo4jConfig{
		URI:      fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		User:     "neo4j",
		Password: "integration-pass",
	})
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	cleanup := func() {
		_ = store.Close(ctx)
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return store, cleanup
}

func TestNeo4jStore_UpsertIdempotent_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store, cleanup := setupNeo4j(t)
	defer cleanup()

	ctx := context.Background()
	scored := `{"Man":7.5,"Woman":92.5}`
	facts := []domain.GraphFact{
		{Caption: domain.CaptionPerson, Age: ptrInt(31), Gender: &scored},
		{Caption: domain.CaptionPerson, Age: ptrInt(31), Gender: &scored},
		{Caption: domain.CaptionPhoto, Age: ptrInt(31), Gender: &scored},
		{Caption: domain.CaptionPhoto, Age: ptrInt(45), Gender: ptrString("Man")},
	}

	for _, f := range facts {
		require.NoError(t, store.Upsert(ctx, f))
	}

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.GraphCounts{Descriptions: 2, Persons: 2, Edges: 3}, counts)
}
