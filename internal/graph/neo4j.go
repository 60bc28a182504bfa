package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const mergeFactCypher = `
MERGE (d:Description {text: $caption})
MERGE (p:Person {age: $age, gender: $gender})
MERGE (d)-[:DESCRIBES]->(p)
`

const countGraphCypher = `
CALL { MATCH (d:Description) RETURN count(d) AS descriptions }
CALL { MATCH (p:Person) RETURN count(p) AS persons }
CALL { MATCH (:Description)-[r:DESCRIBES]->(:Person) RETURN count(r) AS edges }
RETURN descriptions, persons, edges
`

// Neo4jConfig holds connection settings for the Neo4j backend
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

// Neo4jStore writes facts to Neo4j with MERGE, one write transaction per fact
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore creates the driver. No connection is made until first use.
func NewNeo4jStore(cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Neo4jStore{driver: driver}, nil
}

// Upsert merges the fact. Neo4j rejects MERGE on null properties, so a fact
// without age or gender fails with ErrNullProperty before reaching the server.
func (s *Neo4jStore) Upsert(ctx context.Context, fact domain.GraphFact) error {
	if fact.Age == nil || fact.Gender == nil {
		return fmt.Errorf("upsert graph fact: %w", ErrNullProperty)
	}

	params := map[string]any{
		"caption": fact.Caption,
		"age":     int64(*fact.Age),
		"gender":  *fact.Gender,
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, mergeFactCypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("upsert graph fact: %w", err)
	}

	return nil
}

func (s *Neo4jStore) Counts(ctx context.Context) (domain.GraphCounts, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func() { _ = session.Close(ctx) }()

	counts, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, countGraphCypher, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}

		var c domain.GraphCounts
		for key, dst := range map[string]*int64{
			"descriptions": &c.Descriptions,
			"persons":      &c.Persons,
			"edges":        &c.Edges,
		} {
			v, _, err := neo4j.GetRecordValue[int64](record, key)
			if err != nil {
				return nil, err
			}
			*dst = v
		}
		return c, nil
	})
	if err != nil {
		return domain.GraphCounts{}, fmt.Errorf("count graph: %w", err)
	}

	return counts.(domain.GraphCounts), nil
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

var _ Store = (*Neo4jStore)(nil)
