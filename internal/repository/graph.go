package repository

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// upsertGraphFactQuery merges both nodes and the edge in one statement.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
const upsertGraphFactQuery = `
	WITH d AS (
		INSERT INTO descriptions (text)
		VALUES ($1)
		ON CONFLICT (text) DO UPDATE SET text = EXCLUDED.text
		RETURNING id
	), p AS (
		INSERT INTO persons (age, gender)
		VALUES ($2, $3)
		ON CONFLICT (age, gender) DO UPDATE SET age = EXCLUDED.age
		RETURNING id
	)
	INSERT INTO describes (description_id, person_id)
	SELECT d.id, p.id FROM d, p
	ON CONFLICT (description_id, person_id) DO NOTHING
`

const graphCountsQuery = `
	SELECT
		(SELECT COUNT(*) FROM descriptions),
		(SELECT COUNT(*) FROM persons),
		(SELECT COUNT(*) FROM describes)
`

// GraphRepository stores Description -DESCRIBES-> Person facts in Postgres
type GraphRepository struct {
	pool PgxPool
}

func NewGraphRepository(pool PgxPool) *GraphRepository {
	return &GraphRepository{pool: pool}
}

// Upsert merges the fact by value; repeating it changes nothing
func (r *GraphRepository) Upsert(ctx context.Context, fact domain.GraphFact) error {
	_, err := r.pool.Exec(ctx, upsertGraphFactQuery, fact.Caption, nullableInt(fact.Age), nullableString(fact.Gender))
	if err != nil {
		return fmt.Errorf("upsert graph fact: %w", err)
	}
	return nil
}

func (r *GraphRepository) Counts(ctx context.Context) (domain.GraphCounts, error) {
	var counts domain.GraphCounts
	err := r.pool.QueryRow(ctx, graphCountsQuery).Scan(
		&counts.Descriptions,
		&counts.Persons,
		&counts.Edges,
	)
	if err != nil {
		return domain.GraphCounts{}, fmt.Errorf("count graph: %w", err)
	}
	return counts, nil
}

func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ GraphRepositoryInterface = (*GraphRepository)(nil)
