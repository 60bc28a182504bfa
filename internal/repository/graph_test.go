package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const upsertPattern = `WITH d AS \(\s*INSERT INTO descriptions`

func ptrInt(v int) *int {
	return &v
}

func ptrString(v string) *string {
	return &v
}

func TestGraphRepository_Upsert(t *testing.T) {
	dbErr := errors.New("connection refused")

	tests := []struct {
		name      string
		fact      domain.GraphFact
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "face found",
			fact: domain.GraphFact{Caption: domain.CaptionPerson, Age: ptrInt(31), Gender: ptrString("Woman")},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(upsertPattern).
					WithArgs(domain.CaptionPerson, 31, "Woman").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "no face stores nulls",
			fact: domain.GraphFact{Caption: domain.CaptionPhoto},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(upsertPattern).
					WithArgs(domain.CaptionPhoto, nil, nil).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "existing edge inserts nothing",
			fact: domain.GraphFact{Caption: domain.CaptionPerformance, Age: ptrInt(40), Gender: ptrString("Man")},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(upsertPattern).
					WithArgs(domain.CaptionPerformance, 40, "Man").
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
		},
		{
			name: "database error",
			fact: domain.GraphFact{Caption: domain.CaptionPhoto},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(upsertPattern).
					WithArgs(domain.CaptionPhoto, nil, nil).
					WillReturnError(dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewGraphRepository(mock)
			err = repo.Upsert(context.Background(), tt.fact)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGraphRepository_Counts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"descriptions", "persons", "describes"}).
		AddRow(int64(3), int64(5), int64(7))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM descriptions`).WillReturnRows(rows)

	counts, err := NewGraphRepository(mock).Counts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.GraphCounts{Descriptions: 3, Persons: 5, Edges: 7}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_Counts_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM describes`).WillReturnError(errors.New("relation does not exist"))

	_, err = NewGraphRepository(mock).Counts(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "count graph")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGraphRepository_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()

	assert.NoError(t, NewGraphRepository(mock).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
