package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "ref_records", []string{"taxonomy", "function"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ref_records"}, []string{"taxonomy", "function"}).WillReturnResult(3)

	rows := [][]any{
		{"g__Buchnera; s__Buchnera aphidicola", "Nutrition provisioning"},
		{"g__Wolbachia; s__*", "Reproductive manipulation"},
		{"g__Sodalis; s__*", "Nutrition provisioning"},
	}
	n, err := CopyFrom(context.Background(), mock, "ref_records", []string{"taxonomy", "function"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ref", "records"}, []string{"taxonomy"}).WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "ref.records", []string{"taxonomy"}, [][]any{{"g__Wolbachia"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ref_records"}, []string{"taxonomy"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "ref_records", []string{"taxonomy"}, [][]any{{"g__Wolbachia"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO ref_records")
	assert.NoError(t, mock.ExpectationsWereMet())
}
