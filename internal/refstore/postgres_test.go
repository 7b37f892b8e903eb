package refstore

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entolab/isympred/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Load(t *testing.T) {
	var _ Store = &PostgresStore{}

	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"taxonomy", "function", "host", "host_order", "host_family",
		"record_type", "genome_id", "journal", "description", "citation",
		"evidence_level",
	}).AddRow(
		"d__Bacteria; g__Buchnera; s__Buchnera aphidicola", "Nutrition provisioning",
		"Acyrthosiphon pisum", "Hemiptera", "Aphididae", "Symbiont",
		"GCF_000009605.1", "Nature", "", "10.1000/x1", 5,
	).AddRow(
		"d__Bacteria; g__Wolbachia; s__*", "Reproductive manipulation",
		"General", "", "", "Symbiont", "", "", "", "", 3,
	)

	mock.ExpectQuery(`SELECT taxonomy, function, host`).WillReturnRows(rows)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.RecordTypeSymbiont, records[0].RecordType)
	assert.Equal(t, 5, records[0].EvidenceLevel)
	assert.Equal(t, model.GeneralHost, records[1].Host)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadEmpty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT taxonomy, function, host`).
		WillReturnRows(pgxmock.NewRows([]string{
			"taxonomy", "function", "host", "host_order", "host_family",
			"record_type", "genome_id", "journal", "description", "citation",
			"evidence_level",
		}))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Replace(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM ref_records`).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"ref_records"}, refColumns).
		WillReturnResult(1)
	mock.ExpectCommit()

	n, err := s.Replace(context.Background(), []*model.ReferenceRecord{
		{
			TaxonLabel: "g__Wolbachia; s__*",
			Function:   "Defense",
			Host:       model.GeneralHost,
			RecordType: model.RecordTypeSymbiont,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS ref_records`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
