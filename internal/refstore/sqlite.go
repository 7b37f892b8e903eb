package refstore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/entolab/isympred/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "refstore: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ref_records (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	taxonomy       TEXT NOT NULL,
	function       TEXT NOT NULL,
	host           TEXT NOT NULL,
	host_order     TEXT NOT NULL DEFAULT '',
	host_family    TEXT NOT NULL DEFAULT '',
	record_type    TEXT NOT NULL DEFAULT 'Symbiont',
	genome_id      TEXT NOT NULL DEFAULT '',
	journal        TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	citation       TEXT NOT NULL DEFAULT '',
	evidence_level INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ref_records_function ON ref_records(function);
CREATE INDEX IF NOT EXISTS idx_ref_records_taxonomy ON ref_records(taxonomy);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "refstore: sqlite migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every record ordered by insertion id, so repeated loads see
// the same sequence.
func (s *SQLiteStore) Load(ctx context.Context) ([]*model.ReferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT taxonomy, function, host, host_order, host_family, record_type,
		        genome_id, journal, description, citation, evidence_level
		 FROM ref_records ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: sqlite load")
	}
	defer rows.Close()

	var records []*model.ReferenceRecord
	for rows.Next() {
		var rec model.ReferenceRecord
		var recordType string
		if err := rows.Scan(
			&rec.TaxonLabel, &rec.Function, &rec.Host, &rec.HostOrder,
			&rec.HostFamily, &recordType, &rec.GenomeID, &rec.Journal,
			&rec.Description, &rec.Citation, &rec.EvidenceLevel,
		); err != nil {
			return nil, eris.Wrap(err, "refstore: sqlite scan record")
		}
		rec.RecordType = model.RecordType(recordType)
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "refstore: sqlite load iterate")
}

// Replace swaps the table contents inside a single transaction.
func (s *SQLiteStore) Replace(ctx context.Context, records []*model.ReferenceRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "refstore: sqlite begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ref_records`); err != nil {
		return 0, eris.Wrap(err, "refstore: sqlite clear records")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ref_records
		 (taxonomy, function, host, host_order, host_family, record_type,
		  genome_id, journal, description, citation, evidence_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "refstore: sqlite prepare insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.TaxonLabel, rec.Function, rec.Host, rec.HostOrder,
			rec.HostFamily, string(rec.RecordType), rec.GenomeID, rec.Journal,
			rec.Description, rec.Citation, rec.EvidenceLevel,
		); err != nil {
			return 0, eris.Wrapf(err, "refstore: sqlite insert record %s", rec.TaxonLabel)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "refstore: sqlite commit")
	}
	return len(records), nil
}
