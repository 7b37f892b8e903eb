package refstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/entolab/isympred/internal/db"
	"github.com/entolab/isympred/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: postgres parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: postgres create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "refstore: postgres ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ref_records (
	id             BIGSERIAL PRIMARY KEY,
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

// refColumns is the column order used for COPY loads.
var refColumns = []string{
	"taxonomy", "function", "host", "host_order", "host_family",
	"record_type", "genome_id", "journal", "description", "citation",
	"evidence_level",
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "refstore: postgres migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "refstore: postgres ping")
}

// Load returns every record ordered by insertion id.
func (s *PostgresStore) Load(ctx context.Context) ([]*model.ReferenceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT taxonomy, function, host, host_order, host_family, record_type,
		        genome_id, journal, description, citation, evidence_level
		 FROM ref_records ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "refstore: postgres load")
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
			return nil, eris.Wrap(err, "refstore: postgres scan record")
		}
		rec.RecordType = model.RecordType(recordType)
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "refstore: postgres load iterate")
}

// Replace truncates the table and reloads it with COPY inside one
// transaction.
func (s *PostgresStore) Replace(ctx context.Context, records []*model.ReferenceRecord) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "refstore: postgres begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ref_records`); err != nil {
		return 0, eris.Wrap(err, "refstore: postgres clear records")
	}

	copyRows := make([][]any, 0, len(records))
	for _, rec := range records {
		copyRows = append(copyRows, []any{
			rec.TaxonLabel, rec.Function, rec.Host, rec.HostOrder,
			rec.HostFamily, string(rec.RecordType), rec.GenomeID, rec.Journal,
			rec.Description, rec.Citation, rec.EvidenceLevel,
		})
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"ref_records"}, refColumns, pgx.CopyFromRows(copyRows))
	if err != nil {
		return 0, eris.Wrap(err, "refstore: postgres copy records")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "refstore: postgres commit")
	}
	return int(n), nil
}
