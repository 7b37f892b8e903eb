package hoststore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteResolver implements Resolver over the insect taxonomy database built
// by "hosts fetch": a single taxonomy(tax_id, parent_id, rank, name) table.
type SQLiteResolver struct {
	db *sql.DB
}

// NewSQLite opens the host taxonomy database at the given path.
func NewSQLite(dsn string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "hoststore: open")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "hoststore: set busy_timeout")
	}
	return &SQLiteResolver{db: db}, nil
}

const taxonomySchema = `
CREATE TABLE IF NOT EXISTS taxonomy (
	tax_id    INTEGER PRIMARY KEY,
	parent_id INTEGER NOT NULL,
	rank      TEXT NOT NULL,
	name      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_taxonomy_name ON taxonomy(name);
`

// Migrate creates the taxonomy table if absent.
func (r *SQLiteResolver) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, taxonomySchema)
	return eris.Wrap(err, "hoststore: migrate")
}

func (r *SQLiteResolver) Close() error {
	return r.db.Close()
}

// InsertNode adds one taxonomy node. Used by the taxdump loader.
func (r *SQLiteResolver) InsertNode(ctx context.Context, taxID, parentID int64, rank, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO taxonomy (tax_id, parent_id, rank, name) VALUES (?, ?, ?, ?)`,
		taxID, parentID, rank, name,
	)
	return eris.Wrapf(err, "hoststore: insert node %d", taxID)
}

// Resolve finds the node named by the host and walks parent links upward,
// collecting the order, family, and genus ranks. Returns ErrNotFound when
// the name is absent.
func (r *SQLiteResolver) Resolve(ctx context.Context, name string) (*Lineage, error) {
	var taxID, parentID int64
	var rank, nodeName string

	err := r.db.QueryRowContext(ctx,
		`SELECT tax_id, parent_id, rank, name FROM taxonomy WHERE name = ?`, name,
	).Scan(&taxID, &parentID, &rank, &nodeName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "hoststore: lookup %q", name)
	}

	lineage := &Lineage{Species: name}
	visited := make(map[int64]bool)

	for taxID != 0 && !visited[taxID] {
		visited[taxID] = true

		switch rank {
		case "order":
			lineage.Order = nodeName
		case "family":
			lineage.Family = nodeName
		case "genus":
			lineage.Genus = nodeName
		}

		err := r.db.QueryRowContext(ctx,
			`SELECT tax_id, parent_id, rank, name FROM taxonomy WHERE tax_id = ?`, parentID,
		).Scan(&taxID, &parentID, &rank, &nodeName)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "hoststore: walk parent %d", parentID)
		}
	}

	return lineage, nil
}
