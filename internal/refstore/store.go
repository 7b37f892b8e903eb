// Package refstore loads and persists the curated symbiont-function
// reference records behind a common interface. Three backends exist: a flat
// TSV file (the distribution format), SQLite for local work, and PostgreSQL
// for shared deployments.
package refstore

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/entolab/isympred/internal/model"
)

// Store is the persistence interface for reference records.
type Store interface {
	// Load returns every record in a stable order.
	Load(ctx context.Context) ([]*model.ReferenceRecord, error)
	// Replace atomically overwrites the store's contents and reports how
	// many records were written.
	Replace(ctx context.Context, records []*model.ReferenceRecord) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns a Store for the given backend. The dsn is a file path for
// "tsv" and "sqlite", a connection string for "postgres".
func Open(ctx context.Context, backend, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "tsv":
		return NewTSV(dsn), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("refstore: unknown backend %q", backend)
	}
}
