// Package hoststore resolves insect host names to their order, family, and
// genus through the host taxonomy database.
package hoststore

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when a host name is absent from the taxonomy store.
var ErrNotFound = eris.New("hoststore: name not found")

// Lineage is the resolved taxonomy of a host name. Unresolved ranks are
// empty strings.
type Lineage struct {
	Order   string `json:"order"`
	Family  string `json:"family"`
	Genus   string `json:"genus"`
	Species string `json:"species"`
}

// Resolver looks up host lineages. Implementations are read-only snapshots
// for the duration of a run.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*Lineage, error)
	Close() error
}
