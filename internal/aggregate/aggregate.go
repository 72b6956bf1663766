// Package aggregate implements C8, the Aggregator (§4.8): a thin
// orchestration point the Orchestrator calls between LOAD and RECONCILE.
// The actual SQL lives in internal/store, computed in-store so joined data
// never has to cross into the process (§4.8).
package aggregate

import (
	"context"

	"github.com/farxc/projetus/internal/store"
	"github.com/jmoiron/sqlx"
)

// Run recomputes every Proponent aggregate after C7's base upserts, before
// commit, per §4.8's ordering.
func Run(ctx context.Context, tx *sqlx.Tx, storage *store.Storage) error {
	return storage.Proponents.RecomputeAggregates(ctx, tx)
}
