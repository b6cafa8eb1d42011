// Package listing implements the lost-and-found board: refreshing the two
// item panes from a record store and submitting new items into it.
package listing

import (
	"context"

	"github.com/erazemk/najdeno/internal/model"
)

// Store is the remote record store both components talk to.
type Store interface {
	// Select returns the records matching q, in the order the store applies.
	Select(ctx context.Context, q model.Query) ([]model.Record, error)
	// Insert creates a single record in the named collection.
	Insert(ctx context.Context, collection string, rec model.Record) error
}
