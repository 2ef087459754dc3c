package pgstore

import "github.com/AntonStoeckl/snapshot-testing-go/snapshot/pgstore/internal/adapters"

// NewStoreFromAdapter exposes the adapter seam to tests.
func NewStoreFromAdapter(db adapters.DBAdapter, options ...Option) (Store, error) {
	return newStore(db, options...)
}
