package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/erazemk/najdeno/internal/model"
)

var errUnavailable = errors.New("store unavailable")

// fakeStore is an in-memory Store with per-collection failure injection.
type fakeStore struct {
	mu         sync.Mutex
	records    map[string][]model.Record
	failSelect map[string]bool
	failInsert bool
	queries    []model.Query
	inserts    []insertCall
}

type insertCall struct {
	collection string
	record     model.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:    map[string][]model.Record{},
		failSelect: map[string]bool{},
	}
}

func (f *fakeStore) Select(_ context.Context, q model.Query) ([]model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.failSelect[q.Collection] {
		return nil, errUnavailable
	}
	return append([]model.Record(nil), f.records[q.Collection]...), nil
}

func (f *fakeStore) Insert(_ context.Context, collection string, rec model.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insertCall{collection: collection, record: rec})
	if f.failInsert {
		return errUnavailable
	}
	// Newest first, as the store orders by created_at descending.
	f.records[collection] = append([]model.Record{rec}, f.records[collection]...)
	return nil
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) Refresh(context.Context) {
	r.calls++
}

func strPtr(s string) *string {
	return &s
}
