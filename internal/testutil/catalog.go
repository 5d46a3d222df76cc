package testutil

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/roach88/precario/internal/catalog"
	"github.com/roach88/precario/internal/store"
)

// NewStore opens a SQLite store in a temp dir, closed on test cleanup.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewService wires a catalog.Service over a fresh SQLite store with a test
// logger. With ids the service hands them out in order; without, it uses a
// real MillisGenerator.
func NewService(t testing.TB, ids ...string) *catalog.Service {
	t.Helper()
	s := NewStore(t)

	var gen catalog.IDGenerator = catalog.NewMillisGenerator()
	if len(ids) > 0 {
		gen = catalog.NewFixedGenerator(ids...)
	}
	return catalog.NewService(s, s, gen, zaptest.NewLogger(t))
}

// ProductInput returns a valid input with the given description and price.
func ProductInput(description, price string) catalog.ProductInput {
	in := catalog.DefaultProductInput()
	in.Description = description
	in.Price = price
	return in
}

// QueueInput returns a valid input with the given name.
func QueueInput(name string) catalog.QueueInput {
	in := catalog.DefaultQueueInput()
	in.Name = name
	return in
}
