package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Pallinder/go-randomdata"

	"github.com/roach88/precario/internal/catalog"
)

// createTestStore opens a fresh SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBolt opens a fresh bolt store in a temp dir.
func createTestBolt(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bolt")
	s, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns every backend, freshly opened, keyed by driver name.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		DriverSQLite: createTestStore(t),
		DriverBolt:   createTestBolt(t),
	}
}

// createTestProduct builds a valid product with random text fields.
func createTestProduct(id, description string) catalog.Product {
	if description == "" {
		description = randomdata.SillyName()
	}
	return catalog.Product{
		ID:          id,
		Category:    catalog.CategoryVaca,
		Unit:        catalog.UnitKG,
		Price:       fmt.Sprintf("%d,%02d", randomdata.Number(1, 99), randomdata.Number(0, 99)),
		Description: description,
		TaxStatus:   randomdata.Boolean(),
		Print:       true,
		LabelSize:   catalog.LabelNormal,
	}
}

// createTestQueue builds a valid queue with defaults and the given name.
func createTestQueue(id, name string) catalog.Queue {
	in := catalog.DefaultQueueInput()
	in.Name = name
	in.Number = randomdata.Number(1, 500)
	return catalog.Queue{ID: id}.WithInput(in)
}
