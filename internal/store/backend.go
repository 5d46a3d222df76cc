package store

import (
	"fmt"

	"github.com/roach88/precario/internal/catalog"
)

// Supported backend drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Backend is a catalog store that owns an open database.
type Backend interface {
	catalog.ProductRepository
	catalog.QueueRepository
	Close() error
}

// OpenBackend opens the store selected by driver. An empty driver means
// sqlite.
func OpenBackend(driver, path string) (Backend, error) {
	switch driver {
	case "", DriverSQLite:
		s, err := Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverBolt:
		s, err := OpenBolt(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("open backend: unknown driver %q (want %s or %s)", driver, DriverSQLite, DriverBolt)
	}
}
