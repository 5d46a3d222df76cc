package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"

	"github.com/roach88/precario/internal/catalog"
)

var (
	productsBucket = []byte("products")
	queuesBucket   = []byte("queues")
)

// BoltStore is the document backend: one bolt bucket per collection, JSON
// documents keyed by id.
type BoltStore struct {
	db *bolt.DB
}

var (
	_ catalog.ProductRepository = (*BoltStore)(nil)
	_ catalog.QueueRepository   = (*BoltStore)(nil)
)

// OpenBolt creates or opens a bolt database at path and ensures both buckets
// exist. A second process holding the file makes this fail after one second.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{productsBucket, queuesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListProducts returns every product ordered by description, then id.
func (s *BoltStore) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	products := []catalog.Product{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(productsBucket).ForEach(func(_, v []byte) error {
			p, err := catalog.DecodeProduct(v)
			if err != nil {
				return err
			}
			products = append(products, p)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	sort.Slice(products, func(i, j int) bool {
		if c := bytes.Compare([]byte(products[i].Description), []byte(products[j].Description)); c != 0 {
			return c < 0
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

// GetProduct returns one product or catalog.ErrNotFound.
func (s *BoltStore) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(productsBucket).Get([]byte(id))
		if v == nil {
			return catalog.ErrNotFound
		}
		var err error
		p, err = catalog.DecodeProduct(v)
		return err
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// CreateProduct stores p under a new key.
func (s *BoltStore) CreateProduct(ctx context.Context, p catalog.Product) error {
	return s.put(productsBucket, p.ID, p.Document(), false)
}

// UpdateProduct replaces an existing product document.
func (s *BoltStore) UpdateProduct(ctx context.Context, p catalog.Product) error {
	return s.put(productsBucket, p.ID, p.Document(), true)
}

// SetProductPrint rewrites the stored document with only the print flag
// changed.
func (s *BoltStore) SetProductPrint(ctx context.Context, id string, print bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return catalog.ErrNotFound
		}
		p, err := catalog.DecodeProduct(v)
		if err != nil {
			return err
		}
		p.Print = print
		data, err := json.Marshal(p.Document())
		if err != nil {
			return fmt.Errorf("encode product: %w", err)
		}
		return b.Put([]byte(id), data)
	})
}

// DeleteProduct removes a product.
func (s *BoltStore) DeleteProduct(ctx context.Context, id string) error {
	return s.delete(productsBucket, id)
}

// ListQueues returns every queue ordered by name, then id.
func (s *BoltStore) ListQueues(ctx context.Context) ([]catalog.Queue, error) {
	queues := []catalog.Queue{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(queuesBucket).ForEach(func(_, v []byte) error {
			q, err := catalog.DecodeQueue(v)
			if err != nil {
				return err
			}
			queues = append(queues, q)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	sort.Slice(queues, func(i, j int) bool {
		if c := bytes.Compare([]byte(queues[i].Name), []byte(queues[j].Name)); c != 0 {
			return c < 0
		}
		return queues[i].ID < queues[j].ID
	})
	return queues, nil
}

// GetQueue returns one queue or catalog.ErrNotFound.
func (s *BoltStore) GetQueue(ctx context.Context, id string) (catalog.Queue, error) {
	var q catalog.Queue
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(queuesBucket).Get([]byte(id))
		if v == nil {
			return catalog.ErrNotFound
		}
		var err error
		q, err = catalog.DecodeQueue(v)
		return err
	})
	if err != nil {
		return catalog.Queue{}, err
	}
	return q, nil
}

// CreateQueue stores q under a new key.
func (s *BoltStore) CreateQueue(ctx context.Context, q catalog.Queue) error {
	return s.put(queuesBucket, q.ID, q.Document(), false)
}

// UpdateQueue replaces an existing queue document.
func (s *BoltStore) UpdateQueue(ctx context.Context, q catalog.Queue) error {
	return s.put(queuesBucket, q.ID, q.Document(), true)
}

// DeleteQueue removes a queue.
func (s *BoltStore) DeleteQueue(ctx context.Context, id string) error {
	return s.delete(queuesBucket, id)
}

// put writes doc under id. With mustExist the key has to be present
// (update); otherwise it has to be absent (create).
func (s *BoltStore) put(bucket []byte, id string, doc any, mustExist bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		exists := b.Get([]byte(id)) != nil
		switch {
		case mustExist && !exists:
			return catalog.ErrNotFound
		case !mustExist && exists:
			return fmt.Errorf("write %s %s: %w", bucket, id, catalog.ErrAlreadyExists)
		}
		return b.Put([]byte(id), data)
	})
}

func (s *BoltStore) delete(bucket []byte, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b.Get([]byte(id)) == nil {
			return catalog.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
