// Package store persists the catalog collections (products and queues).
//
// Two backends implement catalog.ProductRepository and
// catalog.QueueRepository:
//
//   - sqlite (default): one table per collection, schema versioned with
//     PRAGMA user_version. New fields arrive as "ADD COLUMN ... DEFAULT"
//     migrations so rows written before the field existed read back with
//     its default.
//   - bolt: one bucket per collection holding JSON documents keyed by id.
//     Documents are read with the catalog decoders, which apply the same
//     defaults to missing fields.
//
// # Ordering
//
// Listings are deterministic: products by description, queues by name, then
// id, all compared as raw bytes. Empty collections return empty slices.
//
// # Database Configuration (sqlite)
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - a single open connection (one writer)
package store
