package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/precario/internal/catalog"
)

const productColumns = `id, category, unit, price, description, tax_status, print, label_size`

// ListProducts returns every product ordered by description, then id.
// Returns an empty slice (not nil) when the collection is empty.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY description COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetProduct returns one product or catalog.ErrNotFound.
func (s *Store) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// CreateProduct inserts p. Fails with catalog.ErrAlreadyExists when the id is
// taken.
func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		string(p.Category),
		string(p.Unit),
		p.Price,
		p.Description,
		p.TaxStatus,
		p.Print,
		string(p.LabelSize),
	)
	if isConstraintError(err) {
		return fmt.Errorf("write product %s: %w", p.ID, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("write product: %w", err)
	}
	return nil
}

// UpdateProduct replaces every field of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET category = ?, unit = ?, price = ?, description = ?, tax_status = ?, print = ?, label_size = ?
		WHERE id = ?
	`,
		string(p.Category),
		string(p.Unit),
		p.Price,
		p.Description,
		p.TaxStatus,
		p.Print,
		string(p.LabelSize),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

// SetProductPrint updates only the print flag.
func (s *Store) SetProductPrint(ctx context.Context, id string, print bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET print = ? WHERE id = ?`, print, id)
	if err != nil {
		return fmt.Errorf("set product print: %w", err)
	}
	return requireAffected(res)
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct reads a row through the catalog document decoder so stray
// values (an unknown category written by hand, say) get the usual defaults.
func scanProduct(row rowScanner) (catalog.Product, error) {
	var (
		doc       catalog.ProductDocument
		print     bool
		labelSize string
	)
	err := row.Scan(
		&doc.ID,
		&doc.Category,
		&doc.Unit,
		&doc.Price,
		&doc.Description,
		&doc.TaxStatus,
		&print,
		&labelSize,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, err
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}
	doc.Print = &print
	doc.LabelSize = &labelSize
	return catalog.FromDocument(doc), nil
}

// requireAffected maps "no row matched" to catalog.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
