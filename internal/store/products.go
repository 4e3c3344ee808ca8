package store

import (
	"database/sql"
	"errors"
	"fmt"

	"restock/internal/model"
)

const productColumns = `id, reference, name, destination_code, stock_unit, is_hidden, category_id, unit_conversion`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p          model.Product
		categoryID sql.NullInt64
		conversion sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Reference, &p.Name, &p.DestinationCode, &p.StockUnit, &p.IsHidden, &categoryID, &conversion); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	if conversion.Valid && conversion.String != "" {
		uc := &model.UnitConversion{}
		if err := uc.Scan(conversion.String); err != nil {
			return nil, fmt.Errorf("failed to decode unit conversion of %s: %w", p.Reference, err)
		}
		p.UnitConversion = uc
	}
	return &p, nil
}

// ListProducts returns products ordered by name. Hidden products are left out
// unless includeHidden is set.
func (s *Store) ListProducts(includeHidden bool) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeHidden {
		query += ` WHERE is_hidden = ?`
	}
	query += ` ORDER BY name, reference`

	var args []interface{}
	if !includeHidden {
		args = append(args, false)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns one product by id.
func (s *Store) GetProduct(id int64) (*model.Product, error) {
	p, err := scanProduct(s.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

// GetProductByReference returns one product by its supplier reference.
func (s *Store) GetProductByReference(reference string) (*model.Product, error) {
	p, err := scanProduct(s.QueryRow(`SELECT `+productColumns+` FROM products WHERE reference = ?`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %q: %w", reference, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %q: %w", reference, err)
	}
	return p, nil
}

// CountProducts returns the number of products, hidden ones included.
func (s *Store) CountProducts() (int, error) {
	var n int
	if err := s.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// UpsertProducts inserts products or refreshes the imported fields of
// existing ones, keyed by reference. Visibility, category and conversion of
// existing products are left untouched.
func (s *Store) UpsertProducts(products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := `INSERT INTO products (reference, name, destination_code, stock_unit, is_hidden)
		VALUES (?, ?, ?, ?, ?)` +
		s.dialect.Upsert([]string{"reference"}, []string{"name", "destination_code", "stock_unit"})

	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(s.dialect.Rebind(query))
		if err != nil {
			return fmt.Errorf("failed to prepare product upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range products {
			if _, err := stmt.Exec(p.Reference, p.Name, p.DestinationCode, p.StockUnit, false); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.Reference, err)
			}
		}
		return nil
	})
}

// UpdateProduct rewrites the editable fields of a product.
func (s *Store) UpdateProduct(p *model.Product) error {
	res, err := s.db.Exec(s.dialect.Rebind(`
		UPDATE products SET name = ?, destination_code = ?, stock_unit = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), p.Name, p.DestinationCode, p.StockUnit, nullableID(p.CategoryID), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return expectAffected(res, "product", p.ID)
}

// SetProductHidden hides or shows a product.
func (s *Store) SetProductHidden(id int64, hidden bool) error {
	res, err := s.db.Exec(s.dialect.Rebind(`
		UPDATE products SET is_hidden = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`), hidden, id)
	if err != nil {
		return fmt.Errorf("failed to set visibility of product %d: %w", id, err)
	}
	return expectAffected(res, "product", id)
}

// SetUnitConversion stores the conversion of a product; nil clears it.
func (s *Store) SetUnitConversion(id int64, uc *model.UnitConversion) error {
	res, err := s.db.Exec(s.dialect.Rebind(`
		UPDATE products SET unit_conversion = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`), uc, id)
	if err != nil {
		return fmt.Errorf("failed to set unit conversion of product %d: %w", id, err)
	}
	return expectAffected(res, "product", id)
}

// DeleteProduct removes a product. Quantities recorded against it in orders
// are kept and simply no longer displayed.
func (s *Store) DeleteProduct(id int64) error {
	res, err := s.db.Exec(s.dialect.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return expectAffected(res, "product", id)
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// expectAffected turns an UPDATE or DELETE that matched nothing into
// model.ErrNotFound.
func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, model.ErrNotFound)
	}
	return nil
}
