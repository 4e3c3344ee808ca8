package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"restock/internal/model"
)

// ErrDuplicate is returned when a unique name is already taken.
var ErrDuplicate = errors.New("already exists")

// ListCategories returns categories ordered by name.
func (s *Store) ListCategories() ([]*model.Category, error) {
	rows, err := s.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// GetCategory returns one category by id.
func (s *Store) GetCategory(id int64) (*model.Category, error) {
	var c model.Category
	err := s.QueryRow(`SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

// CreateCategory inserts a category.
func (s *Store) CreateCategory(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	id, err := s.insert(s.db, `INSERT INTO categories (name) VALUES (?)`, name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("category %q: %w", name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &model.Category{ID: id, Name: name}, nil
}

// RenameCategory changes the name of a category.
func (s *Store) RenameCategory(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name is required")
	}

	res, err := s.db.Exec(s.dialect.Rebind(`UPDATE categories SET name = ? WHERE id = ?`), name, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to rename category %d: %w", id, err)
	}
	return expectAffected(res, "category", id)
}

// DeleteCategory removes a category and detaches its products.
func (s *Store) DeleteCategory(id int64) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(s.dialect.Rebind(`UPDATE products SET category_id = NULL WHERE category_id = ?`), id); err != nil {
			return fmt.Errorf("failed to detach products from category %d: %w", id, err)
		}
		res, err := tx.Exec(s.dialect.Rebind(`DELETE FROM categories WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		return expectAffected(res, "category", id)
	})
}
