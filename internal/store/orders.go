package store

import (
	"database/sql"
	"errors"
	"fmt"

	"restock/internal/model"
)

const orderColumns = `id, week_data_id, order_number, delivery_date, real_stock, ordered_quantities, needs`

func scanOrder(row rowScanner) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.WeekDataID, &o.OrderNumber, &o.DeliveryDate, &o.RealStock, &o.OrderedQuantities, &o.Needs); err != nil {
		return nil, err
	}
	if o.RealStock == nil {
		o.RealStock = model.ProductQuantities{}
	}
	if o.OrderedQuantities == nil {
		o.OrderedQuantities = model.ProductQuantities{}
	}
	if o.Needs == nil {
		o.Needs = model.ProductQuantities{}
	}
	return &o, nil
}

func (s *Store) listOrders(query string, args ...interface{}) ([]*model.Order, error) {
	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrders returns the orders of a week ordered by order number.
func (s *Store) ListOrders(weekDataID int64) ([]*model.Order, error) {
	return s.listOrders(`SELECT `+orderColumns+` FROM orders WHERE week_data_id = ? ORDER BY order_number`, weekDataID)
}

// ListAllOrders returns every stored order.
func (s *Store) ListAllOrders() ([]*model.Order, error) {
	return s.listOrders(`SELECT ` + orderColumns + ` FROM orders ORDER BY week_data_id, order_number`)
}

func (s *Store) getOrder(q queryer, id int64, lock bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if lock {
		query += s.dialect.ForUpdate()
	}
	o, err := scanOrder(q.QueryRow(s.dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return o, nil
}

// GetOrder returns one order by id.
func (s *Store) GetOrder(id int64) (*model.Order, error) {
	return s.getOrder(s.db, id, false)
}

// CreateInitialOrders creates one order per delivery date, numbered from 1.
// Existing orders only get their delivery date refreshed; recorded stock and
// quantities are kept.
func (s *Store) CreateInitialOrders(weekDataID int64, deliveryDates []string) error {
	query := `INSERT INTO orders (week_data_id, order_number, delivery_date, real_stock, ordered_quantities, needs)
		VALUES (?, ?, ?, ?, ?, ?)` +
		s.dialect.Upsert([]string{"week_data_id", "order_number"}, []string{"delivery_date"})

	return s.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(s.dialect.Rebind(query))
		if err != nil {
			return fmt.Errorf("failed to prepare order upsert: %w", err)
		}
		defer stmt.Close()

		empty := model.ProductQuantities{}
		for i, date := range deliveryDates {
			if _, err := stmt.Exec(weekDataID, i+1, date, empty, empty, empty); err != nil {
				return fmt.Errorf("failed to create order %d of week %d: %w", i+1, weekDataID, err)
			}
		}
		return nil
	})
}

// updateQuantities applies fn to the order inside a transaction and writes
// the column back.
func (s *Store) updateQuantities(orderID int64, column string, fn func(o *model.Order) model.ProductQuantities) (*model.Order, error) {
	var updated *model.Order
	err := s.inTx(func(tx *sql.Tx) error {
		o, err := s.getOrder(tx, orderID, true)
		if err != nil {
			return err
		}
		q := fn(o)
		if _, err := tx.Exec(s.dialect.Rebind(`UPDATE orders SET `+column+` = ? WHERE id = ?`), q, orderID); err != nil {
			return fmt.Errorf("failed to update %s of order %d: %w", column, orderID, err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetRealStock records the counted stock of a product, in stock units.
func (s *Store) SetRealStock(orderID, productID int64, units float64) (*model.Order, error) {
	return s.updateQuantities(orderID, "real_stock", func(o *model.Order) model.ProductQuantities {
		o.RealStock = o.RealStock.With(productID, units)
		return o.RealStock
	})
}

// SetOrderedQuantity records the ordered quantity of a product, in packages.
func (s *Store) SetOrderedQuantity(orderID, productID int64, packages float64) (*model.Order, error) {
	return s.updateQuantities(orderID, "ordered_quantities", func(o *model.Order) model.ProductQuantities {
		o.OrderedQuantities = o.OrderedQuantities.With(productID, packages)
		return o.OrderedQuantities
	})
}

// SaveOrderNeeds replaces the last computed needs of an order.
func (s *Store) SaveOrderNeeds(orderID int64, needs model.ProductQuantities) error {
	res, err := s.db.Exec(s.dialect.Rebind(`UPDATE orders SET needs = ? WHERE id = ?`), needs, orderID)
	if err != nil {
		return fmt.Errorf("failed to save needs of order %d: %w", orderID, err)
	}
	return expectAffected(res, "order", orderID)
}
