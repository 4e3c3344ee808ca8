package store

import (
	"fmt"
	"sort"
	"sync"

	"restock/internal/model"
)

// MemoryStore keeps weeks, orders and products in memory. It backs the
// planner in tests and in throwaway sessions.
type MemoryStore struct {
	mu sync.RWMutex

	products map[int64]*model.Product
	weeks    map[int64]*model.WeekData
	orders   map[int64]*model.Order

	nextProductID int64
	nextWeekID    int64
	nextOrderID   int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*model.Product),
		weeks:    make(map[int64]*model.WeekData),
		orders:   make(map[int64]*model.Order),
	}
}

// AddProduct stores a copy of p with a fresh id and returns the id.
func (s *MemoryStore) AddProduct(p *model.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	c := *p
	c.ID = s.nextProductID
	s.products[c.ID] = &c
	return c.ID
}

// Count returns the number of products.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// ListProducts returns copies of the products ordered by name.
func (s *MemoryStore) ListProducts(includeHidden bool) ([]*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.IsHidden && !includeHidden {
			continue
		}
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Reference < result[j].Reference
	})
	return result, nil
}

// GetProduct returns a copy of one product.
func (s *MemoryStore) GetProduct(id int64) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, model.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (s *MemoryStore) findWeek(year, week int) *model.WeekData {
	for _, w := range s.weeks {
		if w.Year == year && w.WeekNumber == week {
			return w
		}
	}
	return nil
}

func copyWeek(w *model.WeekData) *model.WeekData {
	return &model.WeekData{
		ID:              w.ID,
		Year:            w.Year,
		WeekNumber:      w.WeekNumber,
		ConsumptionData: model.ConsumptionData{}.Merge(w.ConsumptionData),
		SalesForecast:   model.SalesForecast{}.Merge(w.SalesForecast),
	}
}

// GetWeekData returns a copy of the week's data.
func (s *MemoryStore) GetWeekData(year, week int) (*model.WeekData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.findWeek(year, week)
	if w == nil {
		return nil, fmt.Errorf("week %d-W%02d: %w", year, week, model.ErrNotFound)
	}
	return copyWeek(w), nil
}

func (s *MemoryStore) ensureWeek(year, week int) *model.WeekData {
	if w := s.findWeek(year, week); w != nil {
		return w
	}
	s.nextWeekID++
	w := &model.WeekData{
		ID:              s.nextWeekID,
		Year:            year,
		WeekNumber:      week,
		ConsumptionData: model.ConsumptionData{},
		SalesForecast:   model.SalesForecast{},
	}
	s.weeks[w.ID] = w
	return w
}

// EnsureWeekData returns the week's data, creating it when absent.
func (s *MemoryStore) EnsureWeekData(year, week int) (*model.WeekData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyWeek(s.ensureWeek(year, week)), nil
}

// MergeWeekData merges consumption ratios and forecast entries into the week.
func (s *MemoryStore) MergeWeekData(year, week int, consumption model.ConsumptionData, forecast model.SalesForecast) (*model.WeekData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.ensureWeek(year, week)
	w.ConsumptionData = w.ConsumptionData.Merge(consumption)
	w.SalesForecast = w.SalesForecast.Merge(forecast)
	return copyWeek(w), nil
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	c.RealStock = model.ProductQuantities{}.Merge(o.RealStock)
	c.OrderedQuantities = model.ProductQuantities{}.Merge(o.OrderedQuantities)
	c.Needs = model.ProductQuantities{}.Merge(o.Needs)
	return &c
}

// ListOrders returns copies of the week's orders by order number.
func (s *MemoryStore) ListOrders(weekDataID int64) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Order
	for _, o := range s.orders {
		if o.WeekDataID == weekDataID {
			result = append(result, copyOrder(o))
		}
	}
	model.SortOrders(result)
	return result, nil
}

// CreateInitialOrders creates one order per delivery date, or refreshes the
// delivery date of an existing one.
func (s *MemoryStore) CreateInitialOrders(weekDataID int64, deliveryDates []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.weeks[weekDataID]; !ok {
		return fmt.Errorf("week %d: %w", weekDataID, model.ErrNotFound)
	}

	for i, date := range deliveryDates {
		number := i + 1
		var existing *model.Order
		for _, o := range s.orders {
			if o.WeekDataID == weekDataID && o.OrderNumber == number {
				existing = o
				break
			}
		}
		if existing != nil {
			existing.DeliveryDate = date
			continue
		}

		s.nextOrderID++
		s.orders[s.nextOrderID] = &model.Order{
			ID:                s.nextOrderID,
			WeekDataID:        weekDataID,
			OrderNumber:       number,
			DeliveryDate:      date,
			RealStock:         model.ProductQuantities{},
			OrderedQuantities: model.ProductQuantities{},
			Needs:             model.ProductQuantities{},
		}
	}
	return nil
}

// GetOrder returns a copy of one order.
func (s *MemoryStore) GetOrder(id int64) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, model.ErrNotFound)
	}
	return copyOrder(o), nil
}

// SetRealStock records the counted stock of a product, in stock units.
func (s *MemoryStore) SetRealStock(orderID, productID int64, units float64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, model.ErrNotFound)
	}
	o.RealStock = o.RealStock.With(productID, units)
	return copyOrder(o), nil
}

// SetOrderedQuantity records the ordered quantity of a product, in packages.
func (s *MemoryStore) SetOrderedQuantity(orderID, productID int64, packages float64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, model.ErrNotFound)
	}
	o.OrderedQuantities = o.OrderedQuantities.With(productID, packages)
	return copyOrder(o), nil
}

// SaveOrderNeeds replaces the last computed needs of an order.
func (s *MemoryStore) SaveOrderNeeds(orderID int64, needs model.ProductQuantities) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, model.ErrNotFound)
	}
	o.Needs = model.ProductQuantities{}.Merge(needs)
	return nil
}

// Clear drops everything.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]*model.Product)
	s.weeks = make(map[int64]*model.WeekData)
	s.orders = make(map[int64]*model.Order)
}
