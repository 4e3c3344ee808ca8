// Package planner sequences reads and writes around the needs engine: it
// resolves a week and its orders from a Repository, runs the engine for
// every product and records staff input.
package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"restock/internal/logger"
	"restock/internal/model"
	"restock/internal/service/calculator"
	"restock/internal/service/calendar"
)

// ErrInvalidInput marks a request that can never succeed as given.
var ErrInvalidInput = errors.New("invalid input")

// Repository is the persistence the planner needs. *store.Store and the
// in-memory store both implement it.
type Repository interface {
	GetWeekData(year, week int) (*model.WeekData, error)
	EnsureWeekData(year, week int) (*model.WeekData, error)
	MergeWeekData(year, week int, consumption model.ConsumptionData, forecast model.SalesForecast) (*model.WeekData, error)

	ListOrders(weekDataID int64) ([]*model.Order, error)
	CreateInitialOrders(weekDataID int64, deliveryDates []string) error
	GetOrder(id int64) (*model.Order, error)
	SetRealStock(orderID, productID int64, units float64) (*model.Order, error)
	SetOrderedQuantity(orderID, productID int64, packages float64) (*model.Order, error)
	SaveOrderNeeds(orderID int64, needs model.ProductQuantities) error

	ListProducts(includeHidden bool) ([]*model.Product, error)
	GetProduct(id int64) (*model.Product, error)
}

// Planner computes and records order plans.
type Planner struct {
	repo Repository
	log  *logger.Logger
}

// New creates a Planner.
func New(repo Repository, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.Discard()
	}
	return &Planner{repo: repo, log: log.WithComponent("planner")}
}

// Week is a week's data with its orders and calendar.
type Week struct {
	Week          *model.WeekData     `json:"week"`
	Orders        []*model.Order      `json:"orders"`
	Dates         []calendar.WeekDate `json:"dates"`
	DeliveryDates []string            `json:"deliveryDates"`
}

func checkWeek(year, week int) error {
	if !calendar.ValidWeek(year, week) {
		return fmt.Errorf("%w: week %d-W%02d does not exist", ErrInvalidInput, year, week)
	}
	return nil
}

func checkQuantity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: quantity must be a finite number", ErrInvalidInput)
	}
	return nil
}

// OpenWeek returns the week, creating its data row and its three orders the
// first time it is opened. Orders are sorted by order number.
func (p *Planner) OpenWeek(year, week int) (*Week, error) {
	if err := checkWeek(year, week); err != nil {
		return nil, err
	}

	w, err := p.repo.EnsureWeekData(year, week)
	if err != nil {
		return nil, err
	}

	orders, err := p.repo.ListOrders(w.ID)
	if err != nil {
		return nil, err
	}

	deliveries := calendar.DeliveryDatesFor(year, week)
	if len(orders) == 0 {
		if err := p.repo.CreateInitialOrders(w.ID, deliveries); err != nil {
			return nil, err
		}
		p.log.Info("created initial orders", "year", year, "week", week, "deliveries", deliveries)

		orders, err = p.repo.ListOrders(w.ID)
		if err != nil {
			return nil, err
		}
	}
	model.SortOrders(orders)

	return &Week{
		Week:          w,
		Orders:        orders,
		Dates:         calendar.DatesOfWeek(year, week),
		DeliveryDates: deliveries,
	}, nil
}

// PreviousWeekOrders returns the orders of the ISO week before (year, week).
// A missing week yields no orders; other errors are logged and also yield
// none, so a broken history never blocks the current week.
func (p *Planner) PreviousWeekOrders(year, week int) []*model.Order {
	py, pw := calendar.PreviousWeek(year, week)

	w, err := p.repo.GetWeekData(py, pw)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			p.log.Warn("failed to load previous week", "year", py, "week", pw, "error", err)
		}
		return nil
	}

	orders, err := p.repo.ListOrders(w.ID)
	if err != nil {
		p.log.Warn("failed to load previous week orders", "year", py, "week", pw, "error", err)
		return nil
	}
	return orders
}

// SetSalesForecast records the forecast revenue of one day.
func (p *Planner) SetSalesForecast(year, week int, date string, value float64) (*model.WeekData, error) {
	if err := checkWeek(year, week); err != nil {
		return nil, err
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, date)
	}
	if err := checkQuantity(value); err != nil {
		return nil, err
	}

	w, err := p.repo.MergeWeekData(year, week, nil, model.SalesForecast{date: value})
	if err != nil {
		return nil, err
	}
	p.log.Debug("sales forecast updated", "year", year, "week", week, "date", date, "value", value)
	return w, nil
}

// UpdateRealStock records the counted stock of a product. Staff count in
// packages; the order keeps stock units.
func (p *Planner) UpdateRealStock(orderID, productID int64, packages float64) (*model.Order, error) {
	if err := checkQuantity(packages); err != nil {
		return nil, err
	}
	product, err := p.repo.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	units := calculator.ToUnits(packages, product)
	o, err := p.repo.SetRealStock(orderID, productID, units)
	if err != nil {
		return nil, err
	}
	p.log.Debug("real stock updated", "order_id", orderID, "product_id", productID, "packages", packages, "units", units)
	return o, nil
}

// UpdateOrderedQuantity records the quantity ordered for a product, in
// packages.
func (p *Planner) UpdateOrderedQuantity(orderID, productID int64, packages float64) (*model.Order, error) {
	if err := checkQuantity(packages); err != nil {
		return nil, err
	}
	if _, err := p.repo.GetProduct(productID); err != nil {
		return nil, err
	}

	o, err := p.repo.SetOrderedQuantity(orderID, productID, packages)
	if err != nil {
		return nil, err
	}
	p.log.Debug("ordered quantity updated", "order_id", orderID, "product_id", productID, "packages", packages)
	return o, nil
}
