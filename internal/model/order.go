package model

import (
	"database/sql/driver"
	"sort"
	"time"
)

// OrdersPerWeek is the number of deliveries in a week: Thursday, Saturday
// and the following Tuesday.
const OrdersPerWeek = 3

// ProductQuantities maps a product id to a quantity.
type ProductQuantities map[int64]float64

// Get returns the quantity for productID, 0 when absent.
func (q ProductQuantities) Get(productID int64) float64 {
	return q[productID]
}

// With returns a copy of q with productID set to value.
func (q ProductQuantities) With(productID int64, value float64) ProductQuantities {
	out := make(ProductQuantities, len(q)+1)
	for k, v := range q {
		out[k] = v
	}
	out[productID] = value
	return out
}

// Merge returns a copy of q overwritten by every entry of other.
func (q ProductQuantities) Merge(other ProductQuantities) ProductQuantities {
	out := make(ProductQuantities, len(q)+len(other))
	for k, v := range q {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer.
func (q ProductQuantities) Value() (driver.Value, error) {
	if q == nil {
		return "{}", nil
	}
	return jsonValue(q)
}

// Scan implements sql.Scanner.
func (q *ProductQuantities) Scan(src interface{}) error {
	return scanJSON(src, q)
}

// Order is one of the week's scheduled deliveries.
// (WeekDataID, OrderNumber) is unique.
type Order struct {
	ID                int64             `json:"id"`
	WeekDataID        int64             `json:"weekDataId"`
	OrderNumber       int               `json:"orderNumber"`
	DeliveryDate      string            `json:"deliveryDate"`
	RealStock         ProductQuantities `json:"realStock"`         // stock units
	OrderedQuantities ProductQuantities `json:"orderedQuantities"` // packages
	Needs             ProductQuantities `json:"needs"`             // packages, last computed
}

// Delivery parses DeliveryDate.
func (o *Order) Delivery() (time.Time, error) {
	return time.Parse(DateLayout, o.DeliveryDate)
}

// SortOrders sorts orders by ascending order number.
func SortOrders(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderNumber < orders[j].OrderNumber
	})
}

// ImportLog records one spreadsheet import.
type ImportLog struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batchId"`
	Filename     string     `json:"filename"`
	Year         int        `json:"year"`
	WeekNumber   int        `json:"weekNumber"`
	TotalRows    int        `json:"totalRows"`
	ImportedRows int        `json:"importedRows"`
	SkippedRows  int        `json:"skippedRows"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}
