package planner

import (
	"fmt"
	"sort"
	"strings"

	"restock/internal/model"
	"restock/internal/service/calculator"
	"restock/internal/service/calendar"
)

// Sort keys accepted by PlanOptions.SortBy.
const (
	SortByName      = "name"
	SortByReference = "reference"
	SortByNeed      = "need"
)

// PlanOptions narrows and orders a plan.
type PlanOptions struct {
	Search        string // matched against name and reference
	IncludeHidden bool
	SortBy        string // name (default), reference or need
	Descending    bool
	Persist       bool // store each order's needs
}

// Line is one product of one order.
type Line struct {
	ProductID       int64                `json:"productId"`
	Reference       string               `json:"reference"`
	Name            string               `json:"name"`
	StockUnit       string               `json:"stockUnit"`
	PackageUnit     string               `json:"packageUnit,omitempty"`
	RealStock       float64              `json:"realStock"` // packages
	OrderedQuantity float64              `json:"orderedQuantity"`
	Need            float64              `json:"need"`
	Breakdown       calculator.Breakdown `json:"breakdown"`
}

// OrderPlan holds the lines of one delivery.
type OrderPlan struct {
	OrderID      int64  `json:"orderId"`
	OrderNumber  int    `json:"orderNumber"`
	DeliveryDate string `json:"deliveryDate"`
	DayName      string `json:"dayName"`
	Lines        []Line `json:"lines"`
}

// ForecastDay is one day of the week with its forecast.
type ForecastDay struct {
	Date       string  `json:"date"`
	DayName    string  `json:"dayName"`
	Forecast   float64 `json:"forecast"`
	Cumulative float64 `json:"cumulative"`
}

// WeekPlan is the computed plan of a week.
type WeekPlan struct {
	Year       int           `json:"year"`
	WeekNumber int           `json:"weekNumber"`
	Days       []ForecastDay `json:"days"`
	Orders     []OrderPlan   `json:"orders"`
}

// Plan computes the need of every listed product for each order of the
// week. The week is opened first, so planning an unseen week creates it.
func (p *Planner) Plan(year, week int, opts PlanOptions) (*WeekPlan, error) {
	wk, err := p.OpenWeek(year, week)
	if err != nil {
		return nil, err
	}

	products, err := p.repo.ListProducts(opts.IncludeHidden)
	if err != nil {
		return nil, err
	}
	products = filterProducts(products, opts.Search)

	previousWeek := p.PreviousWeekOrders(year, week)

	plan := &WeekPlan{
		Year:       year,
		WeekNumber: week,
		Days:       forecastDays(wk),
		Orders:     make([]OrderPlan, 0, len(wk.Orders)),
	}

	for _, order := range wk.Orders {
		op := OrderPlan{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			DeliveryDate: order.DeliveryDate,
			Lines:        make([]Line, 0, len(products)),
		}
		if d, err := order.Delivery(); err == nil {
			op.DayName = calendar.DayName(d.Weekday())
		}

		needs := make(model.ProductQuantities, len(products))
		for _, product := range products {
			b := calculator.Calculate(order, wk.Week, product, wk.Orders, previousWeek)
			needs[product.ID] = b.Need

			line := Line{
				ProductID:       product.ID,
				Reference:       product.Reference,
				Name:            product.Name,
				StockUnit:       product.StockUnit,
				RealStock:       calculator.Round2(calculator.ToPackages(b.RealStock, product)),
				OrderedQuantity: order.OrderedQuantities.Get(product.ID),
				Need:            b.Need,
				Breakdown:       b,
			}
			if product.UnitConversion != nil {
				line.PackageUnit = product.UnitConversion.Unit
			}
			op.Lines = append(op.Lines, line)
		}
		sortLines(op.Lines, opts.SortBy, opts.Descending)

		if opts.Persist {
			if err := p.repo.SaveOrderNeeds(order.ID, order.Needs.Merge(needs)); err != nil {
				return nil, fmt.Errorf("failed to persist needs of order %d: %w", order.ID, err)
			}
		}
		plan.Orders = append(plan.Orders, op)
	}

	p.log.Debug("plan computed", "year", year, "week", week, "products", len(products), "orders", len(plan.Orders))
	return plan, nil
}

func filterProducts(products []*model.Product, search string) []*model.Product {
	if strings.TrimSpace(search) == "" {
		return products
	}
	out := make([]*model.Product, 0, len(products))
	for _, p := range products {
		if p.Matches(search) {
			out = append(out, p)
		}
	}
	return out
}

func forecastDays(wk *Week) []ForecastDay {
	days := make([]ForecastDay, 0, len(wk.Dates))
	cumulative := 0.0
	for _, d := range wk.Dates {
		v := wk.Week.SalesForecast.Get(d.Date)
		cumulative += v
		days = append(days, ForecastDay{
			Date:       d.Date,
			DayName:    d.DayName,
			Forecast:   v,
			Cumulative: cumulative,
		})
	}
	return days
}

// sortLines orders lines by key. Ties and unknown keys fall back to name,
// then reference; string keys compare case-insensitively.
func sortLines(lines []Line, key string, desc bool) {
	compare := func(a, b Line) int {
		switch key {
		case SortByReference:
			return strings.Compare(strings.ToLower(a.Reference), strings.ToLower(b.Reference))
		case SortByNeed:
			switch {
			case a.Need < b.Need:
				return -1
			case a.Need > b.Need:
				return 1
			}
			return 0
		default:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		c := compare(lines[i], lines[j])
		if c == 0 {
			c = strings.Compare(strings.ToLower(lines[i].Name), strings.ToLower(lines[j].Name))
		}
		if c == 0 {
			c = strings.Compare(lines[i].Reference, lines[j].Reference)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
