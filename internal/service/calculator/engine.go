package calculator

import (
	"restock/internal/model"
)

// consumptionScale is the sales amount consumption ratios are expressed per.
const consumptionScale = 1000

// Breakdown carries every intermediate value of a needs calculation.
// All fields except Need are full precision.
type Breakdown struct {
	SalesForecast float64 `json:"salesForecast"` // cumulative up to the delivery date
	Consumption   float64 `json:"consumption"`   // stock units
	CarriedStock  float64 `json:"carriedStock"`  // stock units, from the previous order
	RealStock     float64 `json:"realStock"`     // stock units, counted
	InitialStock  float64 `json:"initialStock"`  // CarriedStock + RealStock
	RawNeed       float64 `json:"rawNeed"`       // stock units, may be negative
	Need          float64 `json:"need"`          // packages, rounded to 2 decimals
}

// CalculateOrderNeeds returns how many packages of product must be ordered
// for order. previousOrders are this week's orders (any subset with a
// smaller order number is used); previousWeekOrders are the preceding
// week's orders and may be empty. The result may be negative, except for a
// week with neither consumption data nor sales forecast, which yields 0.
func CalculateOrderNeeds(order *model.Order, week *model.WeekData, product *model.Product, previousOrders, previousWeekOrders []*model.Order) float64 {
	return Calculate(order, week, product, previousOrders, previousWeekOrders).Need
}

// Calculate is CalculateOrderNeeds with every intermediate value exposed.
func Calculate(order *model.Order, week *model.WeekData, product *model.Product, previousOrders, previousWeekOrders []*model.Order) Breakdown {
	var b Breakdown

	b.CarriedStock = CarriedStock(product, order, previousOrders, previousWeekOrders)
	b.RealStock = order.RealStock.Get(product.ID)
	b.InitialStock = b.CarriedStock + b.RealStock

	// Nothing entered for the week yet: no need to report.
	if week == nil || (len(week.ConsumptionData) == 0 && len(week.SalesForecast) == 0) {
		return b
	}

	b.SalesForecast = CumulativeSalesForecast(week, order)
	b.Consumption = Consumption(product, week, b.SalesForecast)
	b.RawNeed = b.Consumption - b.InitialStock
	b.Need = Round2(ToPackages(b.RawNeed, product))
	return b
}

// CumulativeSalesForecast sums the forecast of every date on or before the
// order's delivery date. An unparsable delivery date yields 0.
func CumulativeSalesForecast(week *model.WeekData, order *model.Order) float64 {
	if week == nil {
		return 0
	}
	delivery, err := order.Delivery()
	if err != nil {
		return 0
	}
	return week.SalesForecast.CumulativeUntil(delivery)
}

// Consumption returns the stock units consumed for salesForecast.
func Consumption(product *model.Product, week *model.WeekData, salesForecast float64) float64 {
	if week == nil || product.Reference == "" {
		return 0
	}
	return week.ConsumptionData.Ratio(product.Reference) * salesForecast / consumptionScale
}

// InitialStock returns the stock available before order is delivered, in
// stock units: the carried-forward previous order plus the counted stock.
func InitialStock(product *model.Product, order *model.Order, previousOrders, previousWeekOrders []*model.Order) float64 {
	return CarriedStock(product, order, previousOrders, previousWeekOrders) + order.RealStock.Get(product.ID)
}

// CarriedStock converts the quantity ordered on the preceding delivery into
// stock units. The first order of a week looks at the last order of the
// previous week; later orders look at the closest smaller order number.
func CarriedStock(product *model.Product, order *model.Order, previousOrders, previousWeekOrders []*model.Order) float64 {
	prev := precedingOrder(order, previousOrders, previousWeekOrders)
	if prev == nil {
		return 0
	}
	return ToUnits(prev.OrderedQuantities.Get(product.ID), product)
}

func precedingOrder(order *model.Order, previousOrders, previousWeekOrders []*model.Order) *model.Order {
	if order.OrderNumber == 1 {
		for _, o := range previousWeekOrders {
			if o != nil && o.OrderNumber == model.OrdersPerWeek {
				return o
			}
		}
		return nil
	}

	var best *model.Order
	for _, o := range previousOrders {
		if o == nil || o.OrderNumber >= order.OrderNumber {
			continue
		}
		if best == nil || o.OrderNumber > best.OrderNumber {
			best = o
		}
	}
	return best
}
