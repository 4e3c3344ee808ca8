package planner

import (
	"errors"
	"math"
	"testing"

	"restock/internal/model"
	"restock/internal/service/store"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newPlanner(t *testing.T) (*Planner, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	return New(mem, nil), mem
}

func TestOpenWeekCreatesOrdersOnce(t *testing.T) {
	p, _ := newPlanner(t)

	first, err := p.OpenWeek(2024, 51)
	if err != nil {
		t.Fatalf("OpenWeek() error: %v", err)
	}
	if len(first.Orders) != 3 {
		t.Fatalf("len(Orders) = %d, want 3", len(first.Orders))
	}
	want := []string{"2024-12-19", "2024-12-21", "2024-12-24"}
	for i, o := range first.Orders {
		if o.OrderNumber != i+1 || o.DeliveryDate != want[i] {
			t.Errorf("order %d = #%d %s, want #%d %s", i, o.OrderNumber, o.DeliveryDate, i+1, want[i])
		}
	}
	if len(first.Dates) != 7 || first.Dates[0].Date != "2024-12-16" {
		t.Errorf("Dates = %v", first.Dates)
	}

	second, err := p.OpenWeek(2024, 51)
	if err != nil {
		t.Fatalf("second OpenWeek() error: %v", err)
	}
	if second.Week.ID != first.Week.ID {
		t.Errorf("week ids differ: %d vs %d", first.Week.ID, second.Week.ID)
	}
	for i := range second.Orders {
		if second.Orders[i].ID != first.Orders[i].ID {
			t.Errorf("order %d recreated", i+1)
		}
	}
}

func TestOpenWeekRejectsInvalidWeek(t *testing.T) {
	p, _ := newPlanner(t)
	for _, tc := range []struct{ year, week int }{{2024, 0}, {2024, 53}, {2026, 54}} {
		if _, err := p.OpenWeek(tc.year, tc.week); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("OpenWeek(%d, %d) error = %v, want ErrInvalidInput", tc.year, tc.week, err)
		}
	}
}

func TestPreviousWeekOrdersAcrossYears(t *testing.T) {
	p, _ := newPlanner(t)

	if got := p.PreviousWeekOrders(2025, 1); len(got) != 0 {
		t.Errorf("PreviousWeekOrders() without history = %v, want none", got)
	}

	prev, err := p.OpenWeek(2024, 52)
	if err != nil {
		t.Fatal(err)
	}
	got := p.PreviousWeekOrders(2025, 1)
	if len(got) != 3 || got[0].WeekDataID != prev.Week.ID {
		t.Errorf("PreviousWeekOrders(2025, 1) = %v, want the orders of 2024-W52", got)
	}
}

func TestUpdateRealStockConvertsPackages(t *testing.T) {
	p, mem := newPlanner(t)
	id := mem.AddProduct(&model.Product{
		Reference:      "R1",
		Name:           "Lait",
		UnitConversion: &model.UnitConversion{NumberOfPacks: 2, UnitsPerPack: 6, Unit: "carton"},
	})
	wk, _ := p.OpenWeek(2024, 51)

	o, err := p.UpdateRealStock(wk.Orders[0].ID, id, 3)
	if err != nil {
		t.Fatalf("UpdateRealStock() error: %v", err)
	}
	if got := o.RealStock.Get(id); !floatEquals(got, 36) {
		t.Errorf("RealStock = %v, want 36 units", got)
	}

	if _, err := p.UpdateRealStock(wk.Orders[0].ID, 999, 1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UpdateRealStock(unknown product) error = %v, want ErrNotFound", err)
	}
	if _, err := p.UpdateRealStock(wk.Orders[0].ID, id, math.NaN()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateRealStock(NaN) error = %v, want ErrInvalidInput", err)
	}
}

func TestSetSalesForecastValidatesDate(t *testing.T) {
	p, _ := newPlanner(t)

	w, err := p.SetSalesForecast(2024, 51, "2024-12-16", 1200)
	if err != nil {
		t.Fatalf("SetSalesForecast() error: %v", err)
	}
	if w.SalesForecast.Get("2024-12-16") != 1200 {
		t.Errorf("SalesForecast = %v", w.SalesForecast)
	}

	if _, err := p.SetSalesForecast(2024, 51, "16/12/2024", 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetSalesForecast(bad date) error = %v, want ErrInvalidInput", err)
	}
}

// TestPlanComputesNeeds follows a product through the three deliveries of
// a week whose previous week ordered 2 packages on its last delivery.
func TestPlanComputesNeeds(t *testing.T) {
	p, mem := newPlanner(t)
	id := mem.AddProduct(&model.Product{
		Reference:      "R1",
		Name:           "Tomates",
		StockUnit:      "kg",
		UnitConversion: &model.UnitConversion{NumberOfPacks: 1, UnitsPerPack: 5, Unit: "cagette"},
	})

	prev, _ := p.OpenWeek(2024, 50)
	if _, err := p.UpdateOrderedQuantity(prev.Orders[2].ID, id, 2); err != nil {
		t.Fatal(err)
	}

	if _, err := mem.MergeWeekData(2024, 51, model.ConsumptionData{"R1": 10}, model.SalesForecast{
		"2024-12-16": 1000,
		"2024-12-19": 1000,
		"2024-12-21": 2000,
	}); err != nil {
		t.Fatal(err)
	}
	wk, _ := p.OpenWeek(2024, 51)
	if _, err := p.UpdateRealStock(wk.Orders[0].ID, id, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := p.UpdateOrderedQuantity(wk.Orders[0].ID, id, 3); err != nil {
		t.Fatal(err)
	}

	plan, err := p.Plan(2024, 51, PlanOptions{Persist: true})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(plan.Orders) != 3 {
		t.Fatalf("len(Orders) = %d, want 3", len(plan.Orders))
	}

	// Thursday: 2000 sales -> 20 kg; stock 10 kg carried + 5 kg counted.
	first := plan.Orders[0].Lines[0]
	if !floatEquals(first.Breakdown.InitialStock, 15) || !floatEquals(first.Need, 1) {
		t.Errorf("order 1 = %+v, want initial 15, need 1", first.Breakdown)
	}
	if !floatEquals(first.RealStock, 1) || first.PackageUnit != "cagette" {
		t.Errorf("order 1 line = %+v", first)
	}
	if plan.Orders[0].DayName != "jeudi" {
		t.Errorf("DayName = %q, want jeudi", plan.Orders[0].DayName)
	}

	// Saturday: 4000 sales -> 40 kg; 3 packages carried from Thursday.
	second := plan.Orders[1].Lines[0]
	if !floatEquals(second.Breakdown.CarriedStock, 15) || !floatEquals(second.Need, 5) {
		t.Errorf("order 2 = %+v, want carried 15, need 5", second.Breakdown)
	}

	// Tuesday: nothing carried from Saturday.
	third := plan.Orders[2].Lines[0]
	if !floatEquals(third.Need, 8) {
		t.Errorf("order 3 need = %v, want 8", third.Need)
	}

	stored, _ := mem.GetOrder(wk.Orders[1].ID)
	if !floatEquals(stored.Needs.Get(id), 5) {
		t.Errorf("persisted need = %v, want 5", stored.Needs.Get(id))
	}

	if plan.Days[3].Date != "2024-12-19" || !floatEquals(plan.Days[3].Cumulative, 2000) {
		t.Errorf("Days[3] = %+v", plan.Days[3])
	}
}

func TestPlanEmptyWeekHasZeroNeeds(t *testing.T) {
	p, mem := newPlanner(t)
	id := mem.AddProduct(&model.Product{Reference: "R1", Name: "Tomates"})
	wk, _ := p.OpenWeek(2024, 51)
	p.UpdateRealStock(wk.Orders[0].ID, id, 12)

	plan, err := p.Plan(2024, 51, PlanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range plan.Orders {
		if op.Lines[0].Need != 0 {
			t.Errorf("order %d need = %v, want 0", op.OrderNumber, op.Lines[0].Need)
		}
	}
}

func TestPlanFiltersAndSorts(t *testing.T) {
	p, mem := newPlanner(t)
	mem.AddProduct(&model.Product{Reference: "TOM-1", Name: "Tomates"})
	mem.AddProduct(&model.Product{Reference: "BAS-1", Name: "basilic"})
	mem.AddProduct(&model.Product{Reference: "AIL-1", Name: "Ail", IsHidden: true})
	mem.MergeWeekData(2024, 51, model.ConsumptionData{"TOM-1": 10, "BAS-1": 1}, model.SalesForecast{"2024-12-16": 1000})

	plan, err := p.Plan(2024, 51, PlanOptions{})
	if err != nil {
		t.Fatal(err)
	}
	lines := plan.Orders[0].Lines
	if len(lines) != 2 || lines[0].Reference != "BAS-1" || lines[1].Reference != "TOM-1" {
		t.Errorf("default lines = %v, want basilic then Tomates", lines)
	}

	plan, _ = p.Plan(2024, 51, PlanOptions{SortBy: SortByNeed, Descending: true, IncludeHidden: true})
	lines = plan.Orders[0].Lines
	if len(lines) != 3 || lines[0].Reference != "TOM-1" {
		t.Errorf("need-sorted lines = %v, want TOM-1 first", lines)
	}

	plan, _ = p.Plan(2024, 51, PlanOptions{Search: "tom"})
	if len(plan.Orders[0].Lines) != 1 || plan.Orders[0].Lines[0].Reference != "TOM-1" {
		t.Errorf("search lines = %v", plan.Orders[0].Lines)
	}
}
