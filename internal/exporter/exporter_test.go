package exporter

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"restock/internal/model"
	"restock/internal/service/planner"
	"restock/internal/service/store"
)

func TestWritePlan(t *testing.T) {
	t.Parallel()

	plan := &planner.WeekPlan{
		Year:       2024,
		WeekNumber: 51,
		Days: []planner.ForecastDay{
			{Date: "2024-12-16", DayName: "lundi", Forecast: 1000, Cumulative: 1000},
			{Date: "2024-12-17", DayName: "mardi", Forecast: 500, Cumulative: 1500},
		},
		Orders: []planner.OrderPlan{
			{OrderID: 1, OrderNumber: 1, DeliveryDate: "2024-12-19", Lines: []planner.Line{
				{Reference: "R1", Name: "Tomates", StockUnit: "kg", PackageUnit: "cagette", RealStock: 1, Need: 2.5, OrderedQuantity: 3},
			}},
			{OrderID: 2, OrderNumber: 2, DeliveryDate: "2024-12-21"},
		},
	}

	var last ProgressEvent
	f, err := WritePlan(plan, func(p ProgressEvent) { last = p })
	if err != nil {
		t.Fatalf("WritePlan() error: %v", err)
	}
	defer f.Close()

	if last.Percent != 100 {
		t.Errorf("last progress = %+v, want 100%%", last)
	}

	sheets := f.GetSheetList()
	want := []string{ForecastSheet, "Commande 1 (2024-12-19)", "Commande 2 (2024-12-21)"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], want[i])
		}
	}

	rows, err := f.GetRows(ForecastSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2][0] != "2024-12-17" || rows[2][1] != "mardi" {
		t.Errorf("forecast rows = %v", rows)
	}

	ref, _ := f.GetCellValue(want[1], "A2")
	name, _ := f.GetCellValue(want[1], "B2")
	if ref != "R1" || name != "Tomates" {
		t.Errorf("order row = %q %q", ref, name)
	}
	need, _ := f.GetCellValue(want[1], "F2", excelizeRaw())
	if need != "2.5" {
		t.Errorf("need cell = %q, want 2.5", need)
	}
}

func TestExportUsesPlanner(t *testing.T) {
	t.Parallel()

	mem := store.NewMemoryStore()
	mem.AddProduct(&model.Product{Reference: "R1", Name: "Tomates", StockUnit: "kg"})
	mem.MergeWeekData(2024, 51, model.ConsumptionData{"R1": 10}, model.SalesForecast{"2024-12-16": 1000})

	f, err := NewExporter(planner.New(mem, nil)).Export(ExportOptions{Year: 2024, Week: 51})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	defer f.Close()

	if n := len(f.GetSheetList()); n != 4 {
		t.Errorf("sheets = %d, want 4", n)
	}
	need, _ := f.GetCellValue("Commande 1 (2024-12-19)", "F2", excelizeRaw())
	if need != "10" {
		t.Errorf("need = %q, want 10", need)
	}
}

func TestExportRejectsInvalidWeek(t *testing.T) {
	t.Parallel()

	_, err := NewExporter(planner.New(store.NewMemoryStore(), nil)).Export(ExportOptions{Year: 2024, Week: 53})
	if err == nil {
		t.Error("expected error for 2024-W53")
	}
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	got := ContentDisposition(Filename(2024, 51))
	want := "attachment; filename=\"commandes-2024-S51.xlsx\"; filename*=UTF-8''commandes-2024-S51.xlsx"
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}

	got = ContentDisposition("prévisions.xlsx")
	want = "attachment; filename=\"pr_visions.xlsx\"; filename*=UTF-8''pr%C3%A9visions.xlsx"
	if got != want {
		t.Fatalf("content-disposition mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func excelizeRaw() excelize.Options {
	return excelize.Options{RawCellValue: true}
}
