package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"restock/internal/parser"
	"restock/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "restock.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// writeWorkbook saves a workbook with the default column layout.
func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{{"CUI", "Référence", "Produit", "Unité", "Conso"}}, rows...)
	for i, row := range all {
		for j, col := range []string{"E", "J", "K", "L", "AO"} {
			if j >= len(row) {
				break
			}
			axis, _ := excelize.JoinCellName(col, i+1)
			f.SetCellValue(sheet, axis, row[j])
		}
	}

	path := filepath.Join(t.TempDir(), "conso.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func collect(ch <-chan ProgressEvent) []ProgressEvent {
	var events []ProgressEvent
	for evt := range ch {
		events = append(events, evt)
	}
	return events
}

func TestImportUpsertsProductsAndMergesConsumption(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	if _, err := st.MergeWeekData(2024, 51, map[string]float64{"OLD": 3}, nil); err != nil {
		t.Fatal(err)
	}

	path := writeWorkbook(t, [][]string{
		{"CUI", "R1", "Tomates", "kg", "1,5"},
		{"CUI", "R2", "Basilic", "botte", "0.25"},
		{"CUI", "R3", "", "kg", "2"},
	})

	events := collect(NewCoordinator(st, parser.Columns{}, nil).Import(ImportOptions{FilePath: path, Year: 2024, Week: 51}))
	if len(events) == 0 || events[0].Type != EventStart {
		t.Fatalf("first event = %+v, want start", events)
	}
	last := events[len(events)-1]
	if last.Type != EventDone {
		t.Fatalf("last event = %s %q, want done", last.Type, last.Message)
	}
	report, ok := last.Data.(*Report)
	if !ok {
		t.Fatalf("unexpected report type: %T", last.Data)
	}
	if report.ImportedRows != 2 || report.SkippedRows != 1 || report.BatchID == "" {
		t.Errorf("report = %+v", report)
	}

	products, err := st.ListProducts(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}

	w, err := st.GetWeekData(2024, 51)
	if err != nil {
		t.Fatal(err)
	}
	if w.ConsumptionData.Ratio("R1") != 1.5 || w.ConsumptionData.Ratio("R2") != 0.25 || w.ConsumptionData.Ratio("OLD") != 3 {
		t.Errorf("ConsumptionData = %v", w.ConsumptionData)
	}

	l, err := st.LastImportLog()
	if err != nil || l == nil {
		t.Fatalf("LastImportLog() = %v, %v", l, err)
	}
	if l.Status != store.ImportCompleted || l.BatchID != report.BatchID || l.ImportedRows != 2 {
		t.Errorf("import log = %+v", l)
	}
}

func TestImportFailsWithoutValidRows(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	path := writeWorkbook(t, [][]string{
		{"CUI", "R1", "", "kg", "1"},
		{"CUI", "R2", "Basilic", "botte", "abc"},
	})

	events := collect(NewCoordinator(st, parser.Columns{}, nil).Import(ImportOptions{FilePath: path, Year: 2024, Week: 51}))
	last := events[len(events)-1]
	if last.Type != EventError || last.Message != ErrNoValidRows.Error() {
		t.Fatalf("last event = %s %q, want error %q", last.Type, last.Message, ErrNoValidRows)
	}

	if n, _ := st.CountProducts(); n != 0 {
		t.Errorf("products = %d, want 0", n)
	}
	l, _ := st.LastImportLog()
	if l == nil || l.Status != store.ImportFailed || l.ErrorMessage == "" {
		t.Errorf("import log = %+v", l)
	}
}

func TestImportMissingFile(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	events := collect(NewCoordinator(st, parser.Columns{}, nil).Import(ImportOptions{
		FilePath: filepath.Join(t.TempDir(), "missing.xlsx"),
		Year:     2024,
		Week:     51,
	}))
	if last := events[len(events)-1]; last.Type != EventError {
		t.Errorf("last event = %s, want error", last.Type)
	}
}

func TestImportRejectsInvalidWeek(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	path := writeWorkbook(t, [][]string{{"CUI", "R1", "Tomates", "kg", "1"}})
	events := collect(NewCoordinator(st, parser.Columns{}, nil).Import(ImportOptions{FilePath: path, Year: 2024, Week: 60}))
	if last := events[len(events)-1]; last.Type != EventError {
		t.Errorf("last event = %s, want error", last.Type)
	}
	if l, _ := st.LastImportLog(); l != nil {
		t.Errorf("no import log expected for an invalid week, got %+v", l)
	}
}
