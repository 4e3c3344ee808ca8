package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// newWorkbook builds a workbook whose first sheet holds rows, each row a map
// from column letter to value.
func newWorkbook(t *testing.T, rows []map[string]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	sheet := f.GetSheetName(0)
	header := map[string]interface{}{"E": "Code destination", "J": "Référence", "K": "Produit", "L": "Unité", "AO": "Conso / 1000€"}
	for rowIdx, row := range append([]map[string]interface{}{header}, rows...) {
		for col, value := range row {
			axis, err := excelize.JoinCellName(col, rowIdx+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, axis, value); err != nil {
				t.Fatal(err)
			}
		}
	}
	return f
}

func TestConsumptionParserParse(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, []map[string]interface{}{
		{"E": "CUI", "J": "R1", "K": "Tomates", "L": "kg", "AO": "1,5"},
		{"E": "CUI", "J": "R2", "K": "Basilic", "L": "botte", "AO": 2.25},
		{},
		{"E": "CUI", "J": "R3", "K": "", "L": "kg", "AO": "3"},
		{"E": "BAR", "J": "R4", "K": "Citrons", "L": "pièce", "AO": "n/a"},
		{"E": "CUI", "J": "R1", "K": "Tomates grappe", "L": "kg", "AO": "1.75"},
		{"E": "BAR", "J": "R5", "K": "Menthe", "L": "botte"},
	})

	p, err := NewConsumptionParser(f, Columns{})
	if err != nil {
		t.Fatalf("NewConsumptionParser() error: %v", err)
	}
	result, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.TotalRows != 6 || result.ImportedRows != 4 || result.SkippedRows != 2 {
		t.Errorf("rows total/imported/skipped = %d/%d/%d, want 6/4/2", result.TotalRows, result.ImportedRows, result.SkippedRows)
	}
	if len(result.Products) != 3 {
		t.Fatalf("len(Products) = %d, want 3", len(result.Products))
	}
	if result.Products[0].Name != "Tomates grappe" {
		t.Errorf("repeated reference should keep the last row, got %q", result.Products[0].Name)
	}
	if result.Consumption.Ratio("R1") != 1.75 || result.Consumption.Ratio("R2") != 2.25 {
		t.Errorf("Consumption = %v", result.Consumption)
	}
	if v, ok := result.Consumption["R5"]; !ok || v != 0 {
		t.Errorf("empty consumption cell should import as 0, got %v, %v", v, ok)
	}
	if len(result.Errors) != 2 || result.Errors[0].RowNo != 5 {
		t.Errorf("Errors = %+v", result.Errors)
	}
}

func TestConsumptionParserCustomColumns(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"ref", "nom", "dest", "unité", "conso"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"R1", "Lait", "BAR", "l", "0,8"})

	p, err := NewConsumptionParser(f, Columns{Reference: "A", Name: "B", DestinationCode: "C", StockUnit: "D", Consumption: "E"})
	if err != nil {
		t.Fatal(err)
	}
	result, err := p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if result.ImportedRows != 1 || result.Consumption.Ratio("R1") != 0.8 {
		t.Errorf("result = %+v", result)
	}
}

func TestConsumptionParserRejectsEmptySheet(t *testing.T) {
	t.Parallel()

	f := newWorkbook(t, nil)
	p, err := NewConsumptionParser(f, Columns{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse(); err == nil {
		t.Error("Parse() of a header-only sheet should fail")
	}
}

func TestNewConsumptionParserRejectsBadColumn(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	if _, err := NewConsumptionParser(f, Columns{Reference: "?"}); err == nil {
		t.Error("expected error for invalid column letter")
	}
}
