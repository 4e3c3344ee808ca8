package parser

import "restock/internal/model"

// Columns holds the spreadsheet column letters of each imported field.
type Columns struct {
	DestinationCode string `json:"destinationCode"`
	Reference       string `json:"reference"`
	Name            string `json:"name"`
	StockUnit       string `json:"stockUnit"`
	Consumption     string `json:"consumption"`
}

// DefaultColumns is the layout of the supplier's consumption export.
var DefaultColumns = Columns{
	DestinationCode: "E",
	Reference:       "J",
	Name:            "K",
	StockUnit:       "L",
	Consumption:     "AO",
}

// columnIndexes are Columns resolved to 0-based indexes.
type columnIndexes struct {
	destinationCode int
	reference       int
	name            int
	stockUnit       int
	consumption     int
}

// RowError explains why a data row was skipped.
type RowError struct {
	RowNo  int    `json:"rowNo"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing one sheet.
type ParseResult struct {
	SheetName    string                `json:"sheetName"`
	TotalRows    int                   `json:"totalRows"`    // non-blank data rows
	ImportedRows int                   `json:"importedRows"` // rows accepted
	SkippedRows  int                   `json:"skippedRows"`
	Errors       []RowError            `json:"errors,omitempty"`
	Products     []*model.Product      `json:"-"`
	Consumption  model.ConsumptionData `json:"-"`
}
