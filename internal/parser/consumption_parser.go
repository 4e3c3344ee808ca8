package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"restock/internal/model"
)

// ConsumptionParser reads products and their consumption ratios from the
// first sheet of a workbook.
type ConsumptionParser struct {
	file    *excelize.File
	columns columnIndexes
}

// NewConsumptionParser resolves the column letters. Empty letters fall back
// to DefaultColumns.
func NewConsumptionParser(file *excelize.File, columns Columns) (*ConsumptionParser, error) {
	columns = columns.withDefaults()

	var idx columnIndexes
	var err error
	for _, c := range []struct {
		letter string
		dst    *int
	}{
		{columns.DestinationCode, &idx.destinationCode},
		{columns.Reference, &idx.reference},
		{columns.Name, &idx.name},
		{columns.StockUnit, &idx.stockUnit},
		{columns.Consumption, &idx.consumption},
	} {
		if *c.dst, err = ColumnIndex(c.letter); err != nil {
			return nil, err
		}
	}

	return &ConsumptionParser{file: file, columns: idx}, nil
}

func (c Columns) withDefaults() Columns {
	if c.DestinationCode == "" {
		c.DestinationCode = DefaultColumns.DestinationCode
	}
	if c.Reference == "" {
		c.Reference = DefaultColumns.Reference
	}
	if c.Name == "" {
		c.Name = DefaultColumns.Name
	}
	if c.StockUnit == "" {
		c.StockUnit = DefaultColumns.StockUnit
	}
	if c.Consumption == "" {
		c.Consumption = DefaultColumns.Consumption
	}
	return c
}

// Parse reads the first sheet. The first row is a header; blank rows are
// ignored. A row is accepted when its four product fields are filled and
// its consumption value parses. When a reference repeats, the last row wins.
func (p *ConsumptionParser) Parse() (*ParseResult, error) {
	sheets := p.file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheet")
	}
	sheetName := sheets[0]

	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet has no data rows")
	}

	result := &ParseResult{
		SheetName:   sheetName,
		Consumption: make(model.ConsumptionData),
	}
	byReference := make(map[string]int)

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isBlankRow(row) {
			continue
		}
		result.TotalRows++

		product, ratio, reason := p.parseRow(row)
		if reason != "" {
			result.SkippedRows++
			result.Errors = append(result.Errors, RowError{RowNo: rowIdx + 1, Reason: reason})
			continue
		}

		if i, ok := byReference[product.Reference]; ok {
			result.Products[i] = product
		} else {
			byReference[product.Reference] = len(result.Products)
			result.Products = append(result.Products, product)
		}
		result.Consumption[product.Reference] = ratio
		result.ImportedRows++
	}

	return result, nil
}

// parseRow returns the row's product and ratio, or the reason it is skipped.
func (p *ConsumptionParser) parseRow(row []string) (*model.Product, float64, string) {
	product := &model.Product{
		Reference:       cell(row, p.columns.reference),
		Name:            cell(row, p.columns.name),
		DestinationCode: cell(row, p.columns.destinationCode),
		StockUnit:       cell(row, p.columns.stockUnit),
	}
	if err := product.Validate(); err != nil {
		return nil, 0, err.Error()
	}

	ratio, err := ParseConsumptionValue(cell(row, p.columns.consumption))
	if err != nil {
		return nil, 0, err.Error()
	}
	return product, ratio, ""
}
