package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeCell trims a cell and collapses inner whitespace, line breaks
// included, to single spaces.
func NormalizeCell(value string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(value), " ")
}

// ColumnIndex converts a column letter such as "AO" to a 0-based index.
func ColumnIndex(letter string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(letter)))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", letter, err)
	}
	return n - 1, nil
}

// ParseConsumptionValue reads a consumption ratio written with either a
// decimal point or a decimal comma. An empty cell is a ratio of 0.
func ParseConsumptionValue(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	value = strings.Replace(value, ",", ".", 1)
	value = strings.ReplaceAll(value, " ", "")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid consumption value %q", value)
	}
	return f, nil
}

// cell returns the normalized value at idx, or "" past the end of row.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return NormalizeCell(row[idx])
}

// isBlankRow reports whether every cell of row is empty.
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
