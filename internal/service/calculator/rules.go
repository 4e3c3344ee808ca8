package calculator

import "restock/internal/model"

// ValidateConversion lists the problems that make a unit conversion fall
// back to 1:1. A nil conversion is valid.
func ValidateConversion(c *model.UnitConversion) []string {
	if c == nil {
		return []string{}
	}

	errs := make([]string, 0, 2)

	if c.NumberOfPacks <= 0 {
		errs = append(errs, "number of packs must be positive")
	}
	if c.UnitsPerPack <= 0 {
		errs = append(errs, "units per pack must be positive")
	}

	return errs
}
