package calculator

import (
	"github.com/shopspring/decimal"

	"restock/internal/model"
)

// ToUnits converts a quantity in purchase packages into stock units.
// Products without a valid conversion are 1:1.
func ToUnits(packages float64, p *model.Product) float64 {
	perPackage, ok := conversionOf(p)
	if !ok {
		return packages
	}
	return packages * perPackage
}

// ToPackages converts a quantity in stock units into purchase packages,
// rounded to 2 decimals. Products without a valid conversion pass through
// unrounded.
func ToPackages(units float64, p *model.Product) float64 {
	perPackage, ok := conversionOf(p)
	if !ok {
		return units
	}
	return Round2(units / perPackage)
}

// Round2 rounds v to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func conversionOf(p *model.Product) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return p.UnitConversion.UnitsPerPackage()
}
