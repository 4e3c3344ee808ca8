package calculator

import (
	"testing"

	"restock/internal/model"
)

func TestToUnitsAndPackages_Conversion(t *testing.T) {
	p := convertedProduct()

	if got := ToUnits(3, p); !floatEquals(got, 36) {
		t.Fatalf("ToUnits(3) = %v, want 36", got)
	}
	if got := ToPackages(36, p); got != 3.0 {
		t.Fatalf("ToPackages(36) = %v, want 3", got)
	}
	if got := ToPackages(2, p); got != 0.17 {
		t.Fatalf("ToPackages(2) = %v, want 0.17", got)
	}
}

func TestToUnitsAndPackages_Identity(t *testing.T) {
	products := map[string]*model.Product{
		"no conversion":  plainProduct(),
		"zero packs":     {ID: 1, UnitConversion: &model.UnitConversion{NumberOfPacks: 0, UnitsPerPack: 6}},
		"zero units":     {ID: 1, UnitConversion: &model.UnitConversion{NumberOfPacks: 2, UnitsPerPack: 0}},
		"negative packs": {ID: 1, UnitConversion: &model.UnitConversion{NumberOfPacks: -2, UnitsPerPack: 6}},
		"nil product":    nil,
	}

	for name, p := range products {
		t.Run(name, func(t *testing.T) {
			for _, x := range []float64{0, 1, 2.5, -4.25, 12.75} {
				if got := ToUnits(x, p); got != x {
					t.Errorf("ToUnits(%v) = %v", x, got)
				}
				if got := ToPackages(x, p); got != Round2(x) {
					t.Errorf("ToPackages(%v) = %v, want %v", x, got, Round2(x))
				}
			}
		})
	}
}

func TestToPackages_RoundTrip(t *testing.T) {
	p := &model.Product{UnitConversion: &model.UnitConversion{NumberOfPacks: 4, UnitsPerPack: 2.5}}

	for _, x := range []float64{0, 1, 1.25, 3.5, 7.1, -2.4} {
		if got := ToPackages(ToUnits(x, p), p); got != Round2(x) {
			t.Errorf("ToPackages(ToUnits(%v)) = %v, want %v", x, got, Round2(x))
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0.1666666, 0.17},
		{2.333333, 2.33},
		{0.125, 0.13},
		{-0.125, -0.13},
		{3, 3},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expected {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}
