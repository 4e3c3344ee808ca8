package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// UnitConversion describes how many stock units make up one purchase package:
// a package holds NumberOfPacks packs of UnitsPerPack units each.
type UnitConversion struct {
	NumberOfPacks float64 `json:"numberOfPacks"`
	UnitsPerPack  float64 `json:"unitsPerPack"`
	Unit          string  `json:"unit"`
}

// UnitsPerPackage returns the stock units in one package.
// ok is false when either factor is not positive; callers then treat the
// product as 1:1.
func (u *UnitConversion) UnitsPerPackage() (units float64, ok bool) {
	if u == nil || u.NumberOfPacks <= 0 || u.UnitsPerPack <= 0 {
		return 0, false
	}
	return u.NumberOfPacks * u.UnitsPerPack, true
}

// Value implements driver.Valuer; a nil conversion is stored as NULL.
func (u *UnitConversion) Value() (driver.Value, error) {
	if u == nil {
		return nil, nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (u *UnitConversion) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil || len(b) == 0 {
		return err
	}
	return json.Unmarshal(b, u)
}

// Product is a stock item, identified by its supplier reference.
type Product struct {
	ID              int64           `json:"id"`
	Reference       string          `json:"reference"`
	Name            string          `json:"name"`
	DestinationCode string          `json:"destinationCode"`
	StockUnit       string          `json:"stockUnit"`
	IsHidden        bool            `json:"isHidden"`
	CategoryID      *int64          `json:"categoryId,omitempty"`
	UnitConversion  *UnitConversion `json:"unitConversion,omitempty"`
}

// Validate checks the fields every imported product must carry.
func (p *Product) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Reference) == "" {
		missing = append(missing, "reference")
	}
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.DestinationCode) == "" {
		missing = append(missing, "destinationCode")
	}
	if strings.TrimSpace(p.StockUnit) == "" {
		missing = append(missing, "stockUnit")
	}
	if len(missing) > 0 {
		return errors.New("missing product fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// Matches reports whether the product name or reference contains term,
// ignoring case. An empty term matches everything.
func (p *Product) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Reference), term)
}

// Category groups products for display.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported json column type")
	}
}

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("not found")
