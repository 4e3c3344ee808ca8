package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// DateLayout is the layout of forecast keys and delivery dates.
const DateLayout = "2006-01-02"

// ConsumptionData maps a product reference to the stock units consumed per
// 1000 currency units of sales.
type ConsumptionData map[string]float64

// Ratio returns the ratio for reference, 0 when absent.
func (c ConsumptionData) Ratio(reference string) float64 {
	return c[reference]
}

// Merge copies every entry of other into c, overwriting existing keys.
func (c ConsumptionData) Merge(other ConsumptionData) ConsumptionData {
	out := make(ConsumptionData, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer.
func (c ConsumptionData) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return jsonValue(c)
}

// Scan implements sql.Scanner.
func (c *ConsumptionData) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// SalesForecast maps a calendar date (DateLayout) to the forecast revenue.
type SalesForecast map[string]float64

// Get returns the forecast for date, 0 when absent.
func (s SalesForecast) Get(date string) float64 {
	return s[date]
}

// CumulativeUntil sums every entry dated on or before day. Keys are not
// restricted to a single week. Keys that do not parse are ignored.
func (s SalesForecast) CumulativeUntil(day time.Time) float64 {
	limit := truncateDay(day)
	total := 0.0
	for key, amount := range s {
		d, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		if !d.After(limit) {
			total += amount
		}
	}
	return total
}

// Merge copies every entry of other into s, overwriting existing keys.
func (s SalesForecast) Merge(other SalesForecast) SalesForecast {
	out := make(SalesForecast, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer.
func (s SalesForecast) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s)
}

// Scan implements sql.Scanner.
func (s *SalesForecast) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// WeekData holds the figures entered for one ISO week.
// (Year, WeekNumber) is unique.
type WeekData struct {
	ID              int64           `json:"id"`
	Year            int             `json:"year"`
	WeekNumber      int             `json:"weekNumber"`
	ConsumptionData ConsumptionData `json:"consumptionData"`
	SalesForecast   SalesForecast   `json:"salesForecast"`
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src interface{}, dst interface{}) error {
	b, err := jsonBytes(src)
	if err != nil || len(b) == 0 {
		return err
	}
	return json.Unmarshal(b, dst)
}
