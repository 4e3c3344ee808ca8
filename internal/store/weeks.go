package store

import (
	"database/sql"
	"errors"
	"fmt"

	"restock/internal/model"
)

const weekColumns = `id, year, week_number, consumption_data, sales_forecast`

func scanWeek(row rowScanner) (*model.WeekData, error) {
	var w model.WeekData
	if err := row.Scan(&w.ID, &w.Year, &w.WeekNumber, &w.ConsumptionData, &w.SalesForecast); err != nil {
		return nil, err
	}
	if w.ConsumptionData == nil {
		w.ConsumptionData = model.ConsumptionData{}
	}
	if w.SalesForecast == nil {
		w.SalesForecast = model.SalesForecast{}
	}
	return &w, nil
}

func (s *Store) getWeekData(q queryer, year, week int, lock bool) (*model.WeekData, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks_data WHERE year = ? AND week_number = ?`
	if lock {
		query += s.dialect.ForUpdate()
	}
	w, err := scanWeek(q.QueryRow(s.dialect.Rebind(query), year, week))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("week %d-W%02d: %w", year, week, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get week %d-W%02d: %w", year, week, err)
	}
	return w, nil
}

// GetWeekData returns the data of an ISO week.
func (s *Store) GetWeekData(year, week int) (*model.WeekData, error) {
	return s.getWeekData(s.db, year, week, false)
}

// EnsureWeekData returns the week's data, creating an empty row first when
// none exists. A concurrent creation is resolved by re-reading the winner.
func (s *Store) EnsureWeekData(year, week int) (*model.WeekData, error) {
	w, err := s.GetWeekData(year, week)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	id, err := s.insert(s.db, `INSERT INTO weeks_data (year, week_number, consumption_data, sales_forecast) VALUES (?, ?, ?, ?)`,
		year, week, model.ConsumptionData{}, model.SalesForecast{})
	if isUniqueViolation(err) {
		return s.GetWeekData(year, week)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create week %d-W%02d: %w", year, week, err)
	}

	return &model.WeekData{
		ID:              id,
		Year:            year,
		WeekNumber:      week,
		ConsumptionData: model.ConsumptionData{},
		SalesForecast:   model.SalesForecast{},
	}, nil
}

// MergeWeekData merges consumption ratios and forecast entries into the
// week's existing maps, creating the week if needed.
func (s *Store) MergeWeekData(year, week int, consumption model.ConsumptionData, forecast model.SalesForecast) (*model.WeekData, error) {
	if _, err := s.EnsureWeekData(year, week); err != nil {
		return nil, err
	}

	var merged *model.WeekData
	err := s.inTx(func(tx *sql.Tx) error {
		w, err := s.getWeekData(tx, year, week, true)
		if err != nil {
			return err
		}
		w.ConsumptionData = w.ConsumptionData.Merge(consumption)
		w.SalesForecast = w.SalesForecast.Merge(forecast)

		if _, err := tx.Exec(s.dialect.Rebind(`UPDATE weeks_data SET consumption_data = ?, sales_forecast = ? WHERE id = ?`),
			w.ConsumptionData, w.SalesForecast, w.ID); err != nil {
			return fmt.Errorf("failed to update week %d-W%02d: %w", year, week, err)
		}
		merged = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// ListWeeks returns every stored week, oldest first.
func (s *Store) ListWeeks() ([]*model.WeekData, error) {
	rows, err := s.Query(`SELECT ` + weekColumns + ` FROM weeks_data ORDER BY year, week_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*model.WeekData
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}
