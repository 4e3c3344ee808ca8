package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	settingCurrentYear = "current_year"
	settingCurrentWeek = "current_week"
)

// GetSetting returns a setting value; ok is false when it was never set.
func (s *Store) GetSetting(name string) (value string, ok bool, err error) {
	err = s.QueryRow(`SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, true, nil
}

// SetSetting stores a setting value.
func (s *Store) SetSetting(name, value string) error {
	query := `INSERT INTO settings (name, value) VALUES (?, ?)` +
		s.dialect.Upsert([]string{"name"}, []string{"value"})
	if err := s.Exec(query, name, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

func (s *Store) getSettingInt(name string) (int, bool, error) {
	value, ok, err := s.GetSetting(name)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("setting %s is not an integer: %w", name, err)
	}
	return n, true, nil
}

// GetCurrentWeek returns the week selected in the UI. ok is false when no
// week was selected yet.
func (s *Store) GetCurrentWeek() (year, week int, ok bool, err error) {
	year, okYear, err := s.getSettingInt(settingCurrentYear)
	if err != nil {
		return 0, 0, false, err
	}
	week, okWeek, err := s.getSettingInt(settingCurrentWeek)
	if err != nil {
		return 0, 0, false, err
	}
	if !okYear || !okWeek {
		return 0, 0, false, nil
	}
	return year, week, true, nil
}

// SetCurrentWeek stores the week selected in the UI.
func (s *Store) SetCurrentWeek(year, week int) error {
	if err := s.SetSetting(settingCurrentYear, strconv.Itoa(year)); err != nil {
		return err
	}
	return s.SetSetting(settingCurrentWeek, strconv.Itoa(week))
}
