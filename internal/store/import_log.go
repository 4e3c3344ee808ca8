package store

import (
	"database/sql"
	"errors"
	"fmt"

	"restock/internal/model"
)

// Import statuses.
const (
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
)

// CreateImportLog records the start of an import and returns the log id.
func (s *Store) CreateImportLog(batchID, filename string, year, week int) (int64, error) {
	id, err := s.insert(s.db, `
		INSERT INTO import_logs (batch_id, filename, year, week_number, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, batchID, filename, year, week, ImportProcessing, "")
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	return id, nil
}

// FinishImportLog stores the outcome of an import.
func (s *Store) FinishImportLog(id int64, totalRows, importedRows, skippedRows int, status, errorMessage string) error {
	err := s.Exec(`
		UPDATE import_logs SET
			total_rows = ?,
			imported_rows = ?,
			skipped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, importedRows, skippedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// LastImportLog returns the most recent import, or nil when there is none.
func (s *Store) LastImportLog() (*model.ImportLog, error) {
	var (
		l           model.ImportLog
		message     sql.NullString
		completedAt sql.NullTime
	)
	err := s.QueryRow(`
		SELECT id, batch_id, filename, year, week_number, total_rows, imported_rows, skipped_rows,
			status, error_message, started_at, completed_at
		FROM import_logs ORDER BY id DESC LIMIT 1
	`).Scan(&l.ID, &l.BatchID, &l.Filename, &l.Year, &l.WeekNumber, &l.TotalRows, &l.ImportedRows, &l.SkippedRows,
		&l.Status, &message, &l.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import log: %w", err)
	}
	l.ErrorMessage = message.String
	if completedAt.Valid {
		t := completedAt.Time
		l.CompletedAt = &t
	}
	return &l, nil
}
