// Package importer loads products and consumption ratios from a supplier
// workbook into the store, reporting progress as it goes.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"restock/internal/logger"
	"restock/internal/parser"
	"restock/internal/service/calendar"
	"restock/internal/store"
)

// Progress event types.
const (
	EventStart = "start"
	EventInfo  = "info"
	EventDone  = "done"
	EventError = "error"
)

// Coordinator runs imports against a store.
type Coordinator struct {
	store   *store.Store
	columns parser.Columns
	log     *logger.Logger
}

// NewCoordinator creates a coordinator reading the given columns.
func NewCoordinator(st *store.Store, columns parser.Columns, log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Discard()
	}
	return &Coordinator{store: st, columns: columns, log: log.WithComponent("importer")}
}

// ImportOptions selects the file and the week the ratios belong to.
type ImportOptions struct {
	FilePath string
	Filename string // shown in logs; defaults to the base of FilePath
	Year     int
	Week     int
}

// ProgressEvent reports one step of an import.
type ProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Report summarises a finished import.
type Report struct {
	BatchID      string            `json:"batchId"`
	Filename     string            `json:"filename"`
	Year         int               `json:"year"`
	WeekNumber   int               `json:"weekNumber"`
	SheetName    string            `json:"sheetName"`
	TotalRows    int               `json:"totalRows"`
	ImportedRows int               `json:"importedRows"`
	SkippedRows  int               `json:"skippedRows"`
	Errors       []parser.RowError `json:"errors,omitempty"`
	Duration     time.Duration     `json:"duration"`
}

// ErrNoValidRows is reported when a workbook holds no importable row.
var ErrNoValidRows = errors.New("no valid row found in the file")

// Import runs the import in the background. The returned channel is closed
// once a done or error event has been sent.
func (c *Coordinator) Import(opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImport(opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()
	if opts.Filename == "" {
		opts.Filename = filepath.Base(opts.FilePath)
	}

	report := &Report{
		BatchID:    uuid.NewString(),
		Filename:   opts.Filename,
		Year:       opts.Year,
		WeekNumber: opts.Week,
	}
	log := c.log.With("batch_id", report.BatchID, "filename", report.Filename, "year", opts.Year, "week", opts.Week)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: fmt.Sprintf("Importing %s into week %d-W%02d", report.Filename, opts.Year, opts.Week),
		Data: map[string]interface{}{
			"batch_id": report.BatchID,
			"filename": report.Filename,
		},
		Timestamp: time.Now(),
	})

	if !calendar.ValidWeek(opts.Year, opts.Week) {
		c.fail(progressChan, log, report, 0, fmt.Errorf("week %d-W%02d does not exist", opts.Year, opts.Week))
		return
	}

	logID, err := c.store.CreateImportLog(report.BatchID, report.Filename, opts.Year, opts.Week)
	if err != nil {
		c.fail(progressChan, log, report, 0, err)
		return
	}

	result, err := c.parse(opts.FilePath)
	if err != nil {
		c.fail(progressChan, log, report, logID, err)
		return
	}
	report.SheetName = result.SheetName
	report.TotalRows = result.TotalRows
	report.ImportedRows = result.ImportedRows
	report.SkippedRows = result.SkippedRows
	report.Errors = result.Errors

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("Sheet %q: %d rows read, %d accepted, %d skipped", result.SheetName, result.TotalRows, result.ImportedRows, result.SkippedRows),
		Data: map[string]interface{}{
			"sheet_name":    result.SheetName,
			"total_rows":    result.TotalRows,
			"imported_rows": result.ImportedRows,
			"skipped_rows":  result.SkippedRows,
		},
		Timestamp: time.Now(),
	})

	if result.ImportedRows == 0 {
		c.fail(progressChan, log, report, logID, ErrNoValidRows)
		return
	}

	if err := c.store.UpsertProducts(result.Products); err != nil {
		c.fail(progressChan, log, report, logID, err)
		return
	}
	if _, err := c.store.MergeWeekData(opts.Year, opts.Week, result.Consumption, nil); err != nil {
		c.fail(progressChan, log, report, logID, err)
		return
	}

	if err := c.store.FinishImportLog(logID, report.TotalRows, report.ImportedRows, report.SkippedRows, store.ImportCompleted, ""); err != nil {
		log.Warn("failed to close import log", "error", err)
	}

	report.Duration = time.Since(startTime)
	log.Info("import completed", "imported_rows", report.ImportedRows, "skipped_rows", report.SkippedRows, "duration_ms", report.Duration.Milliseconds())

	c.sendProgress(progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   fmt.Sprintf("%d products imported", report.ImportedRows),
		Data:      report,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) parse(path string) (*parser.ParseResult, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	p, err := parser.NewConsumptionParser(file, c.columns)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// fail records the failure in the import log (when one was opened) and
// sends the error event.
func (c *Coordinator) fail(ch chan ProgressEvent, log *slog.Logger, report *Report, logID int64, err error) {
	log.Error("import failed", "error", err)
	if logID > 0 {
		if logErr := c.store.FinishImportLog(logID, report.TotalRows, report.ImportedRows, report.SkippedRows, store.ImportFailed, err.Error()); logErr != nil {
			log.Warn("failed to close import log", "error", logErr)
		}
	}
	c.sendProgress(ch, ProgressEvent{
		Type:      EventError,
		Message:   err.Error(),
		Data:      report,
		Timestamp: time.Now(),
	})
}

// sendProgress never blocks; events are dropped when the buffer is full.
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
