// Package exporter writes a week's order plan to an xlsx workbook.
package exporter

import (
	"fmt"
	"net/url"

	"github.com/xuri/excelize/v2"
	"restock/internal/service/planner"
)

// ForecastSheet is the name of the first sheet.
const ForecastSheet = "Prévisions"

// ContentType is the MIME type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	forecastHeader = []interface{}{"Date", "Jour", "Prévision CA", "Cumul"}
	orderHeader    = []interface{}{"Référence", "Produit", "Unité stock", "Conditionnement", "Stock réel", "Besoin", "Quantité commandée"}
)

// Exporter builds workbooks from computed plans.
type Exporter struct {
	planner *planner.Planner
}

// NewExporter creates an exporter.
func NewExporter(p *planner.Planner) *Exporter {
	return &Exporter{planner: p}
}

// ExportOptions selects the week to export.
type ExportOptions struct {
	Year          int
	Week          int
	IncludeHidden bool
	Progress      func(ProgressEvent)
}

// Export computes the week's plan and returns it as a workbook. The caller
// closes the file.
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	reportProgress(opts.Progress, 0, "computing plan")
	plan, err := e.planner.Plan(opts.Year, opts.Week, planner.PlanOptions{IncludeHidden: opts.IncludeHidden})
	if err != nil {
		return nil, err
	}
	return WritePlan(plan, opts.Progress)
}

// WritePlan renders plan: a forecast sheet, then one sheet per order.
func WritePlan(plan *planner.WeekPlan, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.SetSheetName(f.GetSheetName(0), ForecastSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeForecastSheet(f, styles, plan); err != nil {
		_ = f.Close()
		return nil, err
	}
	reportProgress(progress, 25, "forecast written")

	for i, op := range plan.Orders {
		sheet := OrderSheetName(op)
		if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeOrderSheet(f, styles, sheet, op); err != nil {
			_ = f.Close()
			return nil, err
		}
		reportProgress(progress, 25+75*(i+1)/len(plan.Orders), fmt.Sprintf("order %d written", op.OrderNumber))
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "done")
	return f, nil
}

// OrderSheetName names the sheet of one order.
func OrderSheetName(op planner.OrderPlan) string {
	return fmt.Sprintf("Commande %d (%s)", op.OrderNumber, op.DeliveryDate)
}

type styles struct {
	header   int
	number   int
	positive int
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#9BC2E6", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	number, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	positive, err := f.NewStyle(&excelize.Style{
		NumFmt: 2,
		Font:   &excelize.Font{Bold: true, Color: "#C00000"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create need style: %w", err)
	}

	return &styles{header: header, number: number, positive: positive}, nil
}

func writeHeader(f *excelize.File, st *styles, sheet string, header []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheet, "A1", last+"1", st.header); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeForecastSheet(f *excelize.File, st *styles, plan *planner.WeekPlan) error {
	sheet := ForecastSheet
	if err := writeHeader(f, st, sheet, forecastHeader); err != nil {
		return err
	}

	for i, d := range plan.Days {
		row := i + 2
		values := []interface{}{d.Date, d.DayName, d.Forecast, d.Cumulative}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write forecast row %d: %w", row, err)
		}
	}
	if n := len(plan.Days); n > 0 {
		if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("D%d", n+1), st.number); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 14)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	return nil
}

func writeOrderSheet(f *excelize.File, st *styles, sheet string, op planner.OrderPlan) error {
	if err := writeHeader(f, st, sheet, orderHeader); err != nil {
		return err
	}

	for i, line := range op.Lines {
		row := i + 2
		values := []interface{}{
			line.Reference,
			line.Name,
			line.StockUnit,
			line.PackageUnit,
			line.RealStock,
			line.Need,
			line.OrderedQuantity,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
		}

		needStyle := st.number
		if line.Need > 0 {
			needStyle = st.positive
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), st.number); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), needStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), st.number); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 36)
	_ = f.SetColWidth(sheet, "C", "G", 16)
	return nil
}

// Filename is the download name of a week's export.
func Filename(year, week int) string {
	return fmt.Sprintf("commandes-%d-S%02d.xlsx", year, week)
}

// ContentDisposition builds an attachment header carrying both an ASCII
// filename and its RFC 5987 UTF-8 form.
func ContentDisposition(filename string) string {
	ascii := make([]rune, 0, len(filename))
	for _, r := range filename {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			r = '_'
		}
		ascii = append(ascii, r)
	}
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", string(ascii), url.PathEscape(filename))
}

// ProgressEvent reports how far an export has gone.
type ProgressEvent struct {
	Percent int
	Stage   string
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress != nil {
		progress(ProgressEvent{Percent: max(0, min(percent, 100)), Stage: stage})
	}
}
