// Package export writes route cards to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/routecard/internal/core/operation"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// Sheet names.
const (
	SheetRoute   = "Route"
	SheetResults = "Results"
	SheetLog     = "Log"
)

// RouteHeader is the header row of the route sheet.
var RouteHeader = []string{
	"#", "Code", "Operation", "Work center", "Executor", "Planned, min",
	"Status", "Actual", "Good", "Scrap", "Held", "Comment",
}

// LogHeader is the header row of the log sheet.
var LogHeader = []string{"Time", "Actor", "Action", "Object", "Field", "Old value", "New value"}

// WriteCard writes view's route, final results and log to w as .xlsx.
func WriteCard(w io.Writer, view *primary.CardView, now time.Time) error {
	f, err := CardWorkbook(view, now)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// CardWorkbook builds the workbook for one card. The caller closes it.
func CardWorkbook(view *primary.CardView, now time.Time) (*excelize.File, error) {
	if view == nil || view.Card == nil {
		return nil, fmt.Errorf("no card to export")
	}
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetRoute); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetResults, SheetLog} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, *primary.CardView, time.Time, int) error{
		writeRoute, writeResults, writeLog,
	}
	for _, step := range steps {
		if err := step(f, view, now, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRoute(f *excelize.File, view *primary.CardView, now time.Time, style int) error {
	c := view.Card
	meta := [][]any{
		{"Card", c.Name},
		{"Barcode", c.Barcode},
		{"Order", c.OrderNo},
		{"Contract", c.ContractNumber},
		{"Drawing", c.Drawing},
		{"Material", c.Material},
		{"Quantity", c.Quantity.String()},
		{"Status", string(c.Status)},
	}
	row := 1
	for _, m := range meta {
		if err := setRow(f, SheetRoute, row, m); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setHeader(f, SheetRoute, row, RouteHeader, style); err != nil {
		return err
	}
	for i, op := range route.Sorted(c.Operations) {
		row++
		values := []any{
			i + 1, op.OpCode, op.OpName, op.CenterName, executors(op), op.PlannedMinutes,
			string(op.Status), operation.FormatHMS(operation.ElapsedSeconds(op, now)),
			op.GoodCount, op.ScrapCount, op.HoldCount, op.Comment,
		}
		if err := setRow(f, SheetRoute, row, values); err != nil {
			return err
		}
	}
	return setWidths(f, SheetRoute, []float64{6, 12, 28, 20, 24, 12, 14, 12, 8, 8, 8, 40})
}

func writeResults(f *excelize.File, view *primary.CardView, _ time.Time, style int) error {
	r := view.Results
	if err := setHeader(f, SheetResults, 1, []string{"Initial quantity", "Good", "Scrap", "Held", "Balanced"}, style); err != nil {
		return err
	}
	balanced := "yes"
	if !r.OK {
		balanced = "no"
	}
	if err := setRow(f, SheetResults, 2, []any{r.InitialQuantity, r.Good, r.Scrap, r.Hold, balanced}); err != nil {
		return err
	}

	if err := setHeader(f, SheetResults, 4, []string{"Operation", "Good", "Scrap", "Held"}, style); err != nil {
		return err
	}
	for i, op := range route.Sorted(view.Card.Operations) {
		if err := setRow(f, SheetResults, 5+i, []any{op.Label(), op.GoodCount, op.ScrapCount, op.HoldCount}); err != nil {
			return err
		}
	}
	return setWidths(f, SheetResults, []float64{32, 10, 10, 10, 10})
}

func writeLog(f *excelize.File, view *primary.CardView, _ time.Time, style int) error {
	if err := setHeader(f, SheetLog, 1, LogHeader, style); err != nil {
		return err
	}
	for i, e := range view.Card.Logs {
		values := []any{
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Object, e.Field, e.OldValue, e.NewValue,
		}
		if err := setRow(f, SheetLog, i+2, values); err != nil {
			return err
		}
	}
	return setWidths(f, SheetLog, []float64{20, 14, 24, 28, 16, 24, 24})
}

func executors(op *models.Operation) string {
	out := op.Executor
	for _, extra := range op.AdditionalExecutors {
		if extra == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += extra
	}
	return out
}

func setHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := setRow(f, sheet, row, values); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
