package reporting

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fundamental-grader/internal/grading"
)

// Workbook sheet names.
const (
	SheetGraded    = "Graded"
	SheetBaselines = "Baselines"
)

// WriteWorkbook writes the graded table and the baselines to an Excel workbook.
// Numeric output columns are written as numbers; input cells keep their text.
func WriteWorkbook(w io.Writer, res *grading.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetGraded); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetBaselines); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := GradedHeader(res)
	numeric := len(res.Dataset.Columns()) + len(res.Catalog.CategoryNames())
	rows := make([][]any, 0, len(res.Companies)+1)
	rows = append(rows, toAny(header))
	for _, r := range GradedRows(res) {
		row := toAny(r)
		for j := numeric; j < len(r); j++ {
			if v, err := strconv.ParseFloat(r[j], 64); err == nil {
				row[j] = v
			}
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, SheetGraded, rows, bold, len(header)); err != nil {
		return err
	}

	baselines := BaselineRows(res)
	brows := make([][]any, 0, len(baselines)+1)
	brows = append(brows, toAny(baselineHeader))
	for _, b := range baselines {
		brows = append(brows, []any{b.Sector, b.Metric, b.Observed, b.Samples, b.Median, b.P10, b.P90, b.Spread, b.Defined})
	}
	if err := writeSheet(f, SheetBaselines, brows, bold, len(baselineHeader)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle, width int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if width == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
