package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fundamental-grader/internal/grading"
)

// Output column names appended to the input table.
const (
	ColumnOverallRating    = "Overall Rating"
	ColumnNormalizedRating = "Normalized Rating"
	ColumnPercentDiff      = "Percent Diff"
)

// GradeColumn returns the output column name for a category letter grade.
func GradeColumn(category string) string {
	return category + " Grade"
}

// reservedColumns lists every column the grader writes. Input columns with
// these names (a re-graded graded.csv) are replaced, not duplicated.
func reservedColumns(res *grading.Result) map[string]struct{} {
	reserved := map[string]struct{}{
		ColumnOverallRating:    {},
		ColumnNormalizedRating: {},
		ColumnPercentDiff:      {},
	}
	for _, name := range res.Catalog.CategoryNames() {
		reserved[GradeColumn(name)] = struct{}{}
	}
	return reserved
}

// passthroughColumns returns the input columns kept in the output, in input order.
func passthroughColumns(res *grading.Result) []string {
	reserved := reservedColumns(res)
	var cols []string
	for _, col := range res.Dataset.Columns() {
		if _, ok := reserved[col]; !ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// GradedHeader returns the input columns followed by the appended grading columns.
func GradedHeader(res *grading.Result) []string {
	header := passthroughColumns(res)
	for _, name := range res.Catalog.CategoryNames() {
		header = append(header, GradeColumn(name))
	}
	header = append(header, ColumnOverallRating)
	if res.Normalized {
		header = append(header, ColumnNormalizedRating)
	}
	return append(header, ColumnPercentDiff)
}

// GradedRows returns one row per company in input order, aligned with GradedHeader.
func GradedRows(res *grading.Result) [][]string {
	columns := passthroughColumns(res)
	rows := make([][]string, len(res.Companies))
	for i, g := range res.Companies {
		company := res.Dataset.Company(i)
		row := make([]string, 0, len(columns)+len(g.Categories)+3)
		for _, col := range columns {
			raw, _ := company.Raw(col)
			row = append(row, raw)
		}
		for _, cs := range g.Categories {
			row = append(row, string(cs.Letter))
		}
		row = append(row, formatFloat(g.OverallRating))
		if res.Normalized {
			row = append(row, formatOptional(g.NormalizedRating))
		}
		rows[i] = append(row, formatOptional(g.PercentDiff))
	}
	return rows
}

// WriteGradedCSV writes the augmented table.
func WriteGradedCSV(w io.Writer, res *grading.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GradedHeader(res)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(GradedRows(res)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// RenderGradedCSV renders the augmented table as a CSV string.
func RenderGradedCSV(res *grading.Result) (string, error) {
	var sb strings.Builder
	if err := WriteGradedCSV(&sb, res); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var baselineHeader = []string{"sector", "metric", "observed", "samples", "median", "p10", "p90", "spread", "defined"}

func baselineRecord(b BaselineRow) []string {
	return []string{
		b.Sector,
		b.Metric,
		strconv.Itoa(b.Observed),
		strconv.Itoa(b.Samples),
		fmt.Sprintf("%.6f", b.Median),
		fmt.Sprintf("%.6f", b.P10),
		fmt.Sprintf("%.6f", b.P90),
		fmt.Sprintf("%.6f", b.Spread),
		strconv.FormatBool(b.Defined),
	}
}

// WriteBaselinesCSV writes the per-sector baseline table.
func WriteBaselinesCSV(w io.Writer, rows []BaselineRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(baselineHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, b := range rows {
		if err := cw.Write(baselineRecord(b)); err != nil {
			return fmt.Errorf("write baseline %s/%s: %w", b.Sector, b.Metric, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
