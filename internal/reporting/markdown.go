package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Fundamental Grading Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Variant: %s | Normalized: %t\n\n", r.RunID, r.Variant, r.Normalized))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Companies | %d |\n", r.DataSummary.Companies))
	sb.WriteString(fmt.Sprintf("| Sectors | %d |\n", r.DataSummary.Sectors))
	sb.WriteString(fmt.Sprintf("| Industries | %d |\n", r.DataSummary.Industries))
	sb.WriteString(fmt.Sprintf("| Graded Metrics | %d |\n", r.DataSummary.Metrics))
	sb.WriteString(fmt.Sprintf("| Baseline Pairs | %d |\n", r.DataSummary.BaselinePairs))
	sb.WriteString(fmt.Sprintf("| Undefined Baselines | %d |\n", r.DataSummary.UndefinedBaselines))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "WARN"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Grades for thin sectors or sparse metrics lean on fallback values.\n\n")
		}
	}

	if len(r.DataQuality.IssueCounts) > 0 {
		sb.WriteString("### Issues\n\n")
		sb.WriteString("| Kind | Count |\n")
		sb.WriteString("|------|-------|\n")
		total := 0
		for _, ic := range r.DataQuality.IssueCounts {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", ic.Kind, ic.Count))
			total += ic.Count
		}
		sb.WriteString("\n")
		for _, issue := range r.DataQuality.Issues {
			sb.WriteString(fmt.Sprintf("- %s\n", issue))
		}
		if shown := len(r.DataQuality.Issues); shown < total {
			sb.WriteString(fmt.Sprintf("- ... %d more\n", total-shown))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No data quality issues.\n\n")
	}

	// Ranking
	sb.WriteString("## Ranking\n\n")
	if len(r.Ranking) > 0 {
		sb.WriteString("| # | Ticker | Sector | Industry |")
		sep := "|---|--------|--------|----------|"
		for _, c := range r.Categories {
			sb.WriteString(fmt.Sprintf(" %s |", c))
			sep += "---|"
		}
		sb.WriteString(" Rating |")
		sep += "--------|"
		if r.Normalized {
			sb.WriteString(" Normalized |")
			sep += "------------|"
		}
		sb.WriteString(" Percent Diff |\n")
		sb.WriteString(sep + "--------------|\n")

		for _, row := range r.Ranking {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |", row.Rank, row.Ticker, row.Sector, row.Industry))
			for _, l := range row.CategoryLetters {
				sb.WriteString(fmt.Sprintf(" %s |", l))
			}
			sb.WriteString(fmt.Sprintf(" %.2f |", row.OverallRating))
			if r.Normalized {
				sb.WriteString(fmt.Sprintf(" %s |", formatOptionalFixed(row.NormalizedRating)))
			}
			sb.WriteString(fmt.Sprintf(" %s |\n", formatOptionalFixed(row.PercentDiff)))
		}
	} else {
		sb.WriteString("No companies graded.\n")
	}
	sb.WriteString("\n")

	// Sectors
	sb.WriteString("## Sectors\n\n")
	if len(r.Sectors) > 0 {
		sb.WriteString("| Sector | Companies | Mean Rating | Top |\n")
		sb.WriteString("|--------|-----------|-------------|-----|\n")
		for _, s := range r.Sectors {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %s (%.2f) |\n",
				s.Sector, s.Companies, s.MeanRating, s.TopTicker, s.TopRating))
		}
	} else {
		sb.WriteString("No sectors.\n")
	}
	sb.WriteString("\n")

	// Baselines
	sb.WriteString("## Sector Baselines\n\n")
	if len(r.Baselines) > 0 {
		sb.WriteString("| Sector | Metric | Samples | Median | P10 | P90 | Spread |\n")
		sb.WriteString("|--------|--------|---------|--------|-----|-----|--------|\n")
		for _, b := range r.Baselines {
			if !b.Defined {
				sb.WriteString(fmt.Sprintf("| %s | %s | %d/%d | - | - | - | undefined |\n",
					b.Sector, b.Metric, b.Samples, b.Observed))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d/%d | %.4f | %.4f | %.4f | %.4f |\n",
				b.Sector, b.Metric, b.Samples, b.Observed, b.Median, b.P10, b.P90, b.Spread))
		}
	} else {
		sb.WriteString("No baselines available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatOptionalFixed(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
