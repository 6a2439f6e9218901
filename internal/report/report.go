package report

// Package report turns dossier spreadsheets into the year-over-year revenue
// comparison the dashboard charts are built from.

import (
	"github.com/biplus/ui-api/internal/domain/model"
)

// Aggregate derives per-line and total deltas from account lines.
// A zero prior-year amount yields a 0 percentage rather than a division
// error; the prototype dashboards coerced infinities the same way.
func Aggregate(lines []model.AccountLine) model.ReportSummary {
	summary := model.ReportSummary{
		Lines: make([]model.ReportLine, 0, len(lines)),
	}

	for _, line := range lines {
		delta := line.Current - line.Prior
		summary.Lines = append(summary.Lines, model.ReportLine{
			AccountLine: line,
			Delta:       delta,
			DeltaPct:    pctChange(delta, line.Prior),
		})
		summary.TotalN += line.Current
		summary.TotalN1 += line.Prior
	}

	summary.Delta = summary.TotalN - summary.TotalN1
	summary.DeltaPct = pctChange(summary.Delta, summary.TotalN1)
	return summary
}

func pctChange(delta, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return delta / prior * 100
}
