//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// AccountLine is one revenue row of a dossier spreadsheet: an account number,
// its label, and the amounts for the current (N) and prior (N-1) fiscal years.
type AccountLine struct {
	Account string  `json:"account"`
	Label   string  `json:"label"`
	Current float64 `json:"n"`
	Prior   float64 `json:"n_1"`
}

// ReportLine is an AccountLine with derived year-over-year deltas.
type ReportLine struct {
	AccountLine
	Delta    float64 `json:"delta"`
	DeltaPct float64 `json:"delta_pct"`
}

// ReportSummary aggregates a dossier's revenue lines for the comparison view.
type ReportSummary struct {
	Folder   string       `json:"folder"`
	Path     string       `json:"path"`
	Lines    []ReportLine `json:"lines"`
	TotalN   float64      `json:"total_n"`
	TotalN1  float64      `json:"total_n_1"`
	Delta    float64      `json:"delta"`
	DeltaPct float64      `json:"delta_pct"`
}
