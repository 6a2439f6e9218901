package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/biplus/ui-api/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Dossier spreadsheets carry one revenue row per account on the first sheet:
// account number, label, current-year amount (N), prior-year amount (N-1).
// The first row is a header and is skipped.
const minColumns = 4

// ErrEmptyWorkbook is returned when the workbook has no sheets or no data rows.
var ErrEmptyWorkbook = errors.New("workbook contains no data rows")

// ParseWorkbook reads account lines from raw xlsx bytes.
func ParseWorkbook(data []byte) ([]model.AccountLine, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, ErrEmptyWorkbook
	}

	lines := make([]model.AccountLine, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line, ok, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if ok {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return lines, nil
}

// parseRow converts one sheet row into an account line. Blank rows are
// skipped rather than rejected; operators leave spacer rows in the dossiers.
func parseRow(row []string) (model.AccountLine, bool, error) {
	if isBlankRow(row) {
		return model.AccountLine{}, false, nil
	}
	if len(row) < minColumns {
		return model.AccountLine{}, false, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(row))
	}

	current, err := parseAmount(row[2])
	if err != nil {
		return model.AccountLine{}, false, fmt.Errorf("amount N: %w", err)
	}
	prior, err := parseAmount(row[3])
	if err != nil {
		return model.AccountLine{}, false, fmt.Errorf("amount N-1: %w", err)
	}

	return model.AccountLine{
		Account: strings.TrimSpace(row[0]),
		Label:   strings.TrimSpace(row[1]),
		Current: current,
		Prior:   prior,
	}, true, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseAmount accepts the formats seen in the dossiers: plain numbers plus
// variants with thousand separators ("1 224 664", "1,224,664") or a comma
// decimal mark ("1224,50"). An empty cell reads as zero.
func parseAmount(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, nil
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// "1,224,664.50": comma is a thousand separator
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		// "1224,50": comma is a decimal mark
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", cell, err)
	}
	return v, nil
}
