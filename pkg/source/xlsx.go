package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoRows is returned when a sheet holds no samples.
	ErrNoRows = errors.New("source: no data rows")

	// ErrUnordered is returned when the time column decreases.
	ErrUnordered = errors.New("source: time column is not ordered")
)

// Columns selects the sheet and columns LoadXLSX reads. Columns are named
// by letter ("A", "B", ...). An empty Sheet means the first sheet; an empty
// Alert means no alert channel.
type Columns struct {
	Sheet string
	Time  string
	Value string
	Alert string
}

// LoadXLSX reads a time column and a value column, plus an optional alert
// column, from the spreadsheet at path.
//
// A first row whose time cell is not numeric is treated as a header and
// names the series. Empty or non-numeric value and alert cells become gaps.
// Rows without a time are skipped. Time must be non-decreasing.
func LoadXLSX(path string, cols Columns) (Series, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := cols.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Series{}, fmt.Errorf("%s: %w", path, ErrNoRows)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Series{}, fmt.Errorf("%s: sheet %q: %w", path, sheet, err)
	}
	return parseRows(rows, cols)
}

func parseRows(rows [][]string, cols Columns) (Series, error) {
	tc, err := columnIndex(cols.Time)
	if err != nil {
		return Series{}, err
	}
	vc, err := columnIndex(cols.Value)
	if err != nil {
		return Series{}, err
	}
	ac := -1
	if cols.Alert != "" {
		if ac, err = columnIndex(cols.Alert); err != nil {
			return Series{}, err
		}
	}

	var s Series
	if ac >= 0 {
		s.Alerts = []float64{}
	}
	for r, row := range rows {
		raw := cell(row, tc)
		if raw == "" {
			continue
		}
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if r == 0 {
				s.Name = cell(row, vc)
				continue
			}
			return Series{}, fmt.Errorf("row %d: time %q: %w", r+1, raw, err)
		}
		if n := len(s.Time); n > 0 && t < s.Time[n-1] {
			return Series{}, fmt.Errorf("row %d: %w", r+1, ErrUnordered)
		}

		s.Time = append(s.Time, t)
		s.Values = append(s.Values, number(cell(row, vc)))
		if ac >= 0 {
			s.Alerts = append(s.Alerts, number(cell(row, ac)))
		}
	}
	if len(s.Time) == 0 {
		return Series{}, ErrNoRows
	}
	return s, nil
}

func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(name))
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n - 1, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
