package csvio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// readTable loads a delimited file into a header slice and data rows.
func readTable(path string, comma rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: file is empty", path)
	}
	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}
	return header, records[1:], nil
}

// columnIndex finds the first header matching one of the candidate
// names.
func columnIndex(path string, header []string, names ...string) (int, error) {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%s: required column %q not found", path, names[0])
}

// field returns the trimmed cell value, or "" when the row is short.
func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat converts a cell to float64; empty or unparsable cells
// become NaN so series keep their length.
func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// requireFloat converts a cell to float64, failing on missing or
// unparsable values. Used for configuration tables where a hole is a
// setup error.
func requireFloat(path, column, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%s: column %q is empty", path, column)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: column %q: %w", path, column, err)
	}
	return v, nil
}
