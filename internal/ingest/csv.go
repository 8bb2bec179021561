// Package ingest parses seed CSV files into domain records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// table is a header-indexed CSV reader.
type table struct {
	reader *csv.Reader
	index  map[string]int
	line   int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// Excel exports prefix the first header with a BOM.
		h = strings.TrimPrefix(h, "\ufeff")
		index[normalizeColumnName(h)] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[normalizeColumnName(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return &table{reader: reader, index: index, line: 1}, nil
}

// next returns the next record, or io.EOF.
func (t *table) next() (row, error) {
	for {
		record, err := t.reader.Read()
		if err != nil {
			return row{}, err
		}
		t.line, _ = t.reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		return row{table: t, record: record}, nil
	}
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type row struct {
	table  *table
	record []string
}

func (r row) str(column string) string {
	idx, ok := r.table.index[normalizeColumnName(column)]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r row) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", r.table.line, fmt.Sprintf(format, args...))
}

func (r row) float(column string) (float64, error) {
	v := r.str(column)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, r.errorf("invalid %s %q", column, v)
	}
	return f, nil
}

func (r row) int(column string) (int, error) {
	f, err := r.float(column)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, r.errorf("%s must be a whole number, got %v", column, f)
	}
	return int(f), nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (r row) time(column string, loc *time.Location) (*time.Time, error) {
	v := r.str(column)
	if v == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, r.errorf("invalid %s %q", column, v)
}
