// Package ingest loads the flat maternal-health source table and fans each
// row out into beneficiaries, pregnancies, deliveries, children and scheme
// applications with their derived state computed inline.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Source streams rows from a CSV export of the source table. The header row
// names columns; lookups are case-insensitive and ignore padding, so hand
// edited exports still parse.
type Source struct {
	reader  *csv.Reader
	columns map[string]int
	index   int
}

// NewSource wraps a CSV stream. It consumes the header row immediately and
// fails if the stream has none.
func NewSource(r io.Reader) (*Source, error) {
	br := bufio.NewReader(r)

	// Spreadsheet exports often lead with a UTF-8 BOM.
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read source header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeColumn(name)] = i
	}

	return &Source{reader: cr, columns: columns}, nil
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Next returns the next row, or io.EOF when the stream is exhausted. A
// malformed record is returned as an error with the row preserved nil so the
// caller can count and skip it.
func (s *Source) Next() (*Row, error) {
	record, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	s.index++
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", s.index, err)
	}
	return &Row{Index: s.index, columns: s.columns, record: record}, nil
}

// Row is one source-table record. Index is 1-based over data rows.
type Row struct {
	Index   int
	columns map[string]int
	record  []string
}

// Get returns the trimmed cell under the named column, empty when the column
// is absent or the record is short.
func (r *Row) Get(column string) string {
	i, ok := r.columns[normalizeColumn(column)]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// Bool reads Yes/No style flags. Empty and unrecognized values are false.
func (r *Row) Bool(column string) bool {
	switch strings.ToLower(r.Get(column)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

// Int reads an integer cell, tolerating float renderings ("3.0"). Missing or
// unparseable cells return def.
func (r *Row) Int(column string, def int) int {
	s := r.Get(column)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// Float reads a numeric cell, returning def when missing or unparseable.
func (r *Row) Float(column string, def float64) float64 {
	s := r.Get(column)
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}
