// Package catalog loads product rows from a delimited file or from Redis hashes.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain"
)

// CSVSource reads rows from a delimited text file with a header row.
// The file is re-opened and re-parsed on every LoadRows call.
type CSVSource struct {
	path      string
	delimiter rune
}

// NewCSVSource creates a file-backed catalog source. A zero delimiter means comma.
func NewCSVSource(path string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{path: path, delimiter: delimiter}
}

// LoadRows returns every data row in file order.
func (s *CSVSource) LoadRows(_ context.Context) ([]domain.Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %v: %w", s.path, err, domain.ErrCatalogUnavailable)
	}
	defer f.Close()

	rows, err := ReadRows(f, s.delimiter)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %v: %w", s.path, err, domain.ErrCatalogUnavailable)
	}
	return rows, nil
}

// Ping checks that the catalog file is present and readable.
func (s *CSVSource) Ping(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat catalog: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("catalog %s is a directory", s.path)
	}
	return nil
}

// ReadRows parses delimited text. The first record is the header. Rows shorter
// than the header get only the columns present, extra trailing fields are dropped
// and blank lines are skipped.
func ReadRows(r io.Reader, delimiter rune) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([]domain.Row, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		n := min(len(record), len(header))
		row := make(domain.Row, n)
		for i := 0; i < n; i++ {
			row[header[i]] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
