// internal/dataset/csv.go
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var ErrHeaderNotFound = errors.New("no header row containing \"Name\"")

// CSVSource reads the housing sheet export. Rows above the first row that
// has a cell equal to "Name" (title banners, notes) are skipped.
type CSVSource struct {
	Path     string
	Encoding string // latin1 (default) or utf8
}

func NewCSVSource(path, encoding string) *CSVSource {
	return &CSVSource{Path: path, Encoding: encoding}
}

func (s *CSVSource) ID() string {
	return "csv:" + s.Path
}

func (s *CSVSource) Fetch(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f, s.Encoding)
}

// ReadCSV parses records from r. encoding "utf8" reads r as-is; anything
// else decodes it as ISO-8859-1.
func ReadCSV(ctx context.Context, r io.Reader, encoding string) ([]Record, error) {
	if !strings.EqualFold(encoding, "utf8") && !strings.EqualFold(encoding, "utf-8") {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	var out []Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		if header == nil {
			if isHeader(row) {
				header = trimAll(row)
			}
			continue
		}

		rec := make(Record, len(header))
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		if blank(rec) {
			continue
		}
		out = append(out, rec)
	}

	if header == nil {
		return nil, ErrHeaderNotFound
	}
	return out, nil
}

func isHeader(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) == ColName {
			return true
		}
	}
	return false
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}
