package csv

import (
	encodingcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"conference-clipper/domain/talk"
)

// Columns maps each talk field to a zero-based column position
type Columns struct {
	Room  int
	Title int
	Start int
	End   int
	URL   int
}

// DefaultColumns matches the talks spreadsheet export
var DefaultColumns = Columns{Room: 0, Title: 3, Start: 4, End: 7, URL: 10}

// Reader reads schedule rows from a CSV export
type Reader struct {
	columns    Columns
	skipHeader bool
	comma      rune
}

// ReaderOption is a functional option for configuring Reader
type ReaderOption func(*Reader)

// WithColumns sets the column mapping
func WithColumns(c Columns) ReaderOption {
	return func(r *Reader) {
		r.columns = c
	}
}

// WithSkipHeader drops the first row
func WithSkipHeader(skip bool) ReaderOption {
	return func(r *Reader) {
		r.skipHeader = skip
	}
}

// WithComma sets the field delimiter (default ',')
func WithComma(comma rune) ReaderOption {
	return func(r *Reader) {
		r.comma = comma
	}
}

// NewReader creates a schedule reader
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		columns: DefaultColumns,
		comma:   ',',
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ReadFile reads every row of the file at path
func (r *Reader) ReadFile(path string) ([]talk.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule: %w", err)
	}
	defer f.Close()

	records, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", path, err)
	}
	return records, nil
}

// Read maps every row to a talk.Record without validating it. Rows too
// short for the mapping get empty fields, which validation then rejects.
func (r *Reader) Read(in io.Reader) ([]talk.Record, error) {
	cr := encodingcsv.NewReader(in)
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records []talk.Record
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if len(row) > 0 {
				row[0] = strings.TrimPrefix(row[0], "\ufeff")
			}
			if r.skipHeader {
				continue
			}
		}

		records = append(records, talk.Record{
			Room:  field(row, r.columns.Room),
			Title: field(row, r.columns.Title),
			Start: field(row, r.columns.Start),
			End:   field(row, r.columns.End),
			URL:   field(row, r.columns.URL),
			Line:  line,
		})
	}

	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
