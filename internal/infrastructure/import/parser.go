// Package csvimport turns uploaded order spreadsheets into validated orders.
//
// Parsing is format agnostic: a RecordReader yields RawRecords in file order
// whether the upload is delimited text or an XLSX workbook. Normalize maps a
// RawRecord onto a CandidateOrder and OrderValidator checks it.
package csvimport

import (
	"path/filepath"
	"strings"
)

// Format identifies the encoding of an uploaded file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// headerMarker flags required columns in human-edited templates ("Sku*").
const headerMarker = "*"

// DetectFormat picks the format from the file extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// RawRecord is one data row keyed by normalized header name
type RawRecord struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *RawRecord) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *RawRecord) IsEmpty() bool {
	for _, v := range r.Data {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RecordReader yields the rows of one uploaded file. The sequence is lazy
// and can only be walked once.
type RecordReader interface {
	Format() Format
	Headers() []string
	// Next returns io.EOF after the last record
	Next() (*RawRecord, error)
	Close() error
}

// ParserOption is a functional option for record readers
type ParserOption func(*parserConfig)

type parserConfig struct {
	delimiter  rune
	lazyQuotes bool
	sheet      string
}

// WithDelimiter sets the CSV field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(c *parserConfig) {
		c.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling for CSV input
func WithLazyQuotes(lazy bool) ParserOption {
	return func(c *parserConfig) {
		c.lazyQuotes = lazy
	}
}

// WithSheet reads the named worksheet instead of the first one
func WithSheet(name string) ParserOption {
	return func(c *parserConfig) {
		c.sheet = name
	}
}

// NewRecordReader opens data as the format implied by fileName.
func NewRecordReader(data []byte, fileName string, opts ...ParserOption) (RecordReader, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	cfg := &parserConfig{
		delimiter:  ',',
		lazyQuotes: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if format == FormatXLSX {
		r, err := newXLSXRecordReader(data, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	r, err := newCSVRecordReader(data, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NormalizeHeader trims a header cell and strips required-field markers.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ReplaceAll(h, headerMarker, "")
	return strings.TrimSpace(h)
}

func normalizeHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = NormalizeHeader(h)
	}
	return headers
}

func hasHeader(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return true
		}
	}
	return false
}

// buildRecord maps positional cells onto header names. Cells beyond the
// header are dropped; missing trailing cells become "".
func buildRecord(line int, headers, cells []string) *RawRecord {
	rec := &RawRecord{
		LineNumber: line,
		Data:       make(map[string]string, len(headers)),
	}
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(cells) {
			rec.Data[header] = cells[i]
		} else {
			rec.Data[header] = ""
		}
	}
	return rec
}
