package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// csvRecordReader reads delimited text with a header row
type csvRecordReader struct {
	reader  *csv.Reader
	headers []string
}

func newCSVRecordReader(data []byte, cfg *parserConfig) (*csvRecordReader, error) {
	// Spreadsheet exports often carry a UTF-8 or UTF-16 byte order mark.
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	r := csv.NewReader(decoded)
	r.Comma = cfg.delimiter
	r.LazyQuotes = cfg.lazyQuotes
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // Allow variable number of fields

	p := &csvRecordReader{reader: r}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *csvRecordReader) parseHeader() error {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader
	}
	if err != nil {
		return &InputError{Line: 1, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	p.headers = normalizeHeaders(record)
	if !hasHeader(p.headers) {
		return ErrMissingHeader
	}
	return nil
}

// Format implements RecordReader
func (p *csvRecordReader) Format() Format {
	return FormatCSV
}

// Headers implements RecordReader
func (p *csvRecordReader) Headers() []string {
	return p.headers
}

// Next implements RecordReader. Blank lines are skipped.
func (p *csvRecordReader) Next() (*RawRecord, error) {
	for {
		record, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &InputError{Line: parseErr.Line, Err: err}
			}
			return nil, &InputError{Err: err}
		}

		line, _ := p.reader.FieldPos(0)
		rec := buildRecord(line, p.headers, record)
		if rec.IsEmpty() {
			continue
		}
		return rec, nil
	}
}

// Close implements RecordReader
func (p *csvRecordReader) Close() error {
	return nil
}
