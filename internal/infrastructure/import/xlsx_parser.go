package csvimport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// workbookDateLayout is how date-styled cells are handed to the normalizer
const workbookDateLayout = "1/2/2006 15:04:05"

// xlsxRecordReader reads the first worksheet of a workbook, treating the
// first row as the header
type xlsxRecordReader struct {
	file     *excelize.File
	rows     *excelize.Rows
	sheet    string
	date1904 bool
	headers  []string
	line     int

	// style index -> renders a date or time
	dateStyles map[int]bool
}

func newXLSXRecordReader(data []byte, cfg *parserConfig) (*xlsxRecordReader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &InputError{Err: fmt.Errorf("failed to open workbook: %w", err)}
	}

	sheet := cfg.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			_ = f.Close()
			return nil, ErrMissingHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, &InputError{Err: fmt.Errorf("failed to read sheet %q: %w", sheet, err)}
	}

	p := &xlsxRecordReader{file: f, rows: rows, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		p.date1904 = *props.Date1904
	}
	if err := p.parseHeader(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *xlsxRecordReader) parseHeader() error {
	for p.rows.Next() {
		p.line++
		cells, err := p.rows.Columns()
		if err != nil {
			return &InputError{Line: p.line, Err: fmt.Errorf("failed to read header: %w", err)}
		}
		headers := normalizeHeaders(cells)
		if hasHeader(headers) {
			p.headers = headers
			return nil
		}
		// Leading blank rows are not a header
	}
	if err := p.rows.Error(); err != nil {
		return &InputError{Err: err}
	}
	return ErrMissingHeader
}

// Format implements RecordReader
func (p *xlsxRecordReader) Format() Format {
	return FormatXLSX
}

// Headers implements RecordReader
func (p *xlsxRecordReader) Headers() []string {
	return p.headers
}

// Next implements RecordReader. Blank rows are skipped.
func (p *xlsxRecordReader) Next() (*RawRecord, error) {
	for p.rows.Next() {
		p.line++
		cells, err := p.rows.Columns()
		if err != nil {
			return nil, &InputError{Line: p.line, Err: err}
		}
		if err := p.resolveDates(cells); err != nil {
			return nil, &InputError{Line: p.line, Err: err}
		}
		rec := buildRecord(p.line, p.headers, cells)
		if rec.IsEmpty() {
			continue
		}
		return rec, nil
	}
	if err := p.rows.Error(); err != nil {
		return nil, &InputError{Line: p.line, Err: err}
	}
	return nil, io.EOF
}

// resolveDates replaces the display text of date-styled cells with their
// serial value rendered as workbookDateLayout. The display text follows the
// cell's number format (01-03-25, 1/3/25 0:00, ...) which no date rule accepts.
// Text typed into a date-styled cell is left alone.
func (p *xlsxRecordReader) resolveDates(cells []string) error {
	for i, v := range cells {
		if v == "" {
			continue
		}
		axis, err := excelize.CoordinatesToCellName(i+1, p.line)
		if err != nil {
			return err
		}
		styleID, err := p.file.GetCellStyle(p.sheet, axis)
		if err != nil {
			return err
		}
		if !p.isDateStyle(styleID) {
			continue
		}
		raw, err := p.file.GetCellValue(p.sheet, axis, excelize.Options{RawCellValue: true})
		if err != nil {
			return err
		}
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, p.date1904)
		if err != nil {
			continue
		}
		cells[i] = t.Format(workbookDateLayout)
	}
	return nil
}

func (p *xlsxRecordReader) isDateStyle(styleID int) bool {
	if isDate, ok := p.dateStyles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := p.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	p.dateStyles[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id renders a date or time
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code has a date or time
// token outside quoted literals, escapes and bracketed colour/locale sections
func isDateFormatCode(code string) bool {
	var inQuote, inBracket, escaped bool
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", r):
			return true
		}
	}
	return false
}

// Close implements RecordReader
func (p *xlsxRecordReader) Close() error {
	var errs []error
	if p.rows != nil {
		errs = append(errs, p.rows.Close())
		p.rows = nil
	}
	if p.file != nil {
		errs = append(errs, p.file.Close())
		p.file = nil
	}
	return errors.Join(errs...)
}
