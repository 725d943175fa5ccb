package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Orders"

// TemplateHeaders returns the header row for a blank import file, with
// required columns marked by a trailing "*"
func TemplateHeaders() []string {
	required := make(map[string]bool, len(requiredRules))
	for _, r := range requiredRules {
		required[r.Column] = true
	}

	headers := make([]string, len(Columns))
	for i, col := range Columns {
		if required[col] {
			headers[i] = col + headerMarker
		} else {
			headers[i] = col
		}
	}
	return headers
}

// TemplateCSV renders the import template as CSV
func TemplateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TemplateHeaders()); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}

// TemplateXLSX renders the import template as a workbook
func TemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}
	headers := TemplateHeaders()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(templateSheet, "A1", &row); err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}
