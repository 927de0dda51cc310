// Package decode turns uploaded spreadsheet files into raw rows for the
// import pipeline. CSV and XLSX are supported; the format is detected from
// the file content first and the declared filename second, so a renamed
// file still decodes correctly.
package decode

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/storefleet/importer/internal/core"
)

// utf8BOM is prepended by Windows spreadsheet programs and must never reach
// the first header name.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// zipMagic is the local-file-header signature shared by all XLSX files.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Spreadsheet decodes CSV and XLSX uploads. The zero value is ready to use.
type Spreadsheet struct{}

// New returns a spreadsheet decoder.
func New() *Spreadsheet { return &Spreadsheet{} }

// Decode reads the whole source and returns the header row plus one RawRow
// per non-empty data row. Data rows are numbered from 2; the header is row 1.
func (d *Spreadsheet) Decode(r io.Reader, declaredName string) ([]string, []core.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, errors.New("file is empty")
	}

	if bytes.HasPrefix(data, zipMagic) {
		return decodeXLSX(data)
	}
	if strings.EqualFold(filepath.Ext(declaredName), ".xlsx") {
		// Declared XLSX without the zip signature cannot be a real workbook.
		return nil, nil, errors.New("unsupported format: file is not a valid XLSX workbook")
	}
	return decodeCSV(data)
}

func decodeXLSX(data []byte) ([]string, []core.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("unsupported format: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook contains no sheets")
	}

	// Only the first sheet is imported; additional sheets are ignored.
	lines, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return assemble(lines)
}

func decodeCSV(data []byte) ([]string, []core.RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ToValidUTF8(string(data), "�")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("unsupported format: %w", err)
	}
	return assemble(lines)
}

// sniffDelimiter picks the CSV delimiter from the first line. Regional
// spreadsheet exports use semicolons; tab-separated exports also appear.
func sniffDelimiter(text string) rune {
	first := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	if strings.Count(first, "\t") > strings.Count(first, ",") {
		return '\t'
	}
	return ','
}

// assemble converts raw cell lines into the header row and data rows.
// Entirely empty lines are skipped but keep their row numbers, so reported
// line numbers match what the user sees in their spreadsheet program.
func assemble(lines [][]string) ([]string, []core.RawRow, error) {
	if len(lines) == 0 {
		return nil, nil, errors.New("file contains no rows")
	}

	headers := make([]string, 0, len(lines[0]))
	for _, h := range lines[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if blank(headers) {
		return nil, nil, errors.New("header row is empty")
	}

	var rows []core.RawRow
	for i, line := range lines[1:] {
		if blank(line) {
			continue
		}
		row := core.RawRow{
			Line:   i + 2,
			Header: headers,
			Cells:  make(map[string]string, len(headers)),
		}
		for j, h := range headers {
			if h == "" {
				continue
			}
			if _, seen := row.Cells[h]; seen {
				continue
			}
			if j < len(line) {
				row.Cells[h] = line[j]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
