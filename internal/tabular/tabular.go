// Package tabular reads quiz sheets from CSV and xlsx files and writes xlsx exports.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when no usable worksheet exists in a workbook.
var ErrSheetNotFound = errors.New("worksheet not found")

// utf8BOM is stripped from the first CSV header cell.
const utf8BOM = "\ufeff"

// FileReader reads quiz sheets from the local filesystem.
type FileReader struct{}

var _ contract.SheetReader = &FileReader{} // Compile-time check

// NewFileReader returns a reader for local csv and xlsx files.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// ReadSheet opens path and parses it according to its extension.
func (r *FileReader) ReadSheet(ctx context.Context, path string, sheet string) (schema.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return schema.Sheet{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return schema.Sheet{}, err
	}
	defer func() { _ = f.Close() }()
	return Read(f, filepath.Base(path), sheet)
}

// Read parses r as csv or xlsx depending on the extension of name.
// It serves both local files and HTTP uploads.
func Read(r io.Reader, name string, sheet string) (schema.Sheet, error) {
	format, err := contract.DetectInputFormat(name)
	if err != nil {
		return schema.Sheet{}, err
	}
	switch format {
	case schema.CSVInput:
		return ReadCSV(r, name)
	default:
		return ReadXLSX(r, name, sheet)
	}
}

// ReadCSV parses a header row followed by data rows.
func ReadCSV(r io.Reader, source string) (schema.Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return schema.Sheet{}, fmt.Errorf("parse csv %s: %w", source, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return buildSheet(records, source, "")
}

// ReadXLSX parses a worksheet of an xlsx workbook. When sheet is empty, the
// worksheet is chosen by ResolveSheet.
func ReadXLSX(r io.Reader, source string, sheet string) (schema.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return schema.Sheet{}, fmt.Errorf("open workbook %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()

	name, err := ResolveSheet(f.GetSheetList(), sheet)
	if err != nil {
		return schema.Sheet{}, fmt.Errorf("%s: %w", source, err)
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return schema.Sheet{}, fmt.Errorf("read worksheet %q: %w", name, err)
	}
	return buildSheet(rows, source, name)
}

// ResolveSheet picks the worksheet to read. An explicit request must exist;
// otherwise "Team Analysis" is preferred over "Student Analysis".
func ResolveSheet(available []string, requested string) (string, error) {
	if requested != "" {
		if slices.Contains(available, requested) {
			return requested, nil
		}
		return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, requested, strings.Join(available, ", "))
	}
	for _, name := range []string{schema.TeamAnalysisSheet, schema.StudentAnalysisSheet} {
		if slices.Contains(available, name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: expected %q or %q", ErrSheetNotFound, schema.TeamAnalysisSheet, schema.StudentAnalysisSheet)
}

// buildSheet turns raw records into a sheet. Blank rows are dropped and
// short rows read as empty cells.
func buildSheet(records [][]string, source, name string) (schema.Sheet, error) {
	if len(records) == 0 {
		return schema.Sheet{}, fmt.Errorf("%s: no header row", source)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	sheet := schema.Sheet{Name: name, Source: source, Columns: header}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(schema.Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
