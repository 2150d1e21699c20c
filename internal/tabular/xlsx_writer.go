package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetNameLen is the worksheet name limit enforced by Excel.
const maxSheetNameLen = 31

// sheetNameReplacer removes characters Excel rejects in worksheet names.
var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// WriteXLSX writes a single-sheet workbook with a header row followed by rows.
// Nil cells are left empty.
func WriteXLSX(w io.Writer, sheetName string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := SanitizeSheetName(sheetName)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := setRow(f, name, 1, headerCells); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// SanitizeSheetName makes name acceptable as an Excel worksheet name.
func SanitizeSheetName(name string) string {
	name = strings.Trim(strings.TrimSpace(sheetNameReplacer.Replace(name)), "'")
	if name == "" {
		return "Results"
	}
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = strings.TrimSpace(string(runes[:maxSheetNameLen]))
	}
	return name
}
