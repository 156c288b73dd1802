// Package export serializes a filtered table for download: CSV,
// spreadsheet (XLSX), and the dynamic filenames that encode the active
// selections.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tuxboard/internal/display"
	"tuxboard/internal/table"
)

// SheetName is the single sheet written to spreadsheet exports.
const SheetName = "Filtered Data"

// header returns the export header row in column order.
func header() []string {
	titles := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		titles[i] = display.ColumnTitle(string(col))
	}
	return titles
}

// CSV writes the table as CSV with a header row.
func CSV(w io.Writer, t table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, r := range t.Rows() {
		for i, col := range table.Columns {
			record[i] = table.Value(r, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// Excel writes the table as an XLSX workbook with one sheet.
func Excel(w io.Writer, t table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}

	cells := make([]any, len(table.Columns))
	for i, title := range header() {
		cells[i] = title
	}
	if err := setRow(f, 1, cells); err != nil {
		return err
	}

	for n, r := range t.Rows() {
		for i, col := range table.Columns {
			cells[i] = table.Value(r, col)
		}
		if err := setRow(f, n+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("export: cell name: %w", err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("export: set row %d: %w", rowNum, err)
	}
	return nil
}

// Filename builds a download filename from the active selections:
// prefix, then each column's chosen values joined by underscores, then
// the extension. With no selections the name is just prefix.ext.
func Filename(prefix, ext string, sel table.Selection) string {
	var parts []string
	for _, col := range table.FilterChain {
		if values := sel.Values(col); len(values) > 0 {
			parts = append(parts, strings.Join(values, "_"))
		}
	}
	if len(parts) == 0 {
		return prefix + "." + ext
	}
	return prefix + "_" + strings.Join(parts, "_") + "." + ext
}
