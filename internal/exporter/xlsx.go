package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/guregu/null/v6"
	"github.com/xuri/excelize/v2"

	"econdata/pkg/contracts/domain"
)

// SaveTableXLSX writes the table to an Excel workbook using the same
// layout as WriteTableCSV. Dates are written as 2006-01-02 strings and
// missing cells are left empty.
func SaveTableXLSX(path string, table *domain.Table, sheet string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	slog.Info("Writing table XLSX",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.NumRows()))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	names := table.Columns()
	if err := setCell(f, sheet, 1, 1, "date"); err != nil {
		return err
	}
	columns := make([][]null.Float, len(names))
	for i, name := range names {
		if err := setCell(f, sheet, i+2, 1, name); err != nil {
			return err
		}
		columns[i], _ = table.Column(name)
	}

	for rowIdx, date := range table.Dates() {
		row := rowIdx + 2
		if err := setCell(f, sheet, 1, row, date.Format(dateLayout)); err != nil {
			return err
		}
		for colIdx, col := range columns {
			if !col[rowIdx].Valid {
				continue
			}
			if err := setCell(f, sheet, colIdx+2, row, col[rowIdx].Float64); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
