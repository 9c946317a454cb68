package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"planfill/internal/domain"
	"planfill/internal/port"
)

// xlsxDocument adapts a .xlsx workbook to port.TableDocument. Each
// sheet is one table. The grid is padded out to the sheet's recorded
// dimension so blank trailing cells stay addressable; excelize trims
// them from GetRows.
type xlsxDocument struct {
	f      *excelize.File
	sheets []string
	rows   [][][]string
}

// OpenXlsx parses a .xlsx workbook held in memory.
func OpenXlsx(data []byte) (port.TableDocument, error) {
	d, err := openXlsx(data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func openXlsx(data []byte) (*xlsxDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}

	sheets := f.GetSheetList()
	rows := make([][][]string, len(sheets))
	for i, sheet := range sheets {
		got, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}

		nRows, nCols := len(got), 0
		for _, r := range got {
			if len(r) > nCols {
				nCols = len(r)
			}
		}
		if dim, err := f.GetSheetDimension(sheet); err == nil {
			dr, dc := dimensionSize(dim)
			if dr > nRows {
				nRows = dr
			}
			if dc > nCols {
				nCols = dc
			}
		}

		grid := make([][]string, nRows)
		for r := range grid {
			row := make([]string, nCols)
			if r < len(got) {
				copy(row, got[r])
			}
			grid[r] = row
		}
		rows[i] = grid
	}

	return &xlsxDocument{f: f, sheets: sheets, rows: rows}, nil
}

// dimensionSize parses a sheet dimension reference like "A1:F25".
func dimensionSize(dim string) (rows, cols int) {
	parts := strings.Split(dim, ":")
	ref := parts[len(parts)-1]
	c, r, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0, 0
	}
	return r, c
}

func (d *xlsxDocument) TableCount() int {
	return len(d.sheets)
}

func (d *xlsxDocument) RowCount(table int) int {
	if table < 0 || table >= len(d.rows) {
		return 0
	}
	return len(d.rows[table])
}

func (d *xlsxDocument) ColCount(table, row int) int {
	if table < 0 || table >= len(d.rows) {
		return 0
	}
	if row < 0 || row >= len(d.rows[table]) {
		return 0
	}
	return len(d.rows[table][row])
}

func (d *xlsxDocument) CellText(table, row, col int) (string, error) {
	if table < 0 || table >= len(d.rows) {
		return "", domain.ErrNoCell
	}
	grid := d.rows[table]
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return "", domain.ErrNoCell
	}
	return grid[row][col], nil
}

func (d *xlsxDocument) SetCellText(table, row, col int, text string) error {
	if _, err := d.CellText(table, row, col); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("cell name for (%d,%d): %w", row, col, err)
	}
	if err := d.f.SetCellStr(d.sheets[table], cell, text); err != nil {
		return fmt.Errorf("setting cell %s: %w", cell, err)
	}
	d.rows[table][row][col] = text
	return nil
}

func (d *xlsxDocument) Save(w io.Writer) error {
	_, err := d.f.WriteTo(w)
	return err
}
