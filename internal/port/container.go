package port

import "io"

// TableDocument is a loaded template exposing its tables as a grid of
// text cells. Coordinates are zero-based; out-of-range access returns
// domain.ErrNoCell.
type TableDocument interface {
	TableCount() int
	RowCount(table int) int
	ColCount(table, row int) int
	CellText(table, row, col int) (string, error)
	SetCellText(table, row, col int, text string) error
	Save(w io.Writer) error
}
