package grid

import (
	"strings"

	"planfill/internal/domain"
	"planfill/internal/port"
)

// Snapshot is an immutable copy of a document's cell text with every
// value whitespace-trimmed. Structure inference reads the snapshot
// only; the document itself stays untouched until writing.
type Snapshot struct {
	tables [][][]string
}

// FromDocument reads every cell of the document into a Snapshot.
func FromDocument(doc port.TableDocument) *Snapshot {
	tables := make([][][]string, doc.TableCount())
	for t := range tables {
		rows := make([][]string, doc.RowCount(t))
		for r := range rows {
			cols := make([]string, doc.ColCount(t, r))
			for c := range cols {
				text, err := doc.CellText(t, r, c)
				if err != nil {
					continue
				}
				cols[c] = strings.TrimSpace(text)
			}
			rows[r] = cols
		}
		tables[t] = rows
	}
	return &Snapshot{tables: tables}
}

// FromCells builds a Snapshot directly from cell text, trimming each
// value.
func FromCells(tables [][][]string) *Snapshot {
	cp := make([][][]string, len(tables))
	for t, rows := range tables {
		cp[t] = make([][]string, len(rows))
		for r, row := range rows {
			cp[t][r] = make([]string, len(row))
			for c, text := range row {
				cp[t][r][c] = strings.TrimSpace(text)
			}
		}
	}
	return &Snapshot{tables: cp}
}

// TableCount returns the number of tables.
func (s *Snapshot) TableCount() int {
	return len(s.tables)
}

// RowCount returns the number of rows in a table, zero when the table
// does not exist.
func (s *Snapshot) RowCount(table int) int {
	if table < 0 || table >= len(s.tables) {
		return 0
	}
	return len(s.tables[table])
}

// ColCount returns the number of columns in a row, zero when the row
// does not exist.
func (s *Snapshot) ColCount(table, row int) int {
	if table < 0 || table >= len(s.tables) {
		return 0
	}
	if row < 0 || row >= len(s.tables[table]) {
		return 0
	}
	return len(s.tables[table][row])
}

// Text returns the trimmed text at the coordinate. Out-of-range access
// returns domain.ErrNoCell; callers treat it as "no such cell", never
// as fatal.
func (s *Snapshot) Text(table, row, col int) (string, error) {
	if table < 0 || table >= len(s.tables) {
		return "", domain.ErrNoCell
	}
	rows := s.tables[table]
	if row < 0 || row >= len(rows) {
		return "", domain.ErrNoCell
	}
	if col < 0 || col >= len(rows[row]) {
		return "", domain.ErrNoCell
	}
	return rows[row][col], nil
}
