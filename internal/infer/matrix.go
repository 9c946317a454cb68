package infer

import (
	"fmt"
	"sort"
	"strings"

	"planfill/internal/domain"
	"planfill/internal/grid"
)

// scanMatrixTable walks a process matrix row by row, tracking the
// current phase, and binds every blank cell under a recognized header
// column. Keys carry the phase, the header text and the row index so
// each row of the process stays individually addressable.
func (e *Engine) scanMatrixTable(s *grid.Snapshot, table int, c *claims) domain.Structure {
	headers, cols := e.headerMap(s, table)
	if len(cols) == 0 {
		return nil
	}

	var structure domain.Structure
	phase := e.defaultPhase
	phaseRows := 0

	for r := 0; r < s.RowCount(table); r++ {
		if token, ok := e.phaseRow(s, table, r); ok {
			if token != phase {
				phase = token
				phaseRows = 0
			}
			// A repeated phase header from pagination neither switches
			// nor counts as data.
			continue
		}

		if e.opts.PhaseRowCap > 0 && phaseRows >= e.opts.PhaseRowCap {
			continue
		}

		bound := false
		for _, col := range cols {
			text, err := s.Text(table, r, col)
			if err != nil || text != "" {
				continue
			}
			target := domain.CellRef{Table: table, Row: r, Col: col}
			if c.targets[target] {
				continue
			}
			key := fmt.Sprintf("%s > %s_row%d", phase, headers[col], r)
			if c.keys[key] {
				continue
			}
			structure = append(structure, domain.Binding{
				Key:        key,
				Label:      headers[col],
				Target:     target,
				Phase:      phase,
				Sequential: true,
			})
			c.targets[target] = true
			c.keys[key] = true
			bound = true
		}
		if bound {
			phaseRows++
		}
	}
	return structure
}

// headerMap searches the leading rows for process-column headers and
// returns column → header text plus the bound columns in order.
func (e *Engine) headerMap(s *grid.Snapshot, table int) (map[int]string, []int) {
	headers := map[int]string{}
	limit := s.RowCount(table)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for r := 0; r < limit; r++ {
		for col := 0; col < s.ColCount(table, r); col++ {
			if _, taken := headers[col]; taken {
				continue
			}
			text, err := s.Text(table, r, col)
			if err != nil || text == "" {
				continue
			}
			norm := Normalize(text)
			for _, h := range e.matrixHeaders {
				if strings.Contains(norm, h) {
					headers[col] = text
					break
				}
			}
		}
	}
	cols := make([]int, 0, len(headers))
	for col := range headers {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	return headers, cols
}

// phaseRow reports whether a row consists solely of one repeated phase
// token, returning the normalized token.
func (e *Engine) phaseRow(s *grid.Snapshot, table, row int) (string, bool) {
	token := ""
	for col := 0; col < s.ColCount(table, row); col++ {
		text, err := s.Text(table, row, col)
		if err != nil || text == "" {
			continue
		}
		norm := Normalize(text)
		if !e.phaseSet[norm] {
			return "", false
		}
		if token == "" {
			token = norm
			continue
		}
		if norm != token {
			return "", false
		}
	}
	return token, token != ""
}
