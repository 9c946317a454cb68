package infer

import (
	"unicode/utf8"

	"planfill/internal/domain"
	"planfill/internal/grid"
)

// scanGenericTable pairs label cells with an adjacent blank cell,
// preferring the cell to the right over the cell below. Labels that
// read as authored prose and labels already bound elsewhere are
// skipped; ambiguous labels get a neighbor- or section-qualified key.
func (e *Engine) scanGenericTable(s *grid.Snapshot, table int, c *claims) domain.Structure {
	var structure domain.Structure
	for r := 0; r < s.RowCount(table); r++ {
		for col := 0; col < s.ColCount(table, r); col++ {
			text, err := s.Text(table, r, col)
			if err != nil || text == "" {
				continue
			}
			if e.isInstructional(text) {
				continue
			}
			norm := Normalize(text)
			if c.labels[norm] {
				continue
			}

			target, ok := e.adjacentBlank(s, table, r, col, c)
			if !ok {
				continue
			}

			key := e.qualifyKey(s, table, r, col, text)
			if c.keys[key] {
				continue
			}

			structure = append(structure, domain.Binding{
				Key:    key,
				Label:  text,
				Target: target,
			})
			c.targets[target] = true
			c.keys[key] = true
			if utf8.RuneCountInString(norm) < e.opts.ShortLabelMaxRunes {
				c.labels[norm] = true
			}
		}
	}
	return structure
}

// adjacentBlank returns the label's target cell: right if blank and
// unclaimed, else below. At most one target per label.
func (e *Engine) adjacentBlank(s *grid.Snapshot, table, row, col int, c *claims) (domain.CellRef, bool) {
	for _, cand := range []domain.CellRef{
		{Table: table, Row: row, Col: col + 1},
		{Table: table, Row: row + 1, Col: col},
	} {
		text, err := s.Text(cand.Table, cand.Row, cand.Col)
		if err != nil || text != "" {
			continue
		}
		if c.targets[cand] {
			continue
		}
		return cand, true
	}
	return domain.CellRef{}, false
}

// qualifyKey derives the binding key for a label. Ambiguous labels are
// qualified with the nearest distinct neighbor (left, then up) when
// context lookup is enabled; otherwise the row's section header
// qualifies when one is present. Unambiguous labels keep their text.
func (e *Engine) qualifyKey(s *grid.Snapshot, table, row, col int, label string) string {
	if e.opts.ContextLookup && e.isAmbiguous(label) {
		if neighbor := e.contextNeighbor(s, table, row, col, label); neighbor != "" {
			return neighbor + " > " + label
		}
	}
	if header := e.sectionHeader(s, table, row, label); header != "" {
		return header + " > " + label
	}
	return label
}

// isAmbiguous reports whether a label is too short or too generic to
// serve as a key on its own.
func (e *Engine) isAmbiguous(label string) bool {
	norm := Normalize(label)
	return utf8.RuneCountInString(norm) < ambiguousLabelRunes || e.stopSet[norm]
}

// contextNeighbor walks left on the row, then up the column, and
// returns the first non-empty cell whose text differs from the label.
// Left wins over up.
func (e *Engine) contextNeighbor(s *grid.Snapshot, table, row, col int, label string) string {
	normLabel := Normalize(label)
	for cc := col - 1; cc >= 0; cc-- {
		text, err := s.Text(table, row, cc)
		if err != nil || text == "" {
			continue
		}
		if Normalize(text) != normLabel {
			return text
		}
	}
	for rr := row - 1; rr >= 0; rr-- {
		text, err := s.Text(table, rr, col)
		if err != nil || text == "" {
			continue
		}
		if Normalize(text) != normLabel {
			return text
		}
	}
	return ""
}

// sectionHeader returns the row's first-column text when it matches
// the section vocabulary and is not the label itself.
func (e *Engine) sectionHeader(s *grid.Snapshot, table, row int, label string) string {
	text, err := s.Text(table, row, 0)
	if err != nil || text == "" {
		return ""
	}
	norm := Normalize(text)
	if norm == Normalize(label) {
		return ""
	}
	for _, h := range e.sectionHeaders {
		if norm == h {
			return text
		}
	}
	return ""
}
