package infer

import (
	"strings"
	"unicode/utf8"

	"planfill/internal/config"
	"planfill/internal/domain"
	"planfill/internal/grid"
)

// headerScanRows is how many leading rows of a matrix table are
// searched for process-column headers.
const headerScanRows = 3

// ambiguousLabelRunes is the length below which a generic label is
// considered too short to stand alone and gets context qualification.
const ambiguousLabelRunes = 4

// Options tunes the inference heuristics.
type Options struct {
	// InstructionalMinRunes is the length at which a cell stops being a
	// label candidate and is treated as authored prose.
	InstructionalMinRunes int
	// ShortLabelMaxRunes bounds the labels recorded for deduplication of
	// repeated generic headers.
	ShortLabelMaxRunes int
	// ContextLookup enables neighbor qualification for ambiguous labels.
	ContextLookup bool
	// PhaseRowCap bounds the data rows bound per phase in a matrix
	// table; zero means unbounded.
	PhaseRowCap int
}

// DefaultOptions returns the heuristic thresholds used in production.
func DefaultOptions() Options {
	return Options{
		InstructionalMinRunes: 60,
		ShortLabelMaxRunes:    10,
		ContextLookup:         true,
		PhaseRowCap:           0,
	}
}

// FromConfig builds an Engine from the configured thresholds and word
// lists. Any list left empty in the config keeps the built-in default.
func FromConfig(cfg *config.InferConfig) *Engine {
	vocab := DefaultVocabulary()
	if len(cfg.MatrixHeaders) > 0 {
		vocab.MatrixHeaders = cfg.MatrixHeaders
	}
	if len(cfg.PhaseTokens) > 0 {
		vocab.PhaseTokens = cfg.PhaseTokens
	}
	if cfg.DefaultPhase != "" {
		vocab.DefaultPhase = cfg.DefaultPhase
	}
	if len(cfg.SectionHeaders) > 0 {
		vocab.SectionHeaders = cfg.SectionHeaders
	}
	if len(cfg.Stoplist) > 0 {
		vocab.Stoplist = cfg.Stoplist
	}
	if len(cfg.Boilerplate) > 0 {
		vocab.Boilerplate = cfg.Boilerplate
	}
	return New(vocab, Options{
		InstructionalMinRunes: cfg.InstructionalMinRunes,
		ShortLabelMaxRunes:    cfg.ShortLabelMaxRunes,
		ContextLookup:         cfg.ContextLookup,
		PhaseRowCap:           cfg.PhaseRowCap,
	})
}

// Engine converts a grid snapshot into a Structure. It carries no
// per-run state; a single Engine serves concurrent runs.
type Engine struct {
	opts Options

	matrixHeaders  []string
	sectionHeaders []string
	boilerplate    []string
	defaultPhase   string
	phaseSet       map[string]bool
	stopSet        map[string]bool
}

// New builds an Engine from a vocabulary and options.
func New(vocab Vocabulary, opts Options) *Engine {
	return &Engine{
		opts:           opts,
		matrixHeaders:  normalizeAll(vocab.MatrixHeaders),
		sectionHeaders: normalizeAll(vocab.SectionHeaders),
		boilerplate:    normalizeAll(vocab.Boilerplate),
		defaultPhase:   Normalize(vocab.DefaultPhase),
		phaseSet:       toSet(vocab.PhaseTokens),
		stopSet:        toSet(vocab.Stoplist),
	}
}

// claims accumulates the cells, labels and keys consumed while
// scanning, so overlapping tables and re-scans never double-bind.
type claims struct {
	targets map[domain.CellRef]bool
	labels  map[string]bool
	keys    map[string]bool
}

func newClaims() *claims {
	return &claims{
		targets: map[domain.CellRef]bool{},
		labels:  map[string]bool{},
		keys:    map[string]bool{},
	}
}

// Infer scans every table of the snapshot and returns the inferred
// Structure. The result is deterministic for an unchanged snapshot; an
// empty snapshot yields an empty Structure.
func (e *Engine) Infer(s *grid.Snapshot) domain.Structure {
	c := newClaims()
	var structure domain.Structure
	for t := 0; t < s.TableCount(); t++ {
		if e.isMatrixTable(s, t) {
			structure = append(structure, e.scanMatrixTable(s, t, c)...)
		} else {
			structure = append(structure, e.scanGenericTable(s, t, c)...)
		}
	}
	return structure
}

// isMatrixTable reports whether the table's concatenated text contains
// any process-column header.
func (e *Engine) isMatrixTable(s *grid.Snapshot, table int) bool {
	var sb strings.Builder
	for r := 0; r < s.RowCount(table); r++ {
		for c := 0; c < s.ColCount(table, r); c++ {
			text, err := s.Text(table, r, c)
			if err != nil || text == "" {
				continue
			}
			sb.WriteString(text)
			sb.WriteByte(' ')
		}
	}
	joined := Normalize(sb.String())
	for _, h := range e.matrixHeaders {
		if strings.Contains(joined, h) {
			return true
		}
	}
	return false
}

// isInstructional reports whether a cell holds authored prose rather
// than a label: either long text or known boilerplate.
func (e *Engine) isInstructional(text string) bool {
	if utf8.RuneCountInString(text) > e.opts.InstructionalMinRunes {
		return true
	}
	norm := Normalize(text)
	for _, b := range e.boilerplate {
		if strings.Contains(norm, b) {
			return true
		}
	}
	return false
}
