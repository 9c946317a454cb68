package infer

import "strings"

// Vocabulary holds the word lists the classification heuristics match
// against. Matching is case-insensitive and whitespace-insensitive;
// binding keys keep the original cell text.
type Vocabulary struct {
	// MatrixHeaders mark process columns; any hit in a table's text
	// classifies the whole table as a matrix table.
	MatrixHeaders []string
	// PhaseTokens switch the current phase when a row consists of one
	// such token repeated.
	PhaseTokens []string
	// DefaultPhase scopes matrix rows seen before any phase token.
	DefaultPhase string
	// SectionHeaders qualify generic keys when one occurs in a row's
	// first column.
	SectionHeaders []string
	// Stoplist labels are too generic to stand alone and get context
	// qualification from a neighbor cell.
	Stoplist []string
	// Boilerplate fragments mark a cell as authored prose rather than
	// a label.
	Boilerplate []string
}

// DefaultVocabulary returns the word lists tuned for lesson-plan
// templates.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MatrixHeaders: []string{
			"teaching content",
			"instructor activity",
			"teacher activity",
			"student activity",
			"design rationale",
			"design intent",
		},
		PhaseTokens: []string{
			"before class",
			"during class",
			"after class",
			"reinforcement",
		},
		DefaultPhase: "process",
		SectionHeaders: []string{
			"basic information",
			"learner analysis",
			"teaching objectives",
			"objectives",
			"teaching resources",
			"resources",
			"teaching reflection",
			"reflection",
		},
		Stoplist: []string{
			"content",
			"notes",
			"remarks",
			"other",
		},
		Boilerplate: []string{
			"fill in",
			"please complete",
			"as appropriate",
			"for example",
		},
	}
}

// Normalize lowercases text and collapses interior whitespace for
// vocabulary matching and label deduplication.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

func toSet(in []string) map[string]bool {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		set[Normalize(s)] = true
	}
	return set
}
