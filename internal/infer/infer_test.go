package infer_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/config"
	"planfill/internal/domain"
	"planfill/internal/grid"
	"planfill/internal/infer"
)

func newEngine() *infer.Engine {
	return infer.New(infer.DefaultVocabulary(), infer.DefaultOptions())
}

func inferCells(tables [][][]string) domain.Structure {
	return newEngine().Infer(grid.FromCells(tables))
}

func TestGeneric_LabelRightOfBlank(t *testing.T) {
	structure := inferCells([][][]string{
		{{"Course Name", ""}},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "Course Name", structure[0].Key)
	assert.Equal(t, "Course Name", structure[0].Label)
	assert.Equal(t, domain.CellRef{Table: 0, Row: 0, Col: 1}, structure[0].Target)
	assert.False(t, structure[0].Sequential)
}

func TestGeneric_FallsBackToCellBelow(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Objectives", "taken"},
			{"", "x"},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, domain.CellRef{Table: 0, Row: 1, Col: 0}, structure[0].Target)
}

func TestGeneric_RightWinsOverBelow(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Objectives", ""},
			{"", "x"},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, domain.CellRef{Table: 0, Row: 0, Col: 1}, structure[0].Target)
}

func TestGeneric_NoBlankNeighborNoBinding(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Course Name", "Algorithms"},
			{"filled", "also filled"},
		},
	})

	assert.Empty(t, structure)
}

func TestGeneric_UniqueTargets(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Instructor", "", "Department"},
			{"Class", "", "Location"},
		},
	})

	seen := map[domain.CellRef]bool{}
	for _, b := range structure {
		assert.False(t, seen[b.Target], "target %v bound twice", b.Target)
		seen[b.Target] = true
	}
}

func TestGeneric_SkipsInstructionalProse(t *testing.T) {
	long := "This template is used to plan one classroom session; complete every field before the term starts."
	structure := inferCells([][][]string{
		{
			{long, ""},
			{"Please fill in as appropriate", ""},
			{"Instructor", ""},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "Instructor", structure[0].Key)
}

func TestGeneric_RepeatedShortLabelDropped(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Remarks", ""},
		},
		{
			{"Remarks", ""},
		},
	})

	// Only the first occurrence of a repeated short label binds.
	require.Len(t, structure, 1)
	assert.Equal(t, domain.CellRef{Table: 0, Row: 0, Col: 1}, structure[0].Target)
}

func TestGeneric_SectionHeaderQualifiesKey(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Learner Analysis", "Knowledge Base", ""},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "Learner Analysis > Knowledge Base", structure[0].Key)
	assert.Equal(t, "Knowledge Base", structure[0].Label)
}

func TestGeneric_ContextLookupLeftNeighbor(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Assessment Method", "Notes", ""},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "Assessment Method > Notes", structure[0].Key)
}

func TestGeneric_ContextLookupUpNeighbor(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Homework Design"},
			{"Other", ""},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "Homework Design > Other", structure[0].Key)
}

func TestGeneric_ContextLookupDisabled(t *testing.T) {
	opts := infer.DefaultOptions()
	opts.ContextLookup = false
	e := infer.New(infer.DefaultVocabulary(), opts)

	structure := e.Infer(grid.FromCells([][][]string{
		{
			{"Homework Design"},
			{"Other", ""},
		},
	}))

	require.Len(t, structure, 1)
	assert.Equal(t, "Other", structure[0].Key)
}

func matrixTable(dataRows int) [][][]string {
	table := [][]string{
		{"Teaching Phase", "Student Activity"},
		{"before class", "before class"},
	}
	for i := 0; i < dataRows; i++ {
		table = append(table, []string{fmt.Sprintf("step %d", i+1), ""})
	}
	return [][][]string{table}
}

func TestFromConfig_VocabularyOverrides(t *testing.T) {
	engine := infer.FromConfig(&config.InferConfig{
		InstructionalMinRunes: 60,
		ShortLabelMaxRunes:    10,
		ContextLookup:         true,
		MatrixHeaders:         []string{"lecture content"},
		DefaultPhase:          "session",
	})

	structure := engine.Infer(grid.FromCells([][][]string{
		{
			{"Teaching Phase", "Lecture Content"},
			{"intro", ""},
		},
	}))

	require.Len(t, structure, 1)
	assert.Equal(t, "session > Lecture Content_row1", structure[0].Key)
	assert.Equal(t, "session", structure[0].Phase)
}

func TestFromConfig_EmptyListsKeepDefaults(t *testing.T) {
	engine := infer.FromConfig(&config.InferConfig{
		InstructionalMinRunes: 60,
		ShortLabelMaxRunes:    10,
		ContextLookup:         true,
	})

	structure := engine.Infer(grid.FromCells([][][]string{
		{
			{"Teaching Phase", "Teaching Content"},
			{"intro", ""},
		},
	}))

	require.Len(t, structure, 1)
	assert.Equal(t, "process > Teaching Content_row1", structure[0].Key)
}

func TestMatrix_PhaseRowsKeyedByRowIndex(t *testing.T) {
	structure := inferCells(matrixTable(10))

	require.Len(t, structure, 10)
	targets := map[domain.CellRef]bool{}
	for i, b := range structure {
		row := i + 2 // header row and phase row precede the data
		assert.Equal(t, fmt.Sprintf("before class > Student Activity_row%d", row), b.Key)
		assert.Equal(t, "Student Activity", b.Label)
		assert.Equal(t, "before class", b.Phase)
		assert.True(t, b.Sequential)
		assert.False(t, targets[b.Target])
		targets[b.Target] = true
	}
}

func TestMatrix_PhaseSwitchAndRepeatedHeader(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Teaching Phase", "Instructor Activity"},
			{"before class", "before class"},
			{"warm-up", ""},
			{"during class", "during class"},
			{"lecture", ""},
			// Repeated phase header, e.g. the table continued on a
			// second page. Must not reset the phase.
			{"during class", "during class"},
			{"exercise", ""},
			{"after class", "after class"},
			{"review", ""},
		},
	})

	require.Len(t, structure, 4)
	assert.Equal(t, "before class", structure[0].Phase)
	assert.Equal(t, "during class", structure[1].Phase)
	assert.Equal(t, "during class", structure[2].Phase)
	assert.Equal(t, "after class", structure[3].Phase)
	assert.Equal(t, "during class > Instructor Activity_row6", structure[2].Key)
}

func TestMatrix_DefaultPhaseBeforeFirstToken(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Teaching Phase", "Teaching Content"},
			{"intro", ""},
		},
	})

	require.Len(t, structure, 1)
	assert.Equal(t, "process", structure[0].Phase)
	assert.Equal(t, "process > Teaching Content_row1", structure[0].Key)
}

func TestMatrix_PhaseRowCap(t *testing.T) {
	opts := infer.DefaultOptions()
	opts.PhaseRowCap = 3
	e := infer.New(infer.DefaultVocabulary(), opts)

	structure := e.Infer(grid.FromCells(matrixTable(10)))

	assert.Len(t, structure, 3)
}

func TestMatrix_HeaderCellNotBound(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Teaching Phase", "Student Activity", "Design Rationale"},
			{"step", "", ""},
		},
	})

	for _, b := range structure {
		assert.NotEqual(t, 0, b.Target.Row, "header row must not be a target")
	}
	assert.Len(t, structure, 2)
}

func TestInfer_EmptySnapshot(t *testing.T) {
	assert.Empty(t, inferCells(nil))
	assert.Empty(t, inferCells([][][]string{{}}))
}

func TestInfer_Idempotent(t *testing.T) {
	cells := [][][]string{
		{
			{"Course Name", ""},
			{"Learner Analysis", "Knowledge Base", ""},
		},
		{
			{"Teaching Phase", "Student Activity"},
			{"before class", "before class"},
			{"warm-up", ""},
		},
	}
	s := grid.FromCells(cells)
	e := newEngine()

	first := e.Infer(s)
	second := e.Infer(s)

	assert.Equal(t, first, second)
}

func TestInfer_MixedTables(t *testing.T) {
	structure := inferCells([][][]string{
		{
			{"Course Name", ""},
			{"Instructor", ""},
		},
		{
			{"Teaching Phase", "Student Activity"},
			{"before class", "before class"},
			{"reading", ""},
		},
	})

	require.Len(t, structure, 3)
	assert.Equal(t, "Course Name", structure[0].Key)
	assert.Equal(t, "Instructor", structure[1].Key)
	assert.Equal(t, "before class > Student Activity_row2", structure[2].Key)
}
