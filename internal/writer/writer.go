package writer

import (
	"fmt"

	"go.uber.org/zap"

	"planfill/internal/domain"
	"planfill/internal/port"
)

// Writer applies a ContentMap to a document's target cells. Style
// preservation is the container's job; the writer only resolves
// content and counts what it wrote.
type Writer struct {
	observer port.ProgressObserver
	logger   *zap.Logger
}

// New creates a Writer. A nil observer disables progress events.
func New(observer port.ProgressObserver, logger *zap.Logger) *Writer {
	return &Writer{observer: observer, logger: logger}
}

// Apply writes content into every binding's target cell and returns
// how many bindings were actually filled. Content is looked up by the
// qualified key first, then by the bare label. Bindings with no
// content stay blank; that is not an error.
func (w *Writer) Apply(doc port.TableDocument, structure domain.Structure, content domain.ContentMap) int {
	filled := 0
	for _, b := range structure {
		text, ok := content[b.Key]
		if !ok {
			text, ok = content[b.Label]
		}
		if !ok || text == "" {
			continue
		}
		if err := doc.SetCellText(b.Target.Table, b.Target.Row, b.Target.Col, text); err != nil {
			w.logger.Warn("skipping unwritable cell",
				zap.String("key", b.Key),
				zap.Int("table", b.Target.Table),
				zap.Int("row", b.Target.Row),
				zap.Int("col", b.Target.Col),
				zap.Error(err))
			continue
		}
		filled++
	}
	if w.observer != nil {
		w.observer.Event("fill_completed", fmt.Sprintf("%d of %d bindings filled", filled, len(structure)))
	}
	return filled
}
