package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"

	"planfill/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Key",
	"Label",
	"Phase",
	"Sequential",
	"Table",
	"Row",
	"Column",
}

// Writer wraps csv.Writer for exporting inferred structures as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteStructure converts a structure's bindings to CSV rows and writes them.
func (w *Writer) WriteStructure(structure domain.Structure) error {
	for i := range structure {
		row := bindingToRow(&structure[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// bindingToRow converts a single binding to a string slice matching columns.
func bindingToRow(b *domain.Binding) []string {
	return []string{
		b.Key,
		b.Label,
		b.Phase,
		strconv.FormatBool(b.Sequential),
		strconv.Itoa(b.Target.Table),
		strconv.Itoa(b.Target.Row),
		strconv.Itoa(b.Target.Col),
	}
}

// Export writes a BOM, the header and every binding to w.
func Export(w io.Writer, structure domain.Structure) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteStructure(structure); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
