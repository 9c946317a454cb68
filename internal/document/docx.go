package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"planfill/internal/domain"
	"planfill/internal/port"
)

const (
	wordNS        = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	docxEntryName = "word/document.xml"
)

// docxDocument adapts a .docx archive to port.TableDocument. Only the
// top-level tables of the document body are exposed; nested tables stay
// untouched. All archive entries except word/document.xml are copied
// through byte-for-byte on save.
type docxDocument struct {
	zr       *zip.Reader
	prolog   []*xmlNode
	root     *xmlNode
	tables   []*xmlNode
	prefixes map[string]string
}

// OpenDocx parses a .docx archive held in memory.
func OpenDocx(data []byte) (port.TableDocument, error) {
	d, err := openDocx(data)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func openDocx(data []byte) (*docxDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxEntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", docxEntryName, err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", docxEntryName, err)
		}
		break
	}
	if docXML == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidTemplate, docxEntryName)
	}

	prolog, root, err := parseXMLTree(docXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
	}
	body := root.firstChild(wordNS, "body")
	if body == nil {
		return nil, fmt.Errorf("%w: document has no body", domain.ErrInvalidTemplate)
	}

	return &docxDocument{
		zr:       zr,
		prolog:   prolog,
		root:     root,
		tables:   body.childElems(wordNS, "tbl"),
		prefixes: collectPrefixes(root),
	}, nil
}

func (d *docxDocument) TableCount() int {
	return len(d.tables)
}

func (d *docxDocument) RowCount(table int) int {
	if table < 0 || table >= len(d.tables) {
		return 0
	}
	return len(d.tables[table].childElems(wordNS, "tr"))
}

func (d *docxDocument) ColCount(table, row int) int {
	if table < 0 || table >= len(d.tables) {
		return 0
	}
	rows := d.tables[table].childElems(wordNS, "tr")
	if row < 0 || row >= len(rows) {
		return 0
	}
	return len(rows[row].childElems(wordNS, "tc"))
}

func (d *docxDocument) cell(table, row, col int) (*xmlNode, error) {
	if table < 0 || table >= len(d.tables) {
		return nil, domain.ErrNoCell
	}
	rows := d.tables[table].childElems(wordNS, "tr")
	if row < 0 || row >= len(rows) {
		return nil, domain.ErrNoCell
	}
	cells := rows[row].childElems(wordNS, "tc")
	if col < 0 || col >= len(cells) {
		return nil, domain.ErrNoCell
	}
	return cells[col], nil
}

// CellText joins the cell's paragraph texts with newlines. Tabs and
// breaks inside runs read back as \t and \n.
func (d *docxDocument) CellText(table, row, col int) (string, error) {
	cell, err := d.cell(table, row, col)
	if err != nil {
		return "", err
	}
	paras := cell.childElems(wordNS, "p")
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = paragraphText(p)
	}
	return strings.Join(texts, "\n"), nil
}

// paragraphText walks a paragraph collecting run text in document
// order. Property containers are skipped so tab stop definitions do not
// leak into the text.
func paragraphText(p *xmlNode) string {
	var sb strings.Builder
	var walk func(n *xmlNode)
	walk = func(n *xmlNode) {
		for _, c := range n.children {
			if c.kind != elemNode {
				continue
			}
			if c.name.Space == wordNS {
				switch c.name.Local {
				case "pPr", "rPr":
					continue
				case "t":
					sb.WriteString(textContent(c))
					continue
				case "tab":
					sb.WriteByte('\t')
					continue
				case "br", "cr":
					sb.WriteByte('\n')
					continue
				}
			}
			walk(c)
		}
	}
	walk(p)
	return sb.String()
}

// SetCellText replaces the content of the cell's first paragraph with a
// single new run, carrying over the run properties of the paragraph's
// previous first run when present. Newlines in text become line breaks.
func (d *docxDocument) SetCellText(table, row, col int, text string) error {
	cell, err := d.cell(table, row, col)
	if err != nil {
		return err
	}

	para := cell.firstChild(wordNS, "p")
	if para == nil {
		para = &xmlNode{kind: elemNode, name: xml.Name{Space: wordNS, Local: "p"}}
		cell.children = append(cell.children, para)
	}

	var style *xmlNode
	if run := para.firstChild(wordNS, "r"); run != nil {
		if rpr := run.firstChild(wordNS, "rPr"); rpr != nil {
			style = rpr.clone()
		}
	}

	// Keep paragraph properties, drop all content.
	var kept []*xmlNode
	for _, c := range para.children {
		if c.kind == elemNode && c.name.Space == wordNS && c.name.Local == "pPr" {
			kept = append(kept, c)
		}
	}
	para.children = append(kept, newRun(text, style))
	return nil
}

func newRun(text string, style *xmlNode) *xmlNode {
	run := &xmlNode{kind: elemNode, name: xml.Name{Space: wordNS, Local: "r"}}
	if style != nil {
		run.children = append(run.children, style)
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.children = append(run.children, &xmlNode{
				kind: elemNode,
				name: xml.Name{Space: wordNS, Local: "br"},
			})
		}
		t := &xmlNode{
			kind:  elemNode,
			name:  xml.Name{Space: wordNS, Local: "t"},
			attrs: []xml.Attr{{Name: xml.Name{Space: xmlSpaceNS, Local: "space"}, Value: "preserve"}},
		}
		if line != "" {
			t.children = []*xmlNode{{kind: textNode, data: line}}
		}
		run.children = append(run.children, t)
	}
	return run
}

// Save writes the archive with the re-serialized document body. Every
// other entry keeps its original compressed bytes.
func (d *docxDocument) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range d.zr.File {
		if f.Name == docxEntryName {
			ew, err := zw.Create(f.Name)
			if err != nil {
				return fmt.Errorf("creating %s: %w", f.Name, err)
			}
			if _, err := ew.Write(serializeXMLTree(d.prolog, d.root, d.prefixes)); err != nil {
				return fmt.Errorf("writing %s: %w", f.Name, err)
			}
			continue
		}
		if err := copyZipEntry(zw, f); err != nil {
			return fmt.Errorf("copying %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

func copyZipEntry(zw *zip.Writer, f *zip.File) error {
	hdr := f.FileHeader
	ew, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(ew, r)
	return err
}
