package document

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/domain"
)

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxFooter = `</w:body></w:document>`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// buildDocx assembles a minimal .docx archive around the given
// word/document.xml payload.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// simpleTable renders rows of plain-run cells.
func simpleTable(rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl>`)
	for _, row := range rows {
		sb.WriteString(`<w:tr>`)
		for _, cell := range row {
			if cell == "" {
				sb.WriteString(`<w:tc><w:p/></w:tc>`)
				continue
			}
			sb.WriteString(`<w:tc><w:p><w:r><w:t>` + cell + `</w:t></w:r></w:p></w:tc>`)
		}
		sb.WriteString(`</w:tr>`)
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

func savedDocumentXML(t *testing.T, d *docxDocument) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, d.Save(&out))
	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != docxEntryName {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		return string(raw)
	}
	t.Fatalf("saved archive has no %s", docxEntryName)
	return ""
}

func TestOpenDocx_TableShape(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"Course Name", ""}, {"Instructor", ""}})+
		simpleTable([][]string{{"a", "b", "c"}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	assert.Equal(t, 2, d.TableCount())
	assert.Equal(t, 2, d.RowCount(0))
	assert.Equal(t, 2, d.ColCount(0, 0))
	assert.Equal(t, 1, d.RowCount(1))
	assert.Equal(t, 3, d.ColCount(1, 0))
}

func TestOpenDocx_MissingDocumentEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(contentTypesXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = OpenDocx(buf.Bytes())
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
}

func TestOpenDocx_NotAZip(t *testing.T) {
	_, err := OpenDocx([]byte("plain text, not an archive"))
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
}

func TestCellText(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"Course Name", ""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Course Name", got)

	got, err = d.CellText(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCellText_OutOfRange(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"only"}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	for _, ref := range [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
		_, err := d.CellText(ref[0], ref[1], ref[2])
		assert.ErrorIs(t, err, domain.ErrNoCell, "ref %v", ref)
	}
	assert.ErrorIs(t, d.SetCellText(0, 0, 9, "x"), domain.ErrNoCell)
}

func TestCellText_MultipleParagraphs(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc>`+
		`<w:p><w:r><w:t>first</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>second</w:t></w:r></w:p>`+
		`</w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond", got)
}

func TestCellText_BreaksAndTabs(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc><w:p>`+
		`<w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>`+
		`<w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r>`+
		`</w:p></w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	// The tab stop definition in pPr must not contribute characters.
	assert.Equal(t, "a\tb\nc", got)
}

func TestCellText_IgnoresNestedTables(t *testing.T) {
	inner := simpleTable([][]string{{"nested"}})
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc>`+inner+`<w:p><w:r><w:t>outer</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)

	assert.Equal(t, 1, d.TableCount())
	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "outer", got)
}

func TestSetCellText_PreservesRunStyle(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc><w:p>`+
		`<w:r><w:rPr><w:b/><w:i/><w:rFonts w:ascii="Calibri"/><w:sz w:val="24"/></w:rPr><w:t>old</w:t></w:r>`+
		`<w:r><w:t>tail</w:t></w:r>`+
		`</w:p></w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 0, "new text"))

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "new text", got)

	saved := savedDocumentXML(t, d)
	assert.Contains(t, saved, `<w:rPr><w:b/><w:i/><w:rFonts w:ascii="Calibri"/><w:sz w:val="24"/></w:rPr>`)
	assert.Contains(t, saved, `<w:t xml:space="preserve">new text</w:t>`)
	assert.NotContains(t, saved, ">old<")
	assert.NotContains(t, saved, ">tail<")
}

func TestSetCellText_KeepsParagraphProperties(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc><w:p>`+
		`<w:pPr><w:jc w:val="center"/></w:pPr>`+
		`<w:r><w:t>old</w:t></w:r>`+
		`</w:p></w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 0, "replaced"))

	saved := savedDocumentXML(t, d)
	assert.Contains(t, saved, `<w:jc w:val="center"/>`)
}

func TestSetCellText_NoPriorRun(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"Label", ""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 1, "filled"))

	got, err := d.CellText(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "filled", got)

	saved := savedDocumentXML(t, d)
	assert.Contains(t, saved, `<w:r><w:t xml:space="preserve">filled</w:t></w:r>`)
}

func TestSetCellText_CreatesParagraph(t *testing.T) {
	data := buildDocx(t, docxHeader+
		`<w:tbl><w:tr><w:tc></w:tc></w:tr></w:tbl>`+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 0, "created"))

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "created", got)
}

func TestSetCellText_MultilineBecomesBreaks(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 0, "line one\nline two"))

	got, err := d.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)

	saved := savedDocumentXML(t, d)
	assert.Contains(t, saved, `<w:br/>`)
}

func TestSave_RoundTrip(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"Course Name", ""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 1, "Intro to Algorithms"))

	var out bytes.Buffer
	require.NoError(t, d.Save(&out))

	reopened, err := openDocx(out.Bytes())
	require.NoError(t, err)
	got, err := reopened.CellText(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Algorithms", got)

	label, err := reopened.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Course Name", label)
}

func TestSave_OtherEntriesByteIdentical(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{"Label", ""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 1, "x"))

	var out bytes.Buffer
	require.NoError(t, d.Save(&out))

	readEntry := func(archive []byte, name string) []byte {
		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		require.NoError(t, err)
		for _, f := range zr.File {
			if f.Name == name {
				rc, err := f.Open()
				require.NoError(t, err)
				raw, err := io.ReadAll(rc)
				require.NoError(t, err)
				require.NoError(t, rc.Close())
				return raw
			}
		}
		t.Fatalf("entry %s not found", name)
		return nil
	}

	assert.Equal(t, readEntry(data, "[Content_Types].xml"), readEntry(out.Bytes(), "[Content_Types].xml"))
	assert.Equal(t, readEntry(data, "_rels/.rels"), readEntry(out.Bytes(), "_rels/.rels"))
}

func TestSave_EscapesSpecialCharacters(t *testing.T) {
	data := buildDocx(t, docxHeader+
		simpleTable([][]string{{""}})+
		docxFooter)

	d, err := openDocx(data)
	require.NoError(t, err)
	require.NoError(t, d.SetCellText(0, 0, 0, `a < b & "c"`))

	var out bytes.Buffer
	require.NoError(t, d.Save(&out))

	reopened, err := openDocx(out.Bytes())
	require.NoError(t, err)
	got, err := reopened.CellText(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, `a < b & "c"`, got)
}
