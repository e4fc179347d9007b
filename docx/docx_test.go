package docx_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreport/docx"
	"eventreport/docx/docxtest"
)

func open(t *testing.T, tpl docxtest.Template) *docx.Document {
	t.Helper()
	d, err := docx.Read(tpl.Build())
	require.NoError(t, err)
	return d
}

func reopen(t *testing.T, d *docx.Document) *docx.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))
	out, err := docx.Read(buf.Bytes())
	require.NoError(t, err)
	return out
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := docx.Read([]byte("not a zip"))
	assert.ErrorIs(t, err, docx.ErrInvalidPackage)

	_, err = docx.Open(filepath.Join(t.TempDir(), "missing.docx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindSearchOrder(t *testing.T) {
	d := open(t, docxtest.Template{
		Body: docxtest.Table([]string{docxtest.P("cell <<M>>") + docxtest.P("only in table <<T>>")}) +
			docxtest.P("body <<M>>"),
		Header: docxtest.P("header <<M>> <<H>>"),
		Footer: docxtest.P("footer <<F>>"),
	})

	p, ok := d.Find("<<M>>")
	require.True(t, ok)
	assert.Equal(t, "body <<M>>", p.Text())

	p, ok = d.Find("<<T>>")
	require.True(t, ok)
	assert.Equal(t, "only in table <<T>>", p.Text())
	cell := d.Body().Tables()[0].Rows()[0].Cells()[0].Paragraphs()
	require.Len(t, cell, 2)
	assert.Equal(t, cell[1].Text(), p.Text())
	for _, bp := range d.Body().Paragraphs() {
		assert.NotContains(t, bp.Text(), "<<T>>")
	}

	p, ok = d.Find("<<H>>")
	require.True(t, ok)
	assert.Equal(t, "header <<M>> <<H>>", p.Text())

	_, ok = d.Find("<<F>>")
	assert.False(t, ok, "footers are not searched")

	_, ok = d.Find("<<NOPE>>")
	assert.False(t, ok)
}

func TestFindNestedTableAfterCellParagraphs(t *testing.T) {
	inner := docxtest.Table([]string{docxtest.P("nested <<X>>")})
	d := open(t, docxtest.Template{
		Body: docxtest.Table([]string{inner + docxtest.P("outer <<X>>")}),
	})
	p, ok := d.Find("<<X>>")
	require.True(t, ok)
	assert.Equal(t, "outer <<X>>", p.Text())
}

func TestFindAcrossSplitRuns(t *testing.T) {
	d := open(t, docxtest.Template{Body: docxtest.P("<<EVENT_", "DETAILS>>")})
	_, ok := d.Find("<<EVENT_DETAILS>>")
	assert.True(t, ok)
}

func TestSubstituteEverywhere(t *testing.T) {
	d := open(t, docxtest.Template{
		Body: docxtest.P("Venue: {{venue}}, again {{venue}}") +
			docxtest.Table([]string{docxtest.P("{{event_name}}")}),
		Header: docxtest.P("{{event_name}} header"),
		Footer: docxtest.P("footer {{department}}"),
	})

	n := d.Substitute(map[string]string{
		"venue":      "Hall A",
		"event_name": "Tech Talk",
		"department": "CSE",
		"unused":     "x",
	})
	assert.Equal(t, 5, n)
	assert.Zero(t, d.Count("{{"))

	d = reopen(t, d)
	assert.Equal(t, 1, d.Count("Venue: Hall A, again Hall A"))
	assert.Equal(t, 1, d.Count("Tech Talk header"))
	assert.Equal(t, 1, d.Count("footer CSE"))

	assert.Zero(t, d.Substitute(map[string]string{"venue": "Hall B"}), "second pass finds nothing")
}

func TestSubstituteTokenSplitAcrossRuns(t *testing.T) {
	d := open(t, docxtest.Template{
		Body: `<w:p>` +
			`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Held at {{ve</w:t></w:r>` +
			`<w:r><w:t>n</w:t></w:r>` +
			`<w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve">ue}} today</w:t></w:r>` +
			`</w:p>`,
	})

	assert.Equal(t, 1, d.Substitute(map[string]string{"venue": "Hall A"}))

	p := d.Body().Paragraphs()[0]
	assert.Equal(t, "Held at Hall A today", p.Text())
	runs := p.Runs()
	require.Len(t, runs, 3)
	assert.Equal(t, "Held at Hall A", runs[0].Text())
	assert.True(t, runs[0].Bold(), "value adopts the starting run's format")
	assert.Equal(t, "", runs[1].Text())
	assert.Equal(t, " today", runs[2].Text())
}

func TestSubstituteValueContainingToken(t *testing.T) {
	d := open(t, docxtest.Template{Body: docxtest.P("{{a}}{{a}}")})
	assert.Equal(t, 2, d.Substitute(map[string]string{"a": "{{a}}"}))
	assert.Equal(t, 1, d.Count("{{a}}{{a}}"))
}

func TestSubstituteMultiline(t *testing.T) {
	d := open(t, docxtest.Template{Body: docxtest.P("{{PO_SECTION}}")})
	d.Substitute(map[string]string{"PO_SECTION": "• one\n• two"})

	d = reopen(t, d)
	assert.Equal(t, "• one\n• two", d.Body().Paragraphs()[0].Text())
}

func TestAddPictureRoundTrip(t *testing.T) {
	dir := t.TempDir()
	imgPath := docxtest.PNG(t, dir, "a.png", 200, 100)
	d := open(t, docxtest.Template{Body: docxtest.P("<<IMG>>"), Header: docxtest.P("logo")})

	img, err := docx.LoadImage(imgPath)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	cx, cy := img.Extent(6)
	assert.Equal(t, int64(6*docx.EMUPerInch), cx)
	assert.Equal(t, int64(3*docx.EMUPerInch), cy)

	p, ok := d.Find("<<IMG>>")
	require.True(t, ok)
	p.Clear()
	p.AddPicture(img, 6)
	p.AddPicture(img, 6)

	hp := d.Sections()[0].Header.Paragraphs()[0]
	hp.AddPicture(img, 1)

	d = reopen(t, d)
	p = d.Body().Paragraphs()[0]
	names := p.Images()
	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])
	for _, n := range names {
		data, ok := d.File(n)
		require.True(t, ok, n)
		assert.Equal(t, img.Data, data)
	}
	assert.Len(t, d.Sections()[0].Header.Paragraphs()[0].Images(), 1)

	ct, ok := d.File("[Content_Types].xml")
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(string(ct), `Extension="png"`))
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := docx.LoadImage(filepath.Join(dir, "none.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := docxtest.File(t, dir, "bad.png", []byte("\x89PNG\r\n\x1a\nbroken"))
	_, err = docx.LoadImage(bad)
	assert.ErrorIs(t, err, docx.ErrUnsupportedImage)

	jpg, err := docx.LoadImage(docxtest.JPEG(t, dir, "a.jpg", 40, 80))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", jpg.Format)
}

func TestInsertTableBefore(t *testing.T) {
	d := open(t, docxtest.Template{
		Body:   docxtest.P("before") + docxtest.P("<<T>>"),
		Styles: []string{"TableGrid"},
	})
	assert.True(t, d.HasStyle("TableGrid"))
	assert.False(t, d.HasStyle("Missing"))

	p, ok := d.Find("<<T>>")
	require.True(t, ok)
	tbl := p.InsertTableBefore(2, 1)
	tbl.SetStyle("TableGrid")
	row := tbl.AddRow()
	cells := row.Cells()
	require.Len(t, cells, 2)
	cells[0].SetText("Name").SetBold()
	cells[1].SetText("A")
	p.Clear()

	d = reopen(t, d)
	blocks := d.Body().Blocks()
	require.Len(t, blocks, 3)
	got, ok := blocks[1].(*docx.Table)
	require.True(t, ok)
	assert.Equal(t, "TableGrid", got.StyleID())
	assert.Equal(t, [][]string{{"Name", "A"}}, got.CellTexts())
	assert.True(t, got.Rows()[0].Cells()[0].Paragraphs()[0].Runs()[0].Bold())
}

func TestParagraphFormatting(t *testing.T) {
	d := open(t, docxtest.Template{Body: docxtest.P("x")})
	p := d.Body().Paragraphs()[0]
	p.SetAlignment(docx.AlignCenter)
	p.SetKeepWithNext()
	p.SetKeepTogether()
	r := p.AddRun("label")
	r.SetSize(12)
	r.SetFont("Times New Roman")
	r.SetBold()
	p.AddBreak(docx.PageBreak)

	d = reopen(t, d)
	p = d.Body().Paragraphs()[0]
	assert.Equal(t, docx.AlignCenter, p.Alignment())
	assert.True(t, p.HasPageBreak())
	r = p.Runs()[1]
	assert.Equal(t, 12.0, r.Size())
	assert.Equal(t, "Times New Roman", r.Font())
	assert.True(t, r.Bold())
}

func TestRunTabsAndBreaks(t *testing.T) {
	d := open(t, docxtest.Template{Body: docxtest.P("")})
	p := d.Body().Paragraphs()[0]
	r := p.AddRun("Venue:\tHall A\nsecond")
	assert.Equal(t, "Venue:\tHall A\nsecond", r.Text())
	r.SetText("plain")
	assert.Equal(t, "plain", r.Text())
}

func TestSaveAs(t *testing.T) {
	dir := t.TempDir()
	d := open(t, docxtest.Template{Body: docxtest.P("hello")})
	dst := filepath.Join(dir, "out.docx")
	require.NoError(t, d.SaveAs(dst))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.docx", entries[0].Name())

	got, err := docx.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count("hello"))

	err = d.SaveAs(filepath.Join(dir, "nope", "out.docx"))
	assert.Error(t, err)
}
