// Package docxtest builds minimal .docx templates and images for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const nsW = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

// Template describes a package. Body, Header and Footer hold the inner XML
// of w:body, w:hdr and w:ftr; an empty Header or Footer omits the part.
// Styles lists the style IDs of the styles part; nil omits the part.
type Template struct {
	Body   string
	Header string
	Footer string
	Styles []string
}

// Build returns the zipped package.
func (t Template) Build() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	add("[Content_Types].xml", t.contentTypes())
	add("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>`+
		`</Relationships>`)

	var rels, sect strings.Builder
	if t.Header != "" {
		rels.WriteString(`<Relationship Id="rId10" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
		sect.WriteString(`<w:headerReference w:type="default" r:id="rId10"/>`)
		add("word/header1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:hdr `+nsW+`>`+t.Header+`</w:hdr>`)
	}
	if t.Footer != "" {
		rels.WriteString(`<Relationship Id="rId11" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`)
		sect.WriteString(`<w:footerReference w:type="default" r:id="rId11"/>`)
		add("word/footer1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:ftr `+nsW+`>`+t.Footer+`</w:ftr>`)
	}
	if t.Styles != nil {
		rels.WriteString(`<Relationship Id="rId12" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
		var styles strings.Builder
		for _, id := range t.Styles {
			fmt.Fprintf(&styles, `<w:style w:type="table" w:styleId="%s"><w:name w:val="%s"/></w:style>`, id, id)
		}
		add("word/styles.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:styles `+nsW+`>`+styles.String()+`</w:styles>`)
	}

	add("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+rels.String()+`</Relationships>`)
	add("word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document `+nsW+`><w:body>`+
		t.Body+`<w:sectPr>`+sect.String()+`<w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (t Template) contentTypes() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	if t.Header != "" {
		sb.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	}
	if t.Footer != "" {
		sb.WriteString(`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
	}
	if t.Styles != nil {
		sb.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

// Write stores the package as template.docx in dir and returns its path.
func (t Template) Write(tb testing.TB, dir string) string {
	tb.Helper()
	path := filepath.Join(dir, "template.docx")
	require.NoError(tb, os.WriteFile(path, t.Build(), 0o644))
	return path
}

// P returns a paragraph with one run per text.
func P(runs ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, r := range runs {
		sb.WriteString(`<w:r><w:t xml:space="preserve">`)
		xml.EscapeText(&sb, []byte(r))
		sb.WriteString(`</w:t></w:r>`)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// BoldP returns a paragraph whose single run is bold.
func BoldP(text string) string {
	var sb strings.Builder
	sb.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
	xml.EscapeText(&sb, []byte(text))
	sb.WriteString(`</w:t></w:r></w:p>`)
	return sb.String()
}

// Table returns a table; every cell holds the given raw block XML.
func Table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl><w:tblPr/>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc>" + cell + "</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// PNG writes a w x h PNG image to dir/name and returns its path.
func PNG(tb testing.TB, dir, name string, w, h int) string {
	tb.Helper()
	var buf bytes.Buffer
	require.NoError(tb, png.Encode(&buf, solid(w, h)))
	return writeFile(tb, dir, name, buf.Bytes())
}

// JPEG writes a w x h JPEG image to dir/name and returns its path.
func JPEG(tb testing.TB, dir, name string, w, h int) string {
	tb.Helper()
	var buf bytes.Buffer
	require.NoError(tb, jpeg.Encode(&buf, solid(w, h), nil))
	return writeFile(tb, dir, name, buf.Bytes())
}

// File writes arbitrary bytes to dir/name and returns its path.
func File(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	return writeFile(tb, dir, name, data)
}

func writeFile(tb testing.TB, dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, data, 0o644))
	return path
}

func solid(w, h int) image.Image {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return m
}
