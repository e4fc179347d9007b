package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Block is a body-level element: *Paragraph or *Table.
type Block interface {
	isBlock()
}

// Paragraph wraps a w:p element.
type Paragraph struct {
	el   *etree.Element
	part *Part
}

// Table wraps a w:tbl element.
type Table struct {
	el   *etree.Element
	part *Part
}

// Row wraps a w:tr element.
type Row struct {
	el   *etree.Element
	part *Part
}

// Cell wraps a w:tc element.
type Cell struct {
	el   *etree.Element
	part *Part
}

// Run wraps a w:r element.
type Run struct {
	el *etree.Element
}

func (*Paragraph) isBlock() {}
func (*Table) isBlock()     {}

func isW(e *etree.Element, tag string) bool {
	return e.Space == "w" && e.Tag == tag
}

func blocksOf(container *etree.Element, part *Part) []Block {
	var out []Block
	for _, e := range container.ChildElements() {
		switch {
		case isW(e, "p"):
			out = append(out, &Paragraph{el: e, part: part})
		case isW(e, "tbl"):
			out = append(out, &Table{el: e, part: part})
		}
	}
	return out
}

// walkBlocks visits the paragraphs of blocks first, then descends into each
// table cell by cell. fn returns false to stop; walkBlocks then returns false.
func walkBlocks(blocks []Block, fn func(*Paragraph) bool) bool {
	var tables []*Table
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			if !fn(v) {
				return false
			}
		case *Table:
			tables = append(tables, v)
		}
	}
	for _, t := range tables {
		for _, row := range t.Rows() {
			for _, cell := range row.Cells() {
				if !walkBlocks(cell.Blocks(), fn) {
					return false
				}
			}
		}
	}
	return true
}

// Paragraphs returns the part's top-level paragraphs.
func (p *Part) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range p.Blocks() {
		if para, ok := b.(*Paragraph); ok {
			out = append(out, para)
		}
	}
	return out
}

// Tables returns the part's top-level tables.
func (p *Part) Tables() []*Table {
	var out []*Table
	for _, b := range p.Blocks() {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Runs returns the paragraph's runs, including runs wrapped in hyperlinks.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, e := range p.el.ChildElements() {
		switch {
		case isW(e, "r"):
			out = append(out, &Run{el: e})
		case isW(e, "hyperlink"):
			for _, r := range e.SelectElements("w:r") {
				out = append(out, &Run{el: r})
			}
		}
	}
	return out
}

// Text is the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// Clear removes every run and inline element, keeping paragraph properties.
func (p *Paragraph) Clear() {
	for _, e := range p.el.ChildElements() {
		if !isW(e, "pPr") {
			p.el.RemoveChild(e)
		}
	}
}

// AddRun appends a run holding text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{el: p.el.CreateElement("w:r")}
	if text != "" {
		r.SetText(text)
	}
	return r
}

// AddBreak appends a run holding a single line or page break.
func (p *Paragraph) AddBreak(kind BreakKind) *Run {
	r := p.AddRun("")
	br := r.el.CreateElement("w:br")
	if kind == PageBreak {
		br.CreateAttr("w:type", "page")
	}
	return r
}

// InsertParagraphBefore creates an empty paragraph directly before p.
func (p *Paragraph) InsertParagraphBefore() *Paragraph {
	el := etree.NewElement("w:p")
	p.el.Parent().InsertChildAt(p.el.Index(), el)
	return &Paragraph{el: el, part: p.part}
}

// Images returns the package member names of the pictures embedded in the
// paragraph, in order of appearance.
func (p *Paragraph) Images() []string {
	rels := p.part.doc.relationshipsOf(p.part.name)
	var out []string
	for _, blip := range p.el.FindElements(".//a:blip") {
		rel, ok := rels.byID(blip.SelectAttrValue("r:embed", ""))
		if !ok {
			continue
		}
		out = append(out, resolveTarget(p.part.name, rel.target))
	}
	return out
}

// HasPageBreak reports whether any run of the paragraph holds a page break.
func (p *Paragraph) HasPageBreak() bool {
	for _, br := range p.el.FindElements(".//w:br") {
		if br.SelectAttrValue("w:type", "") == "page" {
			return true
		}
	}
	return false
}

// Rows returns the table rows.
func (t *Table) Rows() []*Row {
	var out []*Row
	for _, e := range t.el.SelectElements("w:tr") {
		out = append(out, &Row{el: e, part: t.part})
	}
	return out
}

// StyleID returns the table style, or "" for an unstyled table.
func (t *Table) StyleID() string {
	if pr := t.el.SelectElement("w:tblPr"); pr != nil {
		if s := pr.SelectElement("w:tblStyle"); s != nil {
			return s.SelectAttrValue("w:val", "")
		}
	}
	return ""
}

// CellTexts returns the text of every cell, row by row.
func (t *Table) CellTexts() [][]string {
	var out [][]string
	for _, row := range t.Rows() {
		var line []string
		for _, c := range row.Cells() {
			line = append(line, c.Text())
		}
		out = append(out, line)
	}
	return out
}

// Cells returns the row's cells.
func (r *Row) Cells() []*Cell {
	var out []*Cell
	for _, e := range r.el.SelectElements("w:tc") {
		out = append(out, &Cell{el: e, part: r.part})
	}
	return out
}

// Blocks returns the cell's paragraphs and nested tables.
func (c *Cell) Blocks() []Block { return blocksOf(c.el, c.part) }

// Paragraphs returns the cell's paragraphs.
func (c *Cell) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range c.Blocks() {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Text joins the cell's paragraph texts with newlines.
func (c *Cell) Text() string {
	var lines []string
	for _, p := range c.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// SetText replaces the cell content with a single run and returns it.
func (c *Cell) SetText(text string) *Run {
	paras := c.Paragraphs()
	var p *Paragraph
	if len(paras) == 0 {
		p = &Paragraph{el: c.el.CreateElement("w:p"), part: c.part}
	} else {
		p = paras[0]
		for _, extra := range paras[1:] {
			c.el.RemoveChild(extra.el)
		}
	}
	p.Clear()
	return p.AddRun(text)
}

// Text returns the run text. Tabs and line breaks read as "\t" and "\n".
func (r *Run) Text() string {
	var sb strings.Builder
	for _, e := range r.el.ChildElements() {
		switch {
		case isW(e, "t"):
			sb.WriteString(e.Text())
		case isW(e, "tab"):
			sb.WriteByte('\t')
		case isW(e, "cr"):
			sb.WriteByte('\n')
		case isW(e, "br") && isLineBreak(e):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// SetText replaces the run's text content. Drawings and page breaks already
// in the run are kept.
func (r *Run) SetText(text string) {
	for _, e := range r.el.ChildElements() {
		if isW(e, "t") || isW(e, "tab") || isW(e, "cr") || (isW(e, "br") && isLineBreak(e)) {
			r.el.RemoveChild(e)
		}
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.el.CreateElement("w:br")
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				r.el.CreateElement("w:tab")
			}
			if seg == "" {
				continue
			}
			t := r.el.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(seg)
		}
	}
}

func isLineBreak(br *etree.Element) bool {
	typ := br.SelectAttrValue("w:type", "")
	return typ == "" || typ == "textWrapping"
}
