package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// BreakKind selects the w:br flavour written by AddBreak.
type BreakKind int

const (
	LineBreak BreakKind = iota
	PageBreak
)

// Alignment values for Paragraph.SetAlignment.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Child order required by the schema. Word refuses documents whose property
// elements appear out of sequence.
var (
	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr",
		"widowControl", "numPr", "suppressLineNumbers", "pBdr", "shd", "tabs",
		"suppressAutoHyphens", "kinsoku", "wordWrap", "overflowPunct",
		"topLinePunct", "autoSpaceDE", "autoSpaceDN", "bidi", "adjustRightInd",
		"snapToGrid", "spacing", "ind", "contextualSpacing", "mirrorIndents",
		"suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr",
		"pPrChange",
	}
	rPrOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps",
		"strike", "dstrike", "outline", "shadow", "emboss", "imprint",
		"noProof", "snapToGrid", "vanish", "webHidden", "color", "spacing", "w",
		"kern", "position", "sz", "szCs", "highlight", "u", "effect", "bdr",
		"shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang",
		"eastAsianLayout", "specVanish", "oMath",
	}
	tblPrOrder = []string{
		"tblStyle", "tblpPr", "tblOverlap", "bidiVisual", "tblStyleRowBandSize",
		"tblStyleColBandSize", "tblW", "jc", "tblCellSpacing", "tblInd",
		"tblBorders", "shd", "tblLayout", "tblCellMar", "tblLook",
	}
)

// ensureFirst returns the w:<tag> child of parent, creating it as the first
// child when missing. Property containers (pPr, rPr, tblPr) always lead.
func ensureFirst(parent *etree.Element, tag string) *etree.Element {
	if e := parent.SelectElement("w:" + tag); e != nil {
		return e
	}
	e := etree.NewElement("w:" + tag)
	parent.InsertChildAt(0, e)
	return e
}

// setOrdered returns the w:<tag> child of props, inserting it at the
// position given by order when it does not exist yet.
func setOrdered(props *etree.Element, tag string, order []string) *etree.Element {
	if e := props.SelectElement("w:" + tag); e != nil {
		return e
	}
	rank := indexOf(order, tag)
	pos := len(props.Child)
	for _, c := range props.ChildElements() {
		if c.Space == "w" && indexOf(order, c.Tag) > rank {
			pos = c.Index()
			break
		}
	}
	e := etree.NewElement("w:" + tag)
	props.InsertChildAt(pos, e)
	return e
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return len(list)
}

func (p *Paragraph) pPr() *etree.Element { return ensureFirst(p.el, "pPr") }

// SetAlignment sets w:jc.
func (p *Paragraph) SetAlignment(align string) {
	setOrdered(p.pPr(), "jc", pPrOrder).CreateAttr("w:val", align)
}

// Alignment returns the w:jc value, or "" when inherited.
func (p *Paragraph) Alignment() string {
	if pr := p.el.SelectElement("w:pPr"); pr != nil {
		if jc := pr.SelectElement("w:jc"); jc != nil {
			return jc.SelectAttrValue("w:val", "")
		}
	}
	return ""
}

// SetSpacing sets space before and after in points and single line spacing.
func (p *Paragraph) SetSpacing(beforePt, afterPt float64) {
	s := setOrdered(p.pPr(), "spacing", pPrOrder)
	s.CreateAttr("w:before", twips(beforePt))
	s.CreateAttr("w:after", twips(afterPt))
	s.CreateAttr("w:line", "240")
	s.CreateAttr("w:lineRule", "auto")
}

// SetKeepTogether keeps all lines of the paragraph on one page.
func (p *Paragraph) SetKeepTogether() {
	setOrdered(p.pPr(), "keepLines", pPrOrder)
}

// SetKeepWithNext keeps the paragraph on the same page as the next one.
func (p *Paragraph) SetKeepWithNext() {
	setOrdered(p.pPr(), "keepNext", pPrOrder)
}

func (r *Run) rPr() *etree.Element { return ensureFirst(r.el, "rPr") }

// SetBold turns bold on.
func (r *Run) SetBold() {
	setOrdered(r.rPr(), "b", rPrOrder)
}

// Bold reports whether the run carries direct bold formatting.
func (r *Run) Bold() bool {
	pr := r.el.SelectElement("w:rPr")
	if pr == nil {
		return false
	}
	b := pr.SelectElement("w:b")
	if b == nil {
		return false
	}
	v := b.SelectAttrValue("w:val", "true")
	return v != "false" && v != "0"
}

// SetFont sets the ASCII and complex-script font.
func (r *Run) SetFont(name string) {
	f := setOrdered(r.rPr(), "rFonts", rPrOrder)
	f.CreateAttr("w:ascii", name)
	f.CreateAttr("w:hAnsi", name)
	f.CreateAttr("w:cs", name)
}

// Font returns the ASCII font name, or "" when inherited.
func (r *Run) Font() string {
	if pr := r.el.SelectElement("w:rPr"); pr != nil {
		if f := pr.SelectElement("w:rFonts"); f != nil {
			return f.SelectAttrValue("w:ascii", "")
		}
	}
	return ""
}

// SetSize sets the font size in points.
func (r *Run) SetSize(points float64) {
	half := strconv.Itoa(int(points * 2))
	setOrdered(r.rPr(), "sz", rPrOrder).CreateAttr("w:val", half)
	setOrdered(r.rPr(), "szCs", rPrOrder).CreateAttr("w:val", half)
}

// Size returns the font size in points, or 0 when inherited.
func (r *Run) Size() float64 {
	if pr := r.el.SelectElement("w:rPr"); pr != nil {
		if sz := pr.SelectElement("w:sz"); sz != nil {
			n, _ := strconv.Atoi(sz.SelectAttrValue("w:val", ""))
			return float64(n) / 2
		}
	}
	return 0
}

func twips(points float64) string {
	return strconv.Itoa(int(points * 20))
}
