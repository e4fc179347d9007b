package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// InsertTableBefore creates an empty table directly before p with one grid
// column per width, given in inches.
func (p *Paragraph) InsertTableBefore(widths ...float64) *Table {
	tbl := etree.NewElement("w:tbl")
	pr := tbl.CreateElement("w:tblPr")
	w := pr.CreateElement("w:tblW")
	w.CreateAttr("w:w", "0")
	w.CreateAttr("w:type", "auto")
	look := pr.CreateElement("w:tblLook")
	look.CreateAttr("w:val", "04A0")

	grid := tbl.CreateElement("w:tblGrid")
	for _, in := range widths {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(int(in*1440)))
	}

	p.el.Parent().InsertChildAt(p.el.Index(), tbl)
	return &Table{el: tbl, part: p.part}
}

// SetStyle applies a table style by ID.
func (t *Table) SetStyle(id string) {
	pr := ensureFirst(t.el, "tblPr")
	setOrdered(pr, "tblStyle", tblPrOrder).CreateAttr("w:val", id)
}

// AddRow appends a row with one empty cell per grid column.
func (t *Table) AddRow() *Row {
	tr := t.el.CreateElement("w:tr")
	for _, col := range t.el.FindElements("./w:tblGrid/w:gridCol") {
		tc := tr.CreateElement("w:tc")
		tcW := tc.CreateElement("w:tcPr").CreateElement("w:tcW")
		tcW.CreateAttr("w:w", col.SelectAttrValue("w:w", "0"))
		tcW.CreateAttr("w:type", "dxa")
		tc.CreateElement("w:p")
	}
	return &Row{el: tr, part: t.part}
}
