package docx

import "strings"

// Find returns the first paragraph whose text contains marker. See the
// package documentation for the search order.
func (d *Document) Find(marker string) (*Paragraph, bool) {
	var found *Paragraph
	match := func(p *Paragraph) bool {
		if strings.Contains(p.Text(), marker) {
			found = p
			return false
		}
		return true
	}

	if !walkBlocks(d.body.Blocks(), match) {
		return found, true
	}
	seen := make(map[*Part]bool)
	for _, s := range d.sections {
		if s.Header == nil || seen[s.Header] {
			continue
		}
		seen[s.Header] = true
		if !walkBlocks(s.Header.Blocks(), match) {
			return found, true
		}
	}
	return nil, false
}

// Count returns the number of occurrences of text across every paragraph of
// the document, footers included. It is used by tests and tooling to check
// for leftover markers and placeholders.
func (d *Document) Count(text string) int {
	n := 0
	d.eachParagraph(func(p *Paragraph) {
		n += strings.Count(p.Text(), text)
	})
	return n
}

// eachParagraph visits every paragraph of the body and of every header and
// footer part, tables included.
func (d *Document) eachParagraph(fn func(*Paragraph)) {
	visit := func(p *Paragraph) bool {
		fn(p)
		return true
	}
	walkBlocks(d.body.Blocks(), visit)
	for _, p := range d.headerParts {
		walkBlocks(p.Blocks(), visit)
	}
	for _, p := range d.footerParts {
		walkBlocks(p.Blocks(), visit)
	}
}
