// Package docx loads a WordprocessingML (.docx) template, exposes it as a
// tree of blocks and applies in-place edits before writing it back out.
//
// The tree is small: a part (document body, header or footer)
// holds an ordered list of blocks, a block is either a *Paragraph or a
// *Table, a table holds rows of cells and every cell holds blocks again.
// A paragraph is an ordered list of runs. Everything the package does not
// model (section properties, drawings, fields, bookmarks) is kept untouched
// in the underlying XML and written back byte-for-byte in meaning.
//
// Marker search order, as seen by template authors:
//
//  1. top-level body paragraphs, in document order;
//  2. body tables in document order, row by row and cell by cell, each
//     cell's paragraphs before the tables nested inside that cell;
//  3. for every section in document order, the default header's paragraphs
//     and then the header's tables.
//
// Footers are never searched for markers. A marker that appears more than
// once binds to the first location in that order and later copies stay in
// the output as literal text; which copy wins when a template repeats a
// marker across the body, a table and a header is otherwise undefined, so
// templates should contain each marker exactly once.
package docx
