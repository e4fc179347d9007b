package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	contentTypesName = "[Content_Types].xml"
	packageRelsName  = "_rels/.rels"
	defaultMainPart  = "word/document.xml"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"

	nsPackageRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsR           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP          = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA           = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic         = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// ErrInvalidPackage is returned when the input is not a usable .docx file.
var ErrInvalidPackage = errors.New("invalid docx package")

// Document is one loaded .docx package. It is not safe for concurrent use;
// every caller should Open its own copy.
type Document struct {
	order []string
	files map[string][]byte
	xml   map[string]*etree.Document
	rels  map[string]*relationships

	body        *Part
	parts       map[string]*Part
	headerParts []*Part
	footerParts []*Part
	sections    []*Section
	styles      map[string]bool

	lastDocPrID int
}

// Part is an XML part whose root holds blocks: the main document body, a
// header or a footer.
type Part struct {
	name string
	doc  *Document
	xml  *etree.Document
	root *etree.Element
}

// Section pairs the default header and footer that apply to one w:sectPr.
// Either may be nil when the template has none.
type Section struct {
	Header *Part
	Footer *Part
}

// Open reads the .docx file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return Read(data)
}

// Read parses a .docx package held in memory.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	d := &Document{
		files:  make(map[string][]byte),
		xml:    make(map[string]*etree.Document),
		rels:   make(map[string]*relationships),
		parts:  make(map[string]*Part),
		styles: make(map[string]bool),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidPackage, f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidPackage, f.Name, err)
		}
		if _, dup := d.files[f.Name]; !dup {
			d.order = append(d.order, f.Name)
		}
		d.files[f.Name] = b
	}

	if _, err := d.parseXML(contentTypesName); err != nil {
		return nil, err
	}

	mainName := d.mainPartName()
	body, err := d.loadPart(mainName, "body")
	if err != nil {
		return nil, err
	}
	d.body = body

	if err := d.loadHeadersAndFooters(); err != nil {
		return nil, err
	}
	d.loadSections()
	d.loadStyles()
	d.lastDocPrID = d.maxDocPrID()
	return d, nil
}

// Body returns the main document part.
func (d *Document) Body() *Part { return d.body }

// Sections returns one entry per section in document order.
func (d *Document) Sections() []*Section { return d.sections }

// HasStyle reports whether the styles part defines the given style ID.
func (d *Document) HasStyle(id string) bool { return d.styles[id] }

// File returns the raw bytes of a package member, e.g. an embedded image.
func (d *Document) File(name string) ([]byte, bool) {
	b, ok := d.files[name]
	return b, ok
}

// Write serializes the package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range d.order {
		data := d.files[name]
		if x, ok := d.xml[name]; ok {
			b, err := x.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serialize %s: %w", name, err)
			}
			data = b
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("zip write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// SaveAs writes the package to path through a temporary file in the same
// directory, so a failed write never leaves a truncated document behind.
func (d *Document) SaveAs(dst string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".docx-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = d.Write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", dst, err)
	}
	return nil
}

func (d *Document) parseXML(name string) (*etree.Document, error) {
	if x, ok := d.xml[name]; ok {
		return x, nil
	}
	data, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, name)
	}
	x := etree.NewDocument()
	if err := x.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidPackage, name, err)
	}
	if x.Root() == nil {
		return nil, fmt.Errorf("%w: empty %s", ErrInvalidPackage, name)
	}
	d.xml[name] = x
	return x, nil
}

func (d *Document) addFile(name string, data []byte) {
	if _, ok := d.files[name]; !ok {
		d.order = append(d.order, name)
	}
	d.files[name] = data
}

func (d *Document) mainPartName() string {
	x, err := d.parseXML(packageRelsName)
	if err != nil {
		return defaultMainPart
	}
	for _, rel := range x.Root().SelectElements("Relationship") {
		if rel.SelectAttrValue("Type", "") == relTypeOfficeDocument {
			return strings.TrimPrefix(rel.SelectAttrValue("Target", ""), "/")
		}
	}
	return defaultMainPart
}

// loadPart parses a block-holding part. container names the element under
// the root that holds blocks ("body" for the main part); empty means the
// root itself (w:hdr, w:ftr).
func (d *Document) loadPart(name, container string) (*Part, error) {
	if p, ok := d.parts[name]; ok {
		return p, nil
	}
	x, err := d.parseXML(name)
	if err != nil {
		return nil, err
	}
	root := x.Root()
	if container != "" {
		root = root.SelectElement("w:" + container)
		if root == nil {
			return nil, fmt.Errorf("%w: %s has no w:%s", ErrInvalidPackage, name, container)
		}
	}
	p := &Part{name: name, doc: d, xml: x, root: root}
	d.parts[name] = p
	return p, nil
}

func (d *Document) loadHeadersAndFooters() error {
	rels := d.relationshipsOf(d.body.name)
	for _, rel := range rels.all() {
		var list *[]*Part
		switch rel.typ {
		case relTypeHeader:
			list = &d.headerParts
		case relTypeFooter:
			list = &d.footerParts
		default:
			continue
		}
		p, err := d.loadPart(resolveTarget(d.body.name, rel.target), "")
		if err != nil {
			return err
		}
		*list = append(*list, p)
	}
	return nil
}

func (d *Document) loadSections() {
	var props []*etree.Element
	for _, p := range d.body.root.SelectElements("w:p") {
		if pPr := p.SelectElement("w:pPr"); pPr != nil {
			if s := pPr.SelectElement("w:sectPr"); s != nil {
				props = append(props, s)
			}
		}
	}
	if s := d.body.root.SelectElement("w:sectPr"); s != nil {
		props = append(props, s)
	}

	rels := d.relationshipsOf(d.body.name)
	var header, footer *Part
	for _, sp := range props {
		if p := d.defaultReference(sp, "w:headerReference", rels); p != nil {
			header = p
		}
		if p := d.defaultReference(sp, "w:footerReference", rels); p != nil {
			footer = p
		}
		// A section without its own reference inherits the previous one.
		d.sections = append(d.sections, &Section{Header: header, Footer: footer})
	}
}

func (d *Document) defaultReference(sectPr *etree.Element, tag string, rels *relationships) *Part {
	var chosen *etree.Element
	for _, ref := range sectPr.SelectElements(tag) {
		if ref.SelectAttrValue("w:type", "default") == "default" {
			chosen = ref
			break
		}
	}
	if chosen == nil {
		return nil
	}
	rel, ok := rels.byID(chosen.SelectAttrValue("r:id", ""))
	if !ok {
		return nil
	}
	return d.parts[resolveTarget(d.body.name, rel.target)]
}

func (d *Document) loadStyles() {
	rels := d.relationshipsOf(d.body.name)
	for _, rel := range rels.all() {
		if rel.typ != relTypeStyles {
			continue
		}
		x, err := d.parseXML(resolveTarget(d.body.name, rel.target))
		if err != nil {
			return
		}
		for _, s := range x.Root().SelectElements("w:style") {
			if id := s.SelectAttrValue("w:styleId", ""); id != "" {
				d.styles[id] = true
			}
		}
	}
}

func (d *Document) maxDocPrID() int {
	highest := 0
	for _, p := range d.parts {
		for _, e := range p.xml.Root().FindElements(".//wp:docPr") {
			if n, err := strconv.Atoi(e.SelectAttrValue("id", "")); err == nil && n > highest {
				highest = n
			}
		}
	}
	return highest
}

func (d *Document) nextDocPrID() int {
	d.lastDocPrID++
	return d.lastDocPrID
}

// ensureContentType registers a Default content type for a file extension.
func (d *Document) ensureContentType(ext, contentType string) {
	x := d.xml[contentTypesName]
	for _, def := range x.Root().SelectElements("Default") {
		if strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
	x.Root().InsertChildAt(0, def)
}

// Name returns the package member name of the part, e.g. "word/header1.xml".
func (p *Part) Name() string { return p.name }

// Blocks returns the part's top-level paragraphs and tables in order.
func (p *Part) Blocks() []Block { return blocksOf(p.root, p) }

// declareNamespaces makes sure the prefixes used by inline pictures are bound
// on the part root.
func (p *Part) declareNamespaces() {
	root := p.xml.Root()
	for prefix, uri := range map[string]string{"r": nsR, "wp": nsWP} {
		if root.SelectAttr("xmlns:"+prefix) == nil {
			root.CreateAttr("xmlns:"+prefix, uri)
		}
	}
}

// resolveTarget turns a relationship target into a package member name.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relativeTarget is the inverse of resolveTarget for members stored below
// the source part's directory.
func relativeTarget(source, member string) string {
	dir := path.Dir(source) + "/"
	if strings.HasPrefix(member, dir) {
		return strings.TrimPrefix(member, dir)
	}
	return "/" + member
}
