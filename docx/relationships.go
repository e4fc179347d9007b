package docx

import (
	"path"
	"strconv"

	"github.com/beevik/etree"
)

type relationship struct {
	id     string
	typ    string
	target string
}

// relationships wraps one *.rels part. It is created lazily for parts that
// had none in the template.
type relationships struct {
	name    string
	xml     *etree.Document
	doc     *Document
	pending bool
}

func relsName(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func (d *Document) relationshipsOf(part string) *relationships {
	name := relsName(part)
	if r, ok := d.rels[name]; ok {
		return r
	}
	r := &relationships{name: name, doc: d}
	x, err := d.parseXML(name)
	if err != nil {
		x = etree.NewDocument()
		x.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := x.CreateElement("Relationships")
		root.CreateAttr("xmlns", nsPackageRels)
		r.pending = true
	}
	r.xml = x
	d.rels[name] = r
	return r
}

func (r *relationships) all() []relationship {
	var out []relationship
	for _, e := range r.xml.Root().SelectElements("Relationship") {
		if e.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}
		out = append(out, relationship{
			id:     e.SelectAttrValue("Id", ""),
			typ:    e.SelectAttrValue("Type", ""),
			target: e.SelectAttrValue("Target", ""),
		})
	}
	return out
}

func (r *relationships) byID(id string) (relationship, bool) {
	if id == "" {
		return relationship{}, false
	}
	for _, rel := range r.all() {
		if rel.id == id {
			return rel, true
		}
	}
	return relationship{}, false
}

// add appends a relationship and returns its new, unused ID.
func (r *relationships) add(typ, target string) string {
	used := make(map[string]bool)
	for _, e := range r.xml.Root().SelectElements("Relationship") {
		used[e.SelectAttrValue("Id", "")] = true
	}
	n := len(used) + 1
	id := "rId" + strconv.Itoa(n)
	for used[id] {
		n++
		id = "rId" + strconv.Itoa(n)
	}

	if r.pending {
		r.doc.xml[r.name] = r.xml
		r.doc.addFile(r.name, nil)
		r.pending = false
	}

	e := r.xml.Root().CreateElement("Relationship")
	e.CreateAttr("Id", id)
	e.CreateAttr("Type", typ)
	e.CreateAttr("Target", target)
	return id
}
