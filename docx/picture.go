package docx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	"github.com/beevik/etree"
)

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

// ErrUnsupportedImage is returned for files that are not decodable PNG,
// JPEG or GIF images.
var ErrUnsupportedImage = errors.New("unsupported image")

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// Image is a decoded picture ready to embed.
type Image struct {
	Data   []byte
	Format string // png, jpeg or gif
	Width  int    // pixels
	Height int
}

// LoadImage reads and fully decodes the image at path. A missing file is
// reported with an error matching os.ErrNotExist.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}

// DecodeImage validates data as a picture.
func DecodeImage(data []byte) (*Image, error) {
	m, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if _, ok := imageContentTypes[format]; !ok {
		return nil, fmt.Errorf("%w: format %s", ErrUnsupportedImage, format)
	}
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	return &Image{Data: data, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// Extent returns the display size in EMU for the given width in inches,
// keeping the aspect ratio.
func (img *Image) Extent(widthInches float64) (cx, cy int64) {
	cx = int64(widthInches * EMUPerInch)
	cy = cx * int64(img.Height) / int64(img.Width)
	return cx, cy
}

// AddPicture appends a run holding img as an inline picture scaled to
// widthInches.
func (p *Paragraph) AddPicture(img *Image, widthInches float64) *Run {
	d := p.part.doc
	member := d.addMedia(img)
	rid := d.relationshipsOf(p.part.name).add(relTypeImage, relativeTarget(p.part.name, member))
	p.part.declareNamespaces()

	r := p.AddRun("")
	cx, cy := img.Extent(widthInches)
	r.el.AddChild(drawing(d.nextDocPrID(), rid, member, cx, cy))
	return r
}

func (d *Document) addMedia(img *Image) string {
	for n := 1; ; n++ {
		name := "word/media/image" + strconv.Itoa(n) + "." + img.Format
		if _, taken := d.files[name]; !taken {
			d.addFile(name, img.Data)
			d.ensureContentType(img.Format, imageContentTypes[img.Format])
			return name
		}
	}
}

func drawing(id int, rid, member string, cx, cy int64) *etree.Element {
	ext := func(e *etree.Element) {
		e.CreateAttr("cx", strconv.FormatInt(cx, 10))
		e.CreateAttr("cy", strconv.FormatInt(cy, 10))
	}
	name := "Picture " + strconv.Itoa(id)

	dr := etree.NewElement("w:drawing")
	inline := dr.CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	ext(inline.CreateElement("wp:extent"))
	eff := inline.CreateElement("wp:effectExtent")
	for _, k := range []string{"l", "t", "r", "b"} {
		eff.CreateAttr(k, "0")
	}
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", strconv.Itoa(id))
	docPr.CreateAttr("name", name)

	locks := inline.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks")
	locks.CreateAttr("xmlns:a", nsA)
	locks.CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", nsA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", "http://schemas.openxmlformats.org/drawingml/2006/picture")

	pic := data.CreateElement("pic:pic")
	pic.CreateAttr("xmlns:pic", nsPic)
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", member)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", rid)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext(xfrm.CreateElement("a:ext"))
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return dr
}
