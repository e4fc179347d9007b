package assembly

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"eventreport/docx"
	"eventreport/model"
)

const (
	detailFont     = "Times New Roman"
	detailFontSize = 12
	titleFontSize  = 18

	attendanceTitle    = "Attendance"
	attendanceFallback = "Attendance attached as scanned document"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

func isImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

func find(doc *docx.Document, marker string) (*docx.Paragraph, error) {
	p, ok := doc.Find(marker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, marker)
	}
	return p, nil
}

// loadAsset classifies an asset path. A missing or empty path is an
// expected absence; a file that fails to decode is not.
func loadAsset(path string) (*docx.Image, Outcome, error) {
	if path == "" {
		return nil, Skipped, fmt.Errorf("%w: no file given", ErrAssetMissing)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Skipped, fmt.Errorf("%w: %s", ErrAssetMissing, path)
		}
		return nil, Failed, fmt.Errorf("stat %s: %w", path, err)
	}
	if !isImagePath(path) {
		return nil, Skipped, fmt.Errorf("%w: %s", ErrUnsupportedAsset, path)
	}
	img, err := docx.LoadImage(path)
	if err != nil {
		return nil, Failed, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, Applied, nil
}

// InsertDetailsBlock replaces the marker paragraph with one labelled line
// per event field.
func InsertDetailsBlock(doc *docx.Document, marker string, rec *model.EventRecord) (Outcome, error) {
	p, err := find(doc, marker)
	if err != nil {
		return Skipped, err
	}
	fields := []struct{ label, value string }{
		{"Academic Year", rec.AcademicYear},
		{"Name of Event", rec.Title},
		{"Resource Person", rec.ResourcePerson},
		{"Event Type", rec.EventType},
		{"Date", rec.Date},
		{"Time", rec.EventTime},
		{"Venue", rec.Venue},
		{"Department", rec.Department},
		{"Designation", rec.ResourceDesignation},
		{"Event Coordinator", rec.EventCoordinator},
	}

	p.Clear()
	for _, f := range fields {
		line := p.InsertParagraphBefore()
		line.SetAlignment(docx.AlignLeft)
		line.SetSpacing(0, 0)

		label := line.AddRun(f.label)
		label.SetBold()
		label.SetFont(detailFont)
		label.SetSize(detailFontSize)

		line.AddRun("\t")

		value := line.AddRun(f.value)
		value.SetFont(detailFont)
		value.SetSize(detailFontSize)
	}
	return Applied, nil
}

// InsertImage replaces the marker paragraph with a centred picture scaled to
// width inches, optionally followed by a page break. Missing and non-image
// assets leave the marker in place.
func InsertImage(doc *docx.Document, marker, path string, width float64, pageBreak bool) (Outcome, error) {
	if path == "" {
		return Skipped, fmt.Errorf("%w: no file given", ErrAssetMissing)
	}
	p, err := find(doc, marker)
	if err != nil {
		return Skipped, err
	}
	img, outcome, err := loadAsset(path)
	if err != nil {
		return outcome, err
	}

	p.Clear()
	p.SetAlignment(docx.AlignCenter)
	p.SetKeepTogether()
	p.AddPicture(img, width)
	if pageBreak {
		p.AddBreak(docx.PageBreak)
	}
	return Applied, nil
}

// InsertGallery replaces the marker paragraph with the given photos in
// order, each followed by a line break. Photos that are missing or cannot be
// decoded are left out; the returned error lists them while the outcome
// stays Applied. A non-empty list always consumes the marker, even when no
// photo is usable.
func InsertGallery(doc *docx.Document, marker string, paths []string, width float64) (Outcome, error) {
	if len(paths) == 0 {
		return Skipped, fmt.Errorf("%w: no photos", ErrAssetMissing)
	}
	p, err := find(doc, marker)
	if err != nil {
		return Skipped, err
	}

	var (
		images  []*docx.Image
		dropped []error
	)
	for _, path := range paths {
		img, _, err := loadAsset(path)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		images = append(images, img)
	}
	p.Clear()
	p.SetAlignment(docx.AlignCenter)
	if len(images) == 0 {
		return Applied, fmt.Errorf("%w: no usable photos: %w", ErrAssetMissing, errors.Join(dropped...))
	}
	for _, img := range images {
		p.AddPicture(img, width)
		p.AddBreak(docx.LineBreak)
	}
	return Applied, errors.Join(dropped...)
}

// InsertAttendance replaces the marker paragraph with a page break, an
// "Attendance" title and either the attendance image or a note that the
// attendance was attached as a scan.
func InsertAttendance(doc *docx.Document, marker, path string, width float64) (Outcome, error) {
	if path == "" {
		return Skipped, fmt.Errorf("%w: no file given", ErrAssetMissing)
	}
	p, err := find(doc, marker)
	if err != nil {
		return Skipped, err
	}
	img, outcome, err := loadAsset(path)
	if err != nil && !errors.Is(err, ErrUnsupportedAsset) {
		return outcome, err
	}

	p.Clear()
	p.AddBreak(docx.PageBreak)
	title := p.AddRun(attendanceTitle)
	title.SetBold()
	title.SetSize(titleFontSize)
	p.AddBreak(docx.LineBreak)
	p.SetAlignment(docx.AlignCenter)
	p.SetKeepWithNext()

	if img == nil {
		p.AddRun(attendanceFallback)
		return Fallback, err
	}
	p.AddPicture(img, width)
	return Applied, nil
}
