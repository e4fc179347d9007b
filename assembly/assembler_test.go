package assembly

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreport/docx"
	"eventreport/docx/docxtest"
	"eventreport/model"
)

var allPlaceholders = []string{
	"academic_year", "date", "event_name", "event_type", "event_date",
	"event_time", "venue", "department", "resource_person",
	"resource_designation", "event_coordinator", "event coordinator",
	"event_description", "event description", "outcome_1", "outcome_2",
	"outcome_3", "PSO_SECTION", "PO_SECTION",
}

func fullTemplate() docxtest.Template {
	var body strings.Builder
	body.WriteString(docxtest.P("Report: {{event_name}}"))
	for _, m := range Markers {
		body.WriteString(docxtest.P(m))
	}
	var cells []string
	for _, k := range allPlaceholders {
		cells = append(cells, docxtest.P(docx.Placeholder(k)))
	}
	body.WriteString(docxtest.Table(cells))
	return docxtest.Template{
		Body:   body.String(),
		Header: docxtest.P("{{department}} | {{academic_year}}"),
		Footer: docxtest.P("{{venue}}"),
		Styles: []string{"Normal", "TableGrid"},
	}
}

func techTalk(t *testing.T, dir string) *model.EventRecord {
	t.Helper()
	return &model.EventRecord{
		ID:                  7,
		Title:               "Tech Talk",
		Date:                "2024-03-01",
		Venue:               "Hall A",
		Department:          "IT",
		Description:         "A talk about Go.",
		AcademicYear:        "2023-24",
		ResourcePerson:      "Dr. Rao",
		ResourceDesignation: "Professor",
		EventCoordinator:    "Ms. Iyer",
		EventTime:           "10:00",
		EventType:           "Seminar",
		Outcome1:            "learned",
		PermissionLetter:    docxtest.PNG(t, dir, "permission.png", 60, 80),
		InvitationLetter:    docxtest.JPEG(t, dir, "invitation.jpg", 60, 80),
		NoticeLetter:        docxtest.PNG(t, dir, "notice.png", 60, 80),
		AppreciationLetter:  docxtest.PNG(t, dir, "appreciation.png", 60, 80),
		EventPhotos: []string{
			docxtest.PNG(t, dir, "photo1.png", 40, 20),
			docxtest.JPEG(t, dir, "photo2.jpg", 20, 40),
		},
		AttendanceFile: docxtest.PNG(t, dir, "attendance.png", 30, 30),
		Feedback:       []model.FeedbackEntry{{Name: "A", Rating: "5", Comment: "Great"}},
		PSO1:           true,
		SelectedPOs:    []string{"Ethics"},
	}
}

type recorder struct {
	stages map[string]Outcome
	state  State
}

func (r *recorder) StageCompleted(stage string, o Outcome) { r.stages[stage] = o }
func (r *recorder) GenerationCompleted(s State, _ time.Duration) {
	r.state = s
}

func newAssembler(t *testing.T, tpl docxtest.Template, obs Observer) (*Assembler, string) {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.TemplatePath = tpl.Write(t, dir)
	opts.OutputDir = filepath.Join(dir, "out")
	return New(opts, zerolog.Nop(), obs), dir
}

func TestGenerateTechTalk(t *testing.T) {
	obs := &recorder{stages: map[string]Outcome{}}
	a, dir := newAssembler(t, fullTemplate(), obs)
	rec := techTalk(t, dir)

	res, err := a.Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, StateSerialized, res.State)
	assert.Equal(t, StateSerialized, obs.state)
	assert.Equal(t, filepath.Join(dir, "out", "Tech_Talk.docx"), res.OutputPath)
	assert.Equal(t, model.GeneratedReport{
		EventID:   7,
		FilePath:  res.OutputPath,
		Status:    model.StatusSubmitted,
		CreatedAt: res.Report.CreatedAt,
	}, res.Report)
	require.Len(t, res.Stages, 9)
	for _, s := range res.Stages {
		assert.Equal(t, Applied, s.Outcome, s.Stage)
		assert.NoError(t, s.Err, s.Stage)
		assert.Equal(t, s.Outcome, obs.stages[s.Stage])
	}

	doc, err := docx.Open(res.OutputPath)
	require.NoError(t, err)
	for _, m := range Markers {
		assert.Zero(t, doc.Count(m), m)
	}
	assert.Zero(t, doc.Count("{{"))
	assert.Equal(t, 1, doc.Count("Report: Tech Talk"))
	assert.Equal(t, 1, doc.Count("IT | 2023-24"))

	var gallery *docx.Paragraph
	for _, p := range doc.Body().Paragraphs() {
		if len(p.Images()) == 2 {
			gallery = p
		}
	}
	require.NotNil(t, gallery, "gallery paragraph")
	assert.Equal(t, docx.AlignCenter, gallery.Alignment())
	for i, name := range gallery.Images() {
		want, err := os.ReadFile(rec.EventPhotos[i])
		require.NoError(t, err)
		got, _ := doc.File(name)
		assert.Equal(t, want, got, "photo %d out of order", i)
	}

	tables := doc.Body().Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, [][]string{
		{"Name", "Rating", "Comment"},
		{"A", "5", "Great"},
	}, tables[0].CellTexts())
	assert.Equal(t, "TableGrid", tables[0].StyleID())
}

func TestSubstitutionCompleteness(t *testing.T) {
	a, dir := newAssembler(t, fullTemplate(), nil)
	rec := techTalk(t, dir)

	res, err := a.Generate(rec)
	require.NoError(t, err)
	doc, err := docx.Open(res.OutputPath)
	require.NoError(t, err)

	for _, k := range allPlaceholders {
		assert.Zero(t, doc.Count(docx.Placeholder(k)), k)
	}
	// empty values never render as a literal
	assert.Zero(t, doc.Count("None"))
	assert.Equal(t, 1, doc.Count("• Ethics"))
	assert.Equal(t, 1, doc.Count("PSO1: An ability"))
	assert.Zero(t, doc.Count("PSO2"))
	assert.Zero(t, doc.Substitute(Values(rec, a.Options())), "second pass finds nothing")
}

func TestSubstituteTwiceIsNoop(t *testing.T) {
	doc, err := docx.Read(fullTemplate().Build())
	require.NoError(t, err)
	rec := &model.EventRecord{Title: "x"}
	values := Values(rec, DefaultOptions())

	assert.Positive(t, doc.Substitute(values))
	assert.Zero(t, doc.Substitute(values))
}

func TestMarkerConsumedOnce(t *testing.T) {
	doc, err := docx.Read(docxtest.Template{
		Body: docxtest.P(MarkerFeedbackTable) + docxtest.P(MarkerFeedbackTable),
	}.Build())
	require.NoError(t, err)

	outcome, err := InsertFeedbackTable(doc, MarkerFeedbackTable, []model.FeedbackEntry{{Name: "A"}})
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	assert.Equal(t, 1, doc.Count(MarkerFeedbackTable))
	assert.Len(t, doc.Body().Tables(), 1)

	blocks := doc.Body().Blocks()
	require.Len(t, blocks, 3)
	assert.IsType(t, &docx.Table{}, blocks[0], "table is placed before the cleared marker paragraph")
}

func TestFeedbackTableCap(t *testing.T) {
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerFeedbackTable)}.Build())
	require.NoError(t, err)

	var entries []model.FeedbackEntry
	for i := 0; i < 15; i++ {
		entries = append(entries, model.FeedbackEntry{Name: "n" + strconv.Itoa(i), Rating: strconv.Itoa(i % 5)})
	}
	_, err = InsertFeedbackTable(doc, MarkerFeedbackTable, entries)
	require.NoError(t, err)

	tables := doc.Body().Tables()
	require.Len(t, tables, 1)
	rows := tables[0].CellTexts()
	require.Len(t, rows, 11)
	for i, row := range rows[1:] {
		assert.Equal(t, []string{"n" + strconv.Itoa(i), strconv.Itoa(i % 5), ""}, row)
	}
	assert.Empty(t, tables[0].StyleID(), "no TableGrid without a styles part")

	header := tables[0].Rows()[0].Cells()[0].Paragraphs()[0].Runs()[0]
	assert.True(t, header.Bold())
	assert.Equal(t, "Times New Roman", header.Font())
	assert.Equal(t, 12.0, header.Size())
}

func TestFeedbackTableEmpty(t *testing.T) {
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerFeedbackTable)}.Build())
	require.NoError(t, err)

	outcome, err := InsertFeedbackTable(doc, MarkerFeedbackTable, nil)
	assert.Equal(t, Skipped, outcome)
	assert.ErrorIs(t, err, ErrEmptyFeedback)
	assert.Equal(t, 1, doc.Count(MarkerFeedbackTable))
}

func TestMissingAttendanceKeepsMarker(t *testing.T) {
	a, dir := newAssembler(t, docxtest.Template{
		Body: docxtest.P("Attendance follows: ", MarkerAttendanceFile),
	}, nil)
	rec := &model.EventRecord{Title: "t", AttendanceFile: filepath.Join(dir, "gone.png")}

	res, err := a.Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, StateSerialized, res.State)
	outcome, _ := res.Outcome(StageAttendance)
	assert.Equal(t, Skipped, outcome)

	doc, err := docx.Open(res.OutputPath)
	require.NoError(t, err)
	p := doc.Body().Paragraphs()[0]
	assert.Equal(t, "Attendance follows: "+MarkerAttendanceFile, p.Text())
	assert.Len(t, p.Runs(), 2)
	assert.False(t, p.HasPageBreak())
}

func TestNoAttendanceKeepsMarker(t *testing.T) {
	a, _ := newAssembler(t, docxtest.Template{
		Body: docxtest.P("Attendance follows: ", MarkerAttendanceFile),
	}, nil)

	res, err := a.Generate(&model.EventRecord{Title: "t", AttendanceFile: ""})
	require.NoError(t, err)
	assert.Equal(t, StateSerialized, res.State)
	outcome, _ := res.Outcome(StageAttendance)
	assert.Equal(t, Skipped, outcome)

	doc, err := docx.Open(res.OutputPath)
	require.NoError(t, err)
	p := doc.Body().Paragraphs()[0]
	assert.Equal(t, "Attendance follows: "+MarkerAttendanceFile, p.Text())
	assert.Len(t, p.Runs(), 2)
	assert.False(t, p.HasPageBreak())
}

func TestAttendanceFallbackForScan(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerAttendanceFile)}.Build())
	require.NoError(t, err)
	scan := docxtest.File(t, dir, "attendance.pdf", []byte("%PDF-1.4"))

	outcome, err := InsertAttendance(doc, MarkerAttendanceFile, scan, 8)
	assert.Equal(t, Fallback, outcome)
	assert.ErrorIs(t, err, ErrUnsupportedAsset)

	p := doc.Body().Paragraphs()[0]
	assert.True(t, p.HasPageBreak())
	assert.Empty(t, p.Images())
	assert.Contains(t, p.Text(), "Attendance\n")
	assert.Contains(t, p.Text(), "Attendance attached as scanned document")
	assert.Equal(t, docx.AlignCenter, p.Alignment())
	assert.Zero(t, doc.Count(MarkerAttendanceFile))
}

func TestAttendanceImage(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerAttendanceFile)}.Build())
	require.NoError(t, err)

	outcome, err := InsertAttendance(doc, MarkerAttendanceFile, docxtest.PNG(t, dir, "a.png", 10, 10), 8)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)

	p := doc.Body().Paragraphs()[0]
	assert.True(t, p.HasPageBreak())
	assert.Len(t, p.Images(), 1)
	runs := p.Runs()
	require.GreaterOrEqual(t, len(runs), 2)
	assert.Equal(t, "Attendance", runs[1].Text())
	assert.True(t, runs[1].Bold())
	assert.Equal(t, 18.0, runs[1].Size())
}

func TestCorruptLetterFailsWithoutChange(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerImageNotice)}.Build())
	require.NoError(t, err)
	bad := docxtest.File(t, dir, "notice.png", []byte("not really a png"))

	outcome, err := InsertImage(doc, MarkerImageNotice, bad, 6, false)
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, docx.ErrUnsupportedImage)
	assert.Equal(t, 1, doc.Count(MarkerImageNotice))
}

func TestLetterNotAnImageIsSkipped(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerImagePermission)}.Build())
	require.NoError(t, err)
	pdf := docxtest.File(t, dir, "permission.pdf", []byte("%PDF-1.4"))

	outcome, err := InsertImage(doc, MarkerImagePermission, pdf, 6, true)
	assert.Equal(t, Skipped, outcome)
	assert.ErrorIs(t, err, ErrUnsupportedAsset)
	assert.Equal(t, 1, doc.Count(MarkerImagePermission))
}

func TestLetterWithPageBreak(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerImageInvitation)}.Build())
	require.NoError(t, err)

	outcome, err := InsertImage(doc, MarkerImageInvitation, docxtest.PNG(t, dir, "i.png", 10, 20), 6, true)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	p := doc.Body().Paragraphs()[0]
	assert.Len(t, p.Images(), 1)
	assert.True(t, p.HasPageBreak())
	assert.Equal(t, docx.AlignCenter, p.Alignment())
}

func TestGallerySkipsMissingPhotos(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerEventPhotos)}.Build())
	require.NoError(t, err)
	first := docxtest.PNG(t, dir, "1.png", 10, 10)
	last := docxtest.JPEG(t, dir, "3.jpg", 10, 10)

	outcome, err := InsertGallery(doc, MarkerEventPhotos, []string{first, filepath.Join(dir, "2.png"), last}, 5)
	assert.Equal(t, Applied, outcome)
	assert.ErrorIs(t, err, ErrAssetMissing)

	p := doc.Body().Paragraphs()[0]
	names := p.Images()
	require.Len(t, names, 2)
	assert.True(t, strings.HasSuffix(names[0], ".png"))
	assert.True(t, strings.HasSuffix(names[1], ".jpeg"))
}

func TestGalleryNothingUsable(t *testing.T) {
	dir := t.TempDir()
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P(MarkerEventPhotos)}.Build())
	require.NoError(t, err)

	outcome, err := InsertGallery(doc, MarkerEventPhotos, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.jpg")}, 5)
	assert.Equal(t, Applied, outcome)
	assert.ErrorIs(t, err, ErrAssetMissing)
	assert.Equal(t, 0, doc.Count(MarkerEventPhotos))
	p := doc.Body().Paragraphs()[0]
	assert.Equal(t, docx.AlignCenter, p.Alignment())
	assert.Empty(t, p.Images())

	doc, err = docx.Read(docxtest.Template{Body: docxtest.P(MarkerEventPhotos)}.Build())
	require.NoError(t, err)

	outcome, err = InsertGallery(doc, MarkerEventPhotos, nil, 5)
	assert.Equal(t, Skipped, outcome)
	assert.ErrorIs(t, err, ErrAssetMissing)
	assert.Equal(t, 1, doc.Count(MarkerEventPhotos), "an empty list leaves the template alone")
}

func TestDetailsBlock(t *testing.T) {
	doc, err := docx.Read(docxtest.Template{Body: docxtest.P("intro") + docxtest.P(MarkerEventDetails)}.Build())
	require.NoError(t, err)
	rec := &model.EventRecord{Title: "Tech Talk", Venue: "Hall A", AcademicYear: "2023-24"}

	outcome, err := InsertDetailsBlock(doc, MarkerEventDetails, rec)
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)

	paras := doc.Body().Paragraphs()
	require.Len(t, paras, 12)
	assert.Equal(t, "intro", paras[0].Text())
	assert.Equal(t, "Academic Year\t2023-24", paras[1].Text())
	assert.Equal(t, "Name of Event\tTech Talk", paras[2].Text())
	assert.Equal(t, "Venue\tHall A", paras[7].Text())
	assert.Equal(t, "Event Coordinator\t", paras[10].Text())
	assert.Equal(t, "", paras[11].Text())

	label := paras[1].Runs()[0]
	assert.True(t, label.Bold())
	assert.Equal(t, 12.0, label.Size())
	assert.False(t, paras[1].Runs()[2].Bold())
	assert.Equal(t, docx.AlignLeft, paras[1].Alignment())

	outcome, err = InsertDetailsBlock(doc, MarkerEventDetails, rec)
	assert.Equal(t, Skipped, outcome)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
}

func TestBlankMissingMarkers(t *testing.T) {
	tpl := docxtest.Template{Body: docxtest.P(MarkerImageNotice) + docxtest.P(MarkerFeedbackTable)}
	a, _ := newAssembler(t, tpl, nil)
	a.opts.BlankMissingMarkers = true

	res, err := a.Generate(&model.EventRecord{Title: "blank"})
	require.NoError(t, err)
	doc, err := docx.Open(res.OutputPath)
	require.NoError(t, err)
	assert.Zero(t, doc.Count(MarkerImageNotice))
	assert.Zero(t, doc.Count(MarkerFeedbackTable))
	assert.Len(t, doc.Body().Paragraphs(), 2)
}

func TestTemplateLoadFailure(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.TemplatePath = docxtest.File(t, dir, "broken.docx", []byte("nope"))
	opts.OutputDir = filepath.Join(dir, "out")
	a := New(opts, zerolog.Nop(), nil)

	res, err := a.Generate(&model.EventRecord{Title: "x"})
	assert.ErrorIs(t, err, ErrTemplateLoad)
	assert.ErrorIs(t, err, docx.ErrInvalidPackage)
	assert.Empty(t, res.OutputPath)
	_, statErr := os.Stat(opts.OutputDir)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Tech Talk":              "Tech_Talk",
		"  Tech \t  Talk  ":      "Tech_Talk",
		"Café Réunion":           "Cafe_Reunion",
		"../../etc/passwd":       "etcpasswd",
		"a/b:c*d?":               "abcd",
		"":                       "report",
		"日本語":                    "report",
		"Q&A Session 2024-25.v2": "QA_Session_2024-25.v2",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeTitle(in), in)
	}
	assert.Equal(t, filepath.Join("out", "Tech_Talk.docx"), OutputPath("out", "Tech Talk"))
}

func TestBuildSections(t *testing.T) {
	assert.Equal(t, "• Ethics\n• Communication",
		BuildPOSection([]string{"Ethics", "Made Up", " Communication "}, DefaultPOHeadings))
	assert.Equal(t, "", BuildPOSection(nil, DefaultPOHeadings))

	both := BuildPSOSection(&model.EventRecord{PSO1: true, PSO2: true}, [2]string{"one", "two"})
	assert.Equal(t, "one\n\ntwo", both)
	assert.Equal(t, "two", BuildPSOSection(&model.EventRecord{PSO2: true}, [2]string{"one", "two"}))
}
