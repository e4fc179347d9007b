package assembly

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventreport/docx"
	"eventreport/model"
)

// Options configures an Assembler. Widths are in inches.
type Options struct {
	TemplatePath string
	OutputDir    string

	LetterWidth     float64
	GalleryWidth    float64
	AttendanceWidth float64
	LetterPageBreak bool

	// BlankMissingMarkers removes the marker text when its asset is absent
	// instead of leaving it in the output.
	BlankMissingMarkers bool

	PSOTexts   [2]string
	POHeadings []string
}

// DefaultOptions returns the stock widths and outcome vocabulary.
func DefaultOptions() Options {
	return Options{
		TemplatePath:    "word_templates/college_letterhead.docx",
		OutputDir:       "generated_reports",
		LetterWidth:     6,
		GalleryWidth:    5,
		AttendanceWidth: 8,
		PSOTexts:        DefaultPSOTexts,
		POHeadings:      DefaultPOHeadings,
	}
}

// Observer is told about every finished stage and generation.
type Observer interface {
	StageCompleted(stage string, outcome Outcome)
	GenerationCompleted(state State, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) StageCompleted(string, Outcome)           {}
func (nopObserver) GenerationCompleted(State, time.Duration) {}

// Result describes one generation.
type Result struct {
	RunID        string                `json:"runId"`
	State        State                 `json:"state"`
	OutputPath   string                `json:"outputPath"`
	Replacements int                   `json:"replacements"`
	Stages       []StageResult         `json:"stages"`
	Report       model.GeneratedReport `json:"report"`
}

// Outcome returns the outcome recorded for stage.
func (r *Result) Outcome(stage string) (Outcome, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s.Outcome, true
		}
	}
	return "", false
}

// Assembler turns event records into finished reports. It holds no
// per-generation state and may be shared between goroutines as long as
// concurrent calls write to different output paths.
type Assembler struct {
	opts     Options
	log      zerolog.Logger
	observer Observer
	now      func() time.Time
}

// New returns an Assembler. observer may be nil.
func New(opts Options, logger zerolog.Logger, observer Observer) *Assembler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Assembler{opts: opts, log: logger, observer: observer, now: time.Now}
}

// Options returns the configuration the Assembler was built with.
func (a *Assembler) Options() Options { return a.opts }

// OutputPath returns where the report for rec is written.
func (a *Assembler) OutputPath(rec *model.EventRecord) string {
	return OutputPath(a.opts.OutputDir, rec.Title)
}

type generation struct {
	a      *Assembler
	doc    *docx.Document
	log    zerolog.Logger
	result *Result
}

// Generate runs the full pipeline for rec and writes the report. Only a
// template that cannot be loaded or a report that cannot be written is
// returned as an error; every other problem is recorded per stage.
func (a *Assembler) Generate(rec *model.EventRecord) (*Result, error) {
	start := a.now()
	runID := uuid.NewString()
	res := &Result{RunID: runID}
	logger := a.log.With().Str("run_id", runID).Int64("event_id", rec.ID).Logger()
	defer func() {
		a.observer.GenerationCompleted(res.State, a.now().Sub(start))
	}()

	doc, err := docx.Open(a.opts.TemplatePath)
	if err != nil {
		logger.Error().Err(err).Str("template", a.opts.TemplatePath).Msg("template load failed")
		return res, fmt.Errorf("%w: %w", ErrTemplateLoad, err)
	}
	res.State = StateLoaded
	g := &generation{a: a, doc: doc, log: logger, result: res}

	res.Replacements = doc.Substitute(Values(rec, a.opts))
	g.record(StageResult{
		Stage:   StageSubstitute,
		Outcome: Applied,
		Detail:  fmt.Sprintf("%d replacements", res.Replacements),
	})
	res.State = StateSubstituted

	g.run(StageDetails, MarkerEventDetails, "", func() (Outcome, error) {
		return InsertDetailsBlock(doc, MarkerEventDetails, rec)
	})
	res.State = StateDetailsInserted

	letters := []struct{ stage, marker, path string }{
		{StagePermission, MarkerImagePermission, rec.PermissionLetter},
		{StageInvitation, MarkerImageInvitation, rec.InvitationLetter},
		{StageNotice, MarkerImageNotice, rec.NoticeLetter},
		{StageAppreciation, MarkerImageAppreciation, rec.AppreciationLetter},
	}
	for _, l := range letters {
		g.run(l.stage, l.marker, l.path, func() (Outcome, error) {
			return InsertImage(doc, l.marker, l.path, a.opts.LetterWidth, a.opts.LetterPageBreak)
		})
	}
	res.State = StateImagesInserted

	g.run(StageGallery, MarkerEventPhotos, fmt.Sprintf("%d photos", len(rec.EventPhotos)), func() (Outcome, error) {
		return InsertGallery(doc, MarkerEventPhotos, rec.EventPhotos, a.opts.GalleryWidth)
	})
	res.State = StateGalleryInserted

	g.run(StageAttendance, MarkerAttendanceFile, rec.AttendanceFile, func() (Outcome, error) {
		return InsertAttendance(doc, MarkerAttendanceFile, rec.AttendanceFile, a.opts.AttendanceWidth)
	})
	res.State = StateAttendanceInserted

	g.run(StageFeedback, MarkerFeedbackTable, feedbackDetail(rec.Feedback), func() (Outcome, error) {
		return InsertFeedbackTable(doc, MarkerFeedbackTable, rec.Feedback)
	})
	res.State = StateFeedbackInserted

	path := a.OutputPath(rec)
	if err := os.MkdirAll(a.opts.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	if err := doc.SaveAs(path); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("report write failed")
		return res, fmt.Errorf("write report: %w", err)
	}
	res.State = StateSerialized
	res.OutputPath = path
	res.Report = model.GeneratedReport{
		EventID:   rec.ID,
		FilePath:  path,
		Status:    model.StatusSubmitted,
		CreatedAt: a.now().UTC(),
	}
	logger.Info().Str("path", path).Int("replacements", res.Replacements).Msg("report generated")
	return res, nil
}

func (g *generation) run(stage, marker, detail string, fn func() (Outcome, error)) {
	outcome, err := fn()
	if outcome == Skipped && g.a.opts.BlankMissingMarkers && !errors.Is(err, ErrMarkerNotFound) {
		if p, ok := g.doc.Find(marker); ok {
			p.Replace(marker, "")
		}
	}
	g.record(StageResult{Stage: stage, Marker: marker, Outcome: outcome, Err: err, Detail: detail})
}

func (g *generation) record(r StageResult) {
	g.result.Stages = append(g.result.Stages, r)
	g.a.observer.StageCompleted(r.Stage, r.Outcome)

	var ev *zerolog.Event
	switch {
	case r.Outcome == Failed:
		ev = g.log.Warn()
	case r.Err != nil:
		ev = g.log.Info()
	default:
		ev = g.log.Debug()
	}
	ev = ev.Str("stage", r.Stage).Str("outcome", string(r.Outcome))
	if r.Detail != "" {
		ev = ev.Str("detail", r.Detail)
	}
	ev.Err(r.Err).Msg("stage finished")
}
