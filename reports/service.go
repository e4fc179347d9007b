// Package reports ties the assembly engine to the event store: it loads an
// event, generates its document, records the report and fans out to the
// optional archive and notification targets.
package reports

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"eventreport/assembly"
	"eventreport/database"
	"eventreport/model"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrReportNotFound = errors.New("report not found")
	ErrOutputConflict = errors.New("events share an output path")
)

// Archiver stores a copy of a finished report.
type Archiver interface {
	Upload(ctx context.Context, eventID int64, path string) (string, error)
}

// Publisher announces finished reports.
type Publisher interface {
	PublishReportGenerated(ctx context.Context, event model.ReportGeneratedEvent) error
}

// SideEffectObserver is told whether archive and notify calls succeeded.
type SideEffectObserver interface {
	SideEffect(target string, err error)
}

// Service generates and records reports.
type Service struct {
	db         *sqlx.DB
	assembler  *assembly.Assembler
	uploadRoot string

	archive     Archiver
	publisher   Publisher
	sideEffects SideEffectObserver
	concurrency int
}

// Option customises a Service.
type Option func(*Service)

func WithArchiver(a Archiver) Option { return func(s *Service) { s.archive = a } }

func WithPublisher(p Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithSideEffectObserver(o SideEffectObserver) Option {
	return func(s *Service) { s.sideEffects = o }
}

// WithConcurrency bounds how many reports a batch assembles at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService returns a Service. Relative asset paths stored with events are
// resolved against uploadRoot.
func NewService(db *sqlx.DB, asm *assembly.Assembler, uploadRoot string, opts ...Option) *Service {
	s := &Service{db: db, assembler: asm, uploadRoot: uploadRoot, concurrency: 4}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generated is the outcome of one successful generation.
type Generated struct {
	Report    model.GeneratedReport `json:"report"`
	Result    *assembly.Result      `json:"result"`
	ObjectKey string                `json:"objectKey,omitempty"`
}

// Generate builds the report for eventID.
func (s *Service) Generate(ctx context.Context, eventID int64) (*Generated, error) {
	rec, err := s.loadEvent(eventID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, rec)
}

func (s *Service) loadEvent(eventID int64) (*model.EventRecord, error) {
	rec, err := database.GetEventByID(s.db, eventID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %d", ErrEventNotFound, eventID)
	}
	s.resolveAssets(rec)
	return rec, nil
}

func (s *Service) generate(ctx context.Context, rec *model.EventRecord) (*Generated, error) {
	res, err := s.assembler.Generate(rec)
	if err != nil {
		return nil, fmt.Errorf("generate report for event %d: %w", rec.ID, err)
	}

	report := res.Report
	if _, err := database.InsertReport(s.db, &report); err != nil {
		return nil, err
	}
	res.Report = report
	out := &Generated{Report: report, Result: res}

	if s.archive != nil {
		key, err := s.archive.Upload(ctx, rec.ID, report.FilePath)
		s.observe("archive", err)
		if err != nil {
			log.Warn().Err(err).Int64("report_id", report.ID).Msg("report archive upload failed")
		}
		out.ObjectKey = key
	}

	if s.publisher != nil {
		event := model.ReportGeneratedEvent{
			ReportID:  report.ID,
			EventID:   rec.ID,
			FilePath:  report.FilePath,
			ObjectKey: out.ObjectKey,
			CreatedAt: report.CreatedAt,
		}
		for _, st := range res.Stages {
			event.Outcomes = append(event.Outcomes, st.Stage+"="+string(st.Outcome))
		}
		err := s.publisher.PublishReportGenerated(ctx, event)
		s.observe("notify", err)
		if err != nil {
			log.Warn().Err(err).Int64("report_id", report.ID).Msg("report.generated publish failed")
		}
	}
	return out, nil
}

func (s *Service) observe(target string, err error) {
	if s.sideEffects != nil {
		s.sideEffects.SideEffect(target, err)
	}
}

func (s *Service) resolveAssets(rec *model.EventRecord) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(s.uploadRoot, filepath.FromSlash(p))
	}
	rec.PermissionLetter = resolve(rec.PermissionLetter)
	rec.InvitationLetter = resolve(rec.InvitationLetter)
	rec.NoticeLetter = resolve(rec.NoticeLetter)
	rec.AppreciationLetter = resolve(rec.AppreciationLetter)
	rec.AttendanceFile = resolve(rec.AttendanceFile)
	photos := make([]string, len(rec.EventPhotos))
	for i, p := range rec.EventPhotos {
		photos[i] = resolve(p)
	}
	rec.EventPhotos = photos
}

// List returns every generated report, newest first.
func (s *Service) List() ([]model.ReportListItem, error) {
	return database.ListReports(s.db)
}

// Lookup returns the stored report with id.
func (s *Service) Lookup(id int64) (*model.GeneratedReport, error) {
	r, err := database.GetReportByID(s.db, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %d", ErrReportNotFound, id)
	}
	return r, nil
}
