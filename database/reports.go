package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventreport/model"
)

// InsertReport appends a generated report and returns its ID.
func InsertReport(dbtx DBTX, r *model.GeneratedReport) (int64, error) {
	if r.Status == "" {
		r.Status = model.StatusSubmitted
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO reports (event_id, file_path, status, created_at) VALUES (?, ?, ?, ?)`
	res, err := dbtx.Exec(q, r.EventID, r.FilePath, r.Status, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("InsertReport failed for event %d: %w", r.EventID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("InsertReport: failed to read id: %w", err)
	}
	r.ID = id
	return id, nil
}

// GetReportByID returns nil when no report has the given ID.
func GetReportByID(dbtx DBTX, id int64) (*model.GeneratedReport, error) {
	var r model.GeneratedReport
	const q = `
		SELECT id, event_id, COALESCE(file_path, '') AS file_path,
			COALESCE(status, 'submitted') AS status, created_at
		FROM reports WHERE id = ?`
	if err := dbtx.Get(&r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetReportByID failed for id %d: %w", id, err)
	}
	return &r, nil
}

// ListReports returns every report with its event title, newest first.
func ListReports(dbtx DBTX) ([]model.ReportListItem, error) {
	items := []model.ReportListItem{}
	const q = `
		SELECT r.id, r.event_id, COALESCE(r.file_path, '') AS file_path,
			COALESCE(r.status, 'submitted') AS status, r.created_at,
			COALESCE(e.title, '') AS event_title, COALESCE(e.date, '') AS event_date
		FROM reports r
		JOIN events e ON r.event_id = e.id
		ORDER BY r.created_at DESC, r.id DESC`
	if err := dbtx.Select(&items, q); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return items, nil
}
