package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"eventreport/model"
)

const eventColumns = `
	id, title, date, venue, department, description, academic_year,
	resource_person, resource_designation, event_coordinator, event_time,
	event_type, permission_letter, invitation_letter, notice_letter,
	appreciation_letter, event_photos, attendance_photo, outcome_1, outcome_2,
	outcome_3, feedback_data, pso1_selected, pso2_selected, selected_pos`

// InsertEvent stores rec and returns its new ID. Events are normally
// created by the intake form; this is used for seeding and tests.
func InsertEvent(dbtx DBTX, rec *model.EventRecord) (int64, error) {
	row := toRow(rec)
	const q = `
		INSERT INTO events (
			title, date, venue, department, description, academic_year,
			resource_person, resource_designation, event_coordinator, event_time,
			event_type, permission_letter, invitation_letter, notice_letter,
			appreciation_letter, event_photos, attendance_photo, outcome_1, outcome_2,
			outcome_3, feedback_data, pso1_selected, pso2_selected, selected_pos
		) VALUES (
			:title, :date, :venue, :department, :description, :academic_year,
			:resource_person, :resource_designation, :event_coordinator, :event_time,
			:event_type, :permission_letter, :invitation_letter, :notice_letter,
			:appreciation_letter, :event_photos, :attendance_photo, :outcome_1, :outcome_2,
			:outcome_3, :feedback_data, :pso1_selected, :pso2_selected, :selected_pos
		)`
	res, err := dbtx.NamedExec(q, row)
	if err != nil {
		return 0, fmt.Errorf("InsertEvent failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("InsertEvent: failed to read id: %w", err)
	}
	return id, nil
}

// GetEventByID returns nil when no event has the given ID.
func GetEventByID(dbtx DBTX, id int64) (*model.EventRecord, error) {
	var row model.EventRow
	err := dbtx.Get(&row, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetEventByID failed for id %d: %w", id, err)
	}
	return toRecord(&row), nil
}

// ListEventIDs returns every event ID, newest first.
func ListEventIDs(dbtx DBTX) ([]int64, error) {
	var ids []int64
	if err := dbtx.Select(&ids, "SELECT id FROM events ORDER BY id DESC"); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return ids, nil
}

func toRecord(row *model.EventRow) *model.EventRecord {
	rec := &model.EventRecord{
		ID:                  row.ID,
		Title:               row.Title.String,
		Date:                row.Date.String,
		Venue:               row.Venue.String,
		Department:          row.Department.String,
		Description:         row.Description.String,
		AcademicYear:        row.AcademicYear.String,
		ResourcePerson:      row.ResourcePerson.String,
		ResourceDesignation: row.ResourceDesignation.String,
		EventCoordinator:    row.EventCoordinator.String,
		EventTime:           row.EventTime.String,
		EventType:           row.EventType.String,
		Outcome1:            row.Outcome1.String,
		Outcome2:            row.Outcome2.String,
		Outcome3:            row.Outcome3.String,
		PermissionLetter:    row.PermissionLetter.String,
		InvitationLetter:    row.InvitationLetter.String,
		NoticeLetter:        row.NoticeLetter.String,
		AppreciationLetter:  row.AppreciationLetter.String,
		AttendanceFile:      row.AttendancePhoto.String,
		PSO1:                row.PSO1Selected.Int64 != 0,
		PSO2:                row.PSO2Selected.Int64 != 0,
	}
	decodeList(row.ID, "event_photos", row.EventPhotos, &rec.EventPhotos)
	decodeList(row.ID, "feedback_data", row.FeedbackData, &rec.Feedback)
	decodeList(row.ID, "selected_pos", row.SelectedPOs, &rec.SelectedPOs)
	return rec
}

// decodeList reads a JSON array column. Rows written by older versions may
// hold anything; those read as an empty list.
func decodeList[T any](id int64, column string, src sql.NullString, dst *[]T) {
	if !src.Valid || src.String == "" {
		return
	}
	var out []T
	if err := json.Unmarshal([]byte(src.String), &out); err != nil {
		log.Warn().Err(err).Int64("event_id", id).Str("column", column).Msg("Ignoring malformed list column")
		return
	}
	*dst = out
}

func toRow(rec *model.EventRecord) *model.EventRow {
	str := func(s string) sql.NullString {
		return sql.NullString{String: s, Valid: s != ""}
	}
	flag := func(b bool) sql.NullInt64 {
		if b {
			return sql.NullInt64{Int64: 1, Valid: true}
		}
		return sql.NullInt64{Int64: 0, Valid: true}
	}
	return &model.EventRow{
		Title:               str(rec.Title),
		Date:                str(rec.Date),
		Venue:               str(rec.Venue),
		Department:          str(rec.Department),
		Description:         str(rec.Description),
		AcademicYear:        str(rec.AcademicYear),
		ResourcePerson:      str(rec.ResourcePerson),
		ResourceDesignation: str(rec.ResourceDesignation),
		EventCoordinator:    str(rec.EventCoordinator),
		EventTime:           str(rec.EventTime),
		EventType:           str(rec.EventType),
		PermissionLetter:    str(rec.PermissionLetter),
		InvitationLetter:    str(rec.InvitationLetter),
		NoticeLetter:        str(rec.NoticeLetter),
		AppreciationLetter:  str(rec.AppreciationLetter),
		EventPhotos:         encodeList(rec.EventPhotos),
		AttendancePhoto:     str(rec.AttendanceFile),
		Outcome1:            str(rec.Outcome1),
		Outcome2:            str(rec.Outcome2),
		Outcome3:            str(rec.Outcome3),
		FeedbackData:        encodeList(rec.Feedback),
		PSO1Selected:        flag(rec.PSO1),
		PSO2Selected:        flag(rec.PSO2),
		SelectedPOs:         encodeList(rec.SelectedPOs),
	}
}

func encodeList[T any](list []T) sql.NullString {
	if len(list) == 0 {
		return sql.NullString{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
