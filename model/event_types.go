package model

import "database/sql"

// FeedbackEntry is one row of participant feedback.
type FeedbackEntry struct {
	Name    string `json:"name"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
}

// EventRecord is the input of one report generation. Asset paths are empty
// or point to files that passed upload validation.
type EventRecord struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	Date                string `json:"date"`
	Venue               string `json:"venue"`
	Department          string `json:"department"`
	Description         string `json:"description"`
	AcademicYear        string `json:"academicYear"`
	ResourcePerson      string `json:"resourcePerson"`
	ResourceDesignation string `json:"resourceDesignation"`
	EventCoordinator    string `json:"eventCoordinator"`
	EventTime           string `json:"eventTime"`
	EventType           string `json:"eventType"`
	Outcome1            string `json:"outcome1"`
	Outcome2            string `json:"outcome2"`
	Outcome3            string `json:"outcome3"`

	PermissionLetter   string   `json:"permissionLetter"`
	InvitationLetter   string   `json:"invitationLetter"`
	NoticeLetter       string   `json:"noticeLetter"`
	AppreciationLetter string   `json:"appreciationLetter"`
	EventPhotos        []string `json:"eventPhotos"`
	AttendanceFile     string   `json:"attendanceFile"`

	Feedback    []FeedbackEntry `json:"feedback"`
	PSO1        bool            `json:"pso1"`
	PSO2        bool            `json:"pso2"`
	SelectedPOs []string        `json:"selectedPos"`
}

// EventRow mirrors the events table. List columns hold JSON arrays.
type EventRow struct {
	ID                  int64          `db:"id"`
	Title               sql.NullString `db:"title"`
	Date                sql.NullString `db:"date"`
	Venue               sql.NullString `db:"venue"`
	Department          sql.NullString `db:"department"`
	Description         sql.NullString `db:"description"`
	AcademicYear        sql.NullString `db:"academic_year"`
	ResourcePerson      sql.NullString `db:"resource_person"`
	ResourceDesignation sql.NullString `db:"resource_designation"`
	EventCoordinator    sql.NullString `db:"event_coordinator"`
	EventTime           sql.NullString `db:"event_time"`
	EventType           sql.NullString `db:"event_type"`
	PermissionLetter    sql.NullString `db:"permission_letter"`
	InvitationLetter    sql.NullString `db:"invitation_letter"`
	NoticeLetter        sql.NullString `db:"notice_letter"`
	AppreciationLetter  sql.NullString `db:"appreciation_letter"`
	EventPhotos         sql.NullString `db:"event_photos"`
	AttendancePhoto     sql.NullString `db:"attendance_photo"`
	Outcome1            sql.NullString `db:"outcome_1"`
	Outcome2            sql.NullString `db:"outcome_2"`
	Outcome3            sql.NullString `db:"outcome_3"`
	FeedbackData        sql.NullString `db:"feedback_data"`
	PSO1Selected        sql.NullInt64  `db:"pso1_selected"`
	PSO2Selected        sql.NullInt64  `db:"pso2_selected"`
	SelectedPOs         sql.NullString `db:"selected_pos"`
}
