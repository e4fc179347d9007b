package model

import "time"

// StatusSubmitted is the status every report starts with.
const StatusSubmitted = "submitted"

// GeneratedReport records one finished document.
type GeneratedReport struct {
	ID        int64     `db:"id" json:"id"`
	EventID   int64     `db:"event_id" json:"eventId"`
	FilePath  string    `db:"file_path" json:"filePath"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ReportListItem is a report joined with its event for listings.
type ReportListItem struct {
	ID         int64     `db:"id" json:"id"`
	EventID    int64     `db:"event_id" json:"eventId"`
	FilePath   string    `db:"file_path" json:"filePath"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	EventTitle string    `db:"event_title" json:"eventTitle"`
	EventDate  string    `db:"event_date" json:"eventDate"`
}

// ReportGeneratedEvent is published after a report has been stored.
type ReportGeneratedEvent struct {
	ReportID  int64     `json:"reportId"`
	EventID   int64     `json:"eventId"`
	FilePath  string    `json:"filePath"`
	ObjectKey string    `json:"objectKey,omitempty"`
	Outcomes  []string  `json:"outcomes"`
	CreatedAt time.Time `json:"createdAt"`
}
