package database

import (
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// Columns added after the first release. Older databases get them through
// ALTER TABLE on startup.
var addedEventColumns = []struct{ name, decl string }{
	{"academic_year", "TEXT"},
	{"resource_person", "TEXT"},
	{"resource_designation", "TEXT"},
	{"event_coordinator", "TEXT"},
	{"event_time", "TEXT"},
	{"event_type", "TEXT"},
	{"permission_letter", "TEXT"},
	{"invitation_letter", "TEXT"},
	{"notice_letter", "TEXT"},
	{"appreciation_letter", "TEXT"},
	{"event_photos", "TEXT"},
	{"attendance_photo", "TEXT"},
	{"outcome_1", "TEXT"},
	{"outcome_2", "TEXT"},
	{"outcome_3", "TEXT"},
	{"feedback_data", "TEXT"},
	{"pso1_selected", "INTEGER DEFAULT 0"},
	{"pso2_selected", "INTEGER DEFAULT 0"},
	{"selected_pos", "TEXT"},
}

// Open connects to the sqlite database at path.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// InitDatabase applies the schema and adds columns missing from databases
// created by earlier versions.
func InitDatabase(db *sqlx.DB) error {
	log.Info().Msg("Applying database schema...")
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}

	existing, err := columnsOf(db, "events")
	if err != nil {
		return err
	}
	for _, c := range addedEventColumns {
		if existing[c.name] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE events ADD COLUMN %s %s", c.name, c.decl)); err != nil {
			return fmt.Errorf("failed to add events.%s: %w", c.name, err)
		}
		log.Info().Str("column", c.name).Msg("Added missing events column")
	}

	existing, err = columnsOf(db, "reports")
	if err != nil {
		return err
	}
	if !existing["status"] {
		if _, err := db.Exec("ALTER TABLE reports ADD COLUMN status TEXT DEFAULT 'submitted'"); err != nil {
			return fmt.Errorf("failed to add reports.status: %w", err)
		}
		if _, err := db.Exec("UPDATE reports SET status = 'submitted' WHERE status IS NULL OR status = ''"); err != nil {
			return fmt.Errorf("failed to backfill reports.status: %w", err)
		}
	}
	log.Info().Msg("Schema applied successfully.")
	return nil
}

func columnsOf(db *sqlx.DB, table string) (map[string]bool, error) {
	var cols []struct {
		CID        int     `db:"cid"`
		Name       string  `db:"name"`
		Type       string  `db:"type"`
		NotNull    int     `db:"notnull"`
		Default    *string `db:"dflt_value"`
		PrimaryKey int     `db:"pk"`
	}
	if err := db.Select(&cols, "PRAGMA table_info("+table+")"); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[c.Name] = true
	}
	return out, nil
}
