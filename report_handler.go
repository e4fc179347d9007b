package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"eventreport/assembly"
	"eventreport/reports"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// GenerateReportHandler generates the report for the event in the path and
// returns the stored report with its per-stage outcomes.
func GenerateReportHandler(svc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["eventID"], 10, 64)
		if err != nil {
			writeJSONError(w, "Invalid event id.", http.StatusBadRequest)
			return
		}

		gen, err := svc.Generate(r.Context(), id)
		if err != nil {
			log.Error().Err(err).Int64("event_id", id).Msg("Report generation failed")
			writeJSONError(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusCreated, gen)
	}
}

// BatchReportsHandler generates reports for {"eventIds": [...]}.
func BatchReportsHandler(svc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EventIDs []int64 `json:"eventIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.EventIDs) == 0 {
			writeJSONError(w, "eventIds is required.", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()
		items, err := svc.GenerateBatch(ctx, req.EventIDs)
		if err != nil {
			writeJSONError(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// ListReportsHandler lists generated reports, newest first.
func ListReportsHandler(svc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List()
		if err != nil {
			log.Error().Err(err).Msg("Error listing reports")
			writeJSONError(w, "Failed to list reports.", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DownloadReportHandler serves a generated document as an attachment.
func DownloadReportHandler(svc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSONError(w, "Invalid report id.", http.StatusBadRequest)
			return
		}
		report, err := svc.Lookup(id)
		if err != nil {
			writeJSONError(w, err.Error(), statusFor(err))
			return
		}
		if _, err := os.Stat(report.FilePath); err != nil {
			log.Warn().Err(err).Int64("report_id", id).Str("path", report.FilePath).Msg("Report file missing")
			writeJSONError(w, "Report file not found.", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(report.FilePath)+`"`)
		http.ServeFile(w, r, report.FilePath)
	}
}

// HealthHandler reports ok when every check passes.
func HealthHandler(checks map[string]healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{}
		code := http.StatusOK
		for name, c := range checks {
			if err := c.HealthCheck(ctx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		writeJSON(w, code, status)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reports.ErrEventNotFound), errors.Is(err, reports.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrOutputConflict):
		return http.StatusConflict
	case errors.Is(err, assembly.ErrTemplateLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
