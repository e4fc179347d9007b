package assembly

import (
	"fmt"

	"eventreport/docx"
	"eventreport/model"
)

const (
	maxFeedbackRows = 10
	tableStyle      = "TableGrid"
)

var feedbackHeader = []string{"Name", "Rating", "Comment"}

// InsertFeedbackTable replaces the marker paragraph with a Name | Rating |
// Comment table holding at most the first ten entries.
func InsertFeedbackTable(doc *docx.Document, marker string, entries []model.FeedbackEntry) (Outcome, error) {
	if len(entries) == 0 {
		return Skipped, ErrEmptyFeedback
	}
	p, err := find(doc, marker)
	if err != nil {
		return Skipped, err
	}
	if len(entries) > maxFeedbackRows {
		entries = entries[:maxFeedbackRows]
	}

	p.Clear()
	tbl := p.InsertTableBefore(2, 1, 3.5)
	if doc.HasStyle(tableStyle) {
		tbl.SetStyle(tableStyle)
	}
	fillRow(tbl.AddRow(), feedbackHeader, true)
	for _, e := range entries {
		fillRow(tbl.AddRow(), []string{e.Name, e.Rating, e.Comment}, false)
	}
	return Applied, nil
}

func fillRow(row *docx.Row, values []string, bold bool) {
	for i, cell := range row.Cells() {
		run := cell.SetText(values[i])
		run.SetFont(detailFont)
		run.SetSize(detailFontSize)
		if bold {
			run.SetBold()
		}
	}
}

func feedbackDetail(entries []model.FeedbackEntry) string {
	if len(entries) > maxFeedbackRows {
		return fmt.Sprintf("%d of %d entries", maxFeedbackRows, len(entries))
	}
	return fmt.Sprintf("%d entries", len(entries))
}
