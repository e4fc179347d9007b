package assembly

import (
	"strings"

	"eventreport/model"
)

// DefaultPSOTexts are the programme specific outcomes printed for the PSO1
// and PSO2 flags.
var DefaultPSOTexts = [2]string{
	"PSO1: An ability to apply the theoretical concepts and practical knowledge of " +
		"Information Technology in the analysis, design, development, and management of " +
		"information processing systems and applications in the interdisciplinary domain " +
		"to understand professional, business processes, ethical, legal, security, and " +
		"social issues and responsibilities.",
	"PSO2: An ability to analyze a problem and identify and define the computing " +
		"infrastructure and operations requirements appropriate to its solution. IT " +
		"graduates should be able to work on large-scale computing systems.",
}

// DefaultPOHeadings is the programme outcome vocabulary.
var DefaultPOHeadings = []string{
	"Engineering Knowledge",
	"Problem Analysis",
	"Design / Development of Solutions",
	"Conduct investigations of complex problems",
	"Modern Tool Usage",
	"The Engineer and Society",
	"Environment and Sustainability",
	"Ethics",
	"Communication",
	"Project Management & Finance",
	"Lifelong Learning",
}

// BuildPSOSection joins the selected PSO texts with a blank line.
func BuildPSOSection(rec *model.EventRecord, texts [2]string) string {
	var parts []string
	if rec.PSO1 {
		parts = append(parts, texts[0])
	}
	if rec.PSO2 {
		parts = append(parts, texts[1])
	}
	return strings.Join(parts, "\n\n")
}

// BuildPOSection renders the selected programme outcomes as one bullet per
// line. Selections outside vocabulary are dropped; an empty vocabulary
// accepts everything.
func BuildPOSection(selected, vocabulary []string) string {
	allowed := make(map[string]bool, len(vocabulary))
	for _, v := range vocabulary {
		allowed[v] = true
	}
	var lines []string
	for _, po := range selected {
		po = strings.TrimSpace(po)
		if po == "" || (len(allowed) > 0 && !allowed[po]) {
			continue
		}
		lines = append(lines, "• "+po)
	}
	return strings.Join(lines, "\n")
}

// Values maps every placeholder key to its replacement text.
func Values(rec *model.EventRecord, opts Options) map[string]string {
	return map[string]string{
		"academic_year":        rec.AcademicYear,
		"date":                 rec.Date,
		"event_name":           rec.Title,
		"event_type":           rec.EventType,
		"event_date":           rec.Date,
		"event_time":           rec.EventTime,
		"venue":                rec.Venue,
		"department":           rec.Department,
		"resource_person":      rec.ResourcePerson,
		"resource_designation": rec.ResourceDesignation,
		"event_coordinator":    rec.EventCoordinator,
		"event coordinator":    rec.EventCoordinator,
		"event_description":    rec.Description,
		"event description":    rec.Description,
		"outcome_1":            rec.Outcome1,
		"outcome_2":            rec.Outcome2,
		"outcome_3":            rec.Outcome3,
		"PSO_SECTION":          BuildPSOSection(rec, opts.PSOTexts),
		"PO_SECTION":           BuildPOSection(rec.SelectedPOs, opts.POHeadings),
	}
}
