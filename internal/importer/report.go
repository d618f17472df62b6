package importer

// report.go re-walks the original input rows and derives one annotated
// output row per input row, so the operator can audit exactly what
// happened to 100% of the sheet — including rows that never became
// candidates.

import (
	"fmt"
	"strings"
	"time"
)

// Report statuses, one per original row.
const (
	StatusImported     = "imported"
	StatusNotImported  = "not imported"
	StatusUpdated      = "updated"
	StatusNotUpdated   = "not updated"
	StatusError        = "error"
	StatusNotEvaluated = "not evaluated"
)

// ReportRow is one audit line: the original cells plus the final
// disposition.
type ReportRow struct {
	Cells   []string
	Status  string
	Details string
}

// BuildReport derives the audit rows. rows are the original data rows in
// sheet order; skipped maps a row index to the reason it never became a
// candidate; items are the classified candidates; dec is the decision
// set the commit ran with (zero value before any commit).
func BuildReport(rows [][]string, items []*Classified, skipped map[int]string, dec Decisions) []ReportRow {
	byRow := make(map[int]*Classified, len(items))
	for _, it := range items {
		byRow[it.Candidate.Row] = it
	}

	report := make([]ReportRow, 0, len(rows))
	for i, row := range rows {
		out := ReportRow{Cells: padRow(row)}

		if reason, ok := skipped[i]; ok {
			out.Status = StatusNotEvaluated
			out.Details = reason
			report = append(report, out)
			continue
		}

		it, ok := byRow[i]
		if !ok {
			// Defensive: a data row neither skipped nor classified.
			out.Status = StatusNotEvaluated
			report = append(report, out)
			continue
		}

		out.Status, out.Details = disposition(it, dec)
		report = append(report, out)
	}
	return report
}

// disposition maps a classification and the operator's decisions to the
// (status, details) pair shown on the report.
func disposition(it *Classified, dec Decisions) (string, string) {
	c := it.Candidate
	switch it.Result.State {
	case StateDuplicateLoser:
		return StatusNotImported, fmt.Sprintf("duplicate of ID %s; a more complete row was kept", c.NationalID)
	case StateInvalid:
		return StatusError, strings.Join(it.Result.Errors, "; ")
	case StateExistingUpdate:
		if dec.ApprovedUpdate(c.NationalID) {
			return StatusUpdated, changedFields(it.Result.Changes)
		}
		return StatusNotUpdated, "changes pending operator approval"
	case StateExistingUpToDate:
		return StatusNotUpdated, "already up to date"
	case StateNewUnrecognizedSymbol:
		if dec.ApprovedUnrecognized(c.NationalID) {
			return StatusImported, "imported without class assignment"
		}
		return StatusNotImported, fmt.Sprintf("unrecognized class symbol %q", strings.Join(c.Symbols(), ", "))
	case StateNewWithoutClass:
		return StatusImported, "imported without class assignment"
	case StateNewWithKnownClass:
		return StatusImported, ""
	default:
		return StatusNotEvaluated, ""
	}
}

func changedFields(cs *ChangeSet) string {
	if cs.Empty() {
		return ""
	}
	names := make([]string, len(cs.Fields))
	for i, f := range cs.Fields {
		names[i] = f.Field
	}
	return "changed: " + strings.Join(names, ", ")
}

// padRow extends short rows so the report mirrors the full input layout.
func padRow(row []string) []string {
	if len(row) >= SheetColumns {
		return row
	}
	padded := make([]string, SheetColumns)
	copy(padded, row)
	return padded
}

// ReportFileName names the downloadable report after the current date.
func ReportFileName(now time.Time) string {
	return "import-report-" + now.Format("2006-01-02") + ".xlsx"
}

// ReportHeaders are the audit sheet's column titles: the input layout
// plus the disposition columns.
func ReportHeaders() []string {
	headers := append([]string(nil), SheetHeaders...)
	return append(headers, "status", "details")
}
