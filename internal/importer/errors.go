package importer

import "fmt"

// Validation messages surfaced to the operator. These end up verbatim in
// the audit report's details column.
const (
	msgInvalidID    = "national ID failed checksum"
	msgInvalidPhone = "missing or invalid phone number"
)

// MissingRequiredFieldError reports a row that cannot become a candidate
// because one of the identity fields is empty. Such rows are excluded
// from the pipeline but still echoed in the audit report.
type MissingRequiredFieldError struct {
	Row   int // 0-based data-row index
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("row %d: missing required field %q", e.Row+1, e.Field)
}

// VersionConflictError reports an update rejected because the stored
// worker changed between classification and commit.
type VersionConflictError struct {
	WorkerID int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("worker %d: version conflict, record changed since classification", e.WorkerID)
}

// UpdateFailure records one failed individual update. Failures are
// aggregated after the update loop; they never stop it.
type UpdateFailure struct {
	NationalID string `json:"nationalId"`
	WorkerID   int64  `json:"workerId"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

func (f UpdateFailure) Error() string {
	return fmt.Sprintf("update worker %s: %v", f.NationalID, f.Err)
}
