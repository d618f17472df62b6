package importer

import (
	"context"
	"time"
)

// Fixed column layout of the HR worker export sheet (0-based offsets).
const (
	ColInstitutionSymbol = 0
	ColAccountantCode    = 1
	ColModelCode         = 2
	ColRoleType          = 3
	ColRoleName          = 4
	ColNationalID        = 5
	ColLastName          = 6
	ColFirstName         = 7
	ColPhone             = 8
	ColEmail             = 9
	ColStartDate         = 10
	ColEndDate           = 11
	ColStatus            = 12
	ColForm101           = 13
)

// SheetColumns is the number of columns in the fixed export layout.
const SheetColumns = 14

// SheetHeaders are the canonical column titles, in layout order.
// Used for the audit report and for rejecting files with a foreign layout.
var SheetHeaders = []string{
	"institution symbol", "accountant code", "model code", "role type",
	"role name", "national id", "last name", "first name", "phone",
	"email", "start date", "end date", "status", "form 101",
}

// Candidate is one parsed, not-yet-committed worker record derived from
// a spreadsheet row. It is created once by ParseRow and annotated by the
// deduplication stage; classification results are kept separately (see
// Classification) rather than mutated onto the candidate.
type Candidate struct {
	Row        int // 0-based index into the original data rows
	NationalID string
	FirstName  string
	LastName   string
	Phone      string // normalized (see NormalizePhone)
	Email      string
	Status     string
	RoleName   string
	StartDate  time.Time // zero when missing or unparseable
	EndDate    time.Time
	Is101      bool

	// WorkingSymbol is the raw class-symbol text from the sheet.
	// Resolution against the class directory is deferred to the
	// classifier.
	WorkingSymbol string

	// ValidationErrors collects human-readable problems found at parse
	// time (currently only the national-ID checksum). The classifier
	// appends field-validator findings before routing to Invalid.
	ValidationErrors []string

	// Deduplication annotations. AllSymbols is only set on group
	// winners: the union of every non-empty WorkingSymbol across the
	// duplicate group, read as additional class assignments for the
	// same person.
	IsDuplicate     bool
	IsBestDuplicate bool
	AllSymbols      []string
}

// Symbols returns the class symbols this candidate claims: the group
// union for a duplicate winner, otherwise its own symbol (if any).
func (c *Candidate) Symbols() []string {
	if c.IsBestDuplicate && len(c.AllSymbols) > 0 {
		return c.AllSymbols
	}
	if c.WorkingSymbol == "" {
		return nil
	}
	return []string{c.WorkingSymbol}
}

// State is the terminal classifier outcome for a candidate.
// Every surviving candidate lands in exactly one state.
type State int

const (
	// StateInvalid: field validation failed; import is decision-gated.
	StateInvalid State = iota + 1
	// StateExistingUpdate: matches a stored worker and the diff is
	// non-empty; update is decision-gated.
	StateExistingUpdate
	// StateExistingUpToDate: matches a stored worker with no changes;
	// dropped from all buckets.
	StateExistingUpToDate
	// StateNewWithKnownClass: new worker, at least one symbol resolved.
	StateNewWithKnownClass
	// StateNewUnrecognizedSymbol: new worker, symbols present but none
	// resolved; import is decision-gated.
	StateNewUnrecognizedSymbol
	// StateNewWithoutClass: new worker, no symbol given at all.
	StateNewWithoutClass
	// StateDuplicateLoser: a less complete row in a duplicate group;
	// never imported.
	StateDuplicateLoser
)

func (s State) String() string {
	switch s {
	case StateInvalid:
		return "invalid"
	case StateExistingUpdate:
		return "existing-update"
	case StateExistingUpToDate:
		return "existing-up-to-date"
	case StateNewWithKnownClass:
		return "new-with-known-class"
	case StateNewUnrecognizedSymbol:
		return "new-unrecognized-symbol"
	case StateNewWithoutClass:
		return "new-without-class"
	case StateDuplicateLoser:
		return "duplicate-loser"
	default:
		return "unknown"
	}
}

// Gated reports whether committing a candidate in this state requires an
// explicit operator decision.
func (s State) Gated() bool {
	return s == StateInvalid || s == StateExistingUpdate || s == StateNewUnrecognizedSymbol
}

// Classification is the immutable result of classifying one candidate.
// Exactly one of the auxiliary fields is populated depending on State.
type Classification struct {
	State State

	// Errors holds the validation messages for StateInvalid.
	Errors []string

	// Existing and Changes are set for StateExistingUpdate (Existing
	// alone for StateExistingUpToDate). Existing carries the version
	// token captured at classification time; Update rejects on
	// mismatch.
	Existing *ExistingWorker
	Changes  *ChangeSet

	// ClassIDs holds the resolved class ids for StateNewWithKnownClass.
	ClassIDs []int64
}

// Classified pairs a candidate with its classification result.
type Classified struct {
	Candidate *Candidate
	Result    Classification
}

// ExistingWorker is a snapshot of a persisted worker, keyed by national
// ID, as read from the worker store at classification time.
type ExistingWorker struct {
	ID           int64
	NationalID   string
	FirstName    string
	LastName     string
	Phone        string
	Email        string
	RoleName     string
	Status       string
	Is101        bool
	ProjectCodes []int
	Version      int64
}

// NewWorker is the creation payload for one worker.
type NewWorker struct {
	NationalID string
	FirstName  string
	LastName   string
	Phone      string
	Email      string
	RoleName   string
	Status     string
	StartDate  time.Time
	EndDate    time.Time
	Is101      bool
}

// UpdatePayload is the persistable subset of a change set. The diff
// reports richer deltas (name, email, status, symbol membership, form
// 101) than updates persist; narrowing is an explicit projection here
// rather than a silent drop at the call site.
type UpdatePayload struct {
	ProjectCodes []int
	Phone        string
	RoleName     string

	// ExpectedVersion is the version token captured when the worker was
	// read for classification. The store rejects the update with
	// VersionConflictError when the stored version has moved on.
	ExpectedVersion int64
}

// Assignment links one created worker to a class under a project code.
type Assignment struct {
	WorkerID int64
	RoleName string
	Project  int
}

// WorkerStore is the persistence collaborator for worker records.
type WorkerStore interface {
	// FindByNationalID returns the stored worker or (nil, nil) when the
	// id is unknown.
	FindByNationalID(ctx context.Context, nationalID string) (*ExistingWorker, error)
	// BulkCreate inserts all workers in one call and returns their new
	// ids aligned positionally with the input.
	BulkCreate(ctx context.Context, workers []NewWorker) ([]int64, error)
	// Update persists the payload for one worker.
	Update(ctx context.Context, workerID int64, payload UpdatePayload) error
}

// ClassDirectory is a read-only snapshot of the organization's classes,
// taken once per batch.
type ClassDirectory interface {
	// Resolve maps a unique class symbol to its class id.
	Resolve(symbol string) (int64, bool)
	// SymbolsForWorker returns the symbols of the classes currently
	// assigning the worker. Used to detect symbol-membership drift.
	SymbolsForWorker(workerID int64) []string
}

// Assigner issues worker-to-class assignments.
type Assigner interface {
	// BulkAssign persists all assignment tuples, grouped by class id,
	// in a single call.
	BulkAssign(ctx context.Context, byClass map[int64][]Assignment) error
}
