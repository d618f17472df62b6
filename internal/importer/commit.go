package importer

// commit.go is the only pipeline stage touching shared external
// resources: one bulk create, one bulk assign (dependent on the create
// results), then a sequential loop of individual updates. There is no
// transaction across the three phases; a bulk-create failure aborts the
// whole creation phase, while individual update failures are aggregated
// and never stop the loop.

import (
	"context"
	"fmt"
)

// CreatedWorker records one worker created by a commit.
type CreatedWorker struct {
	WorkerID   int64  `json:"workerId"`
	NationalID string `json:"nationalId"`
}

// CommitResult summarizes what a commit persisted.
type CommitResult struct {
	Created        []CreatedWorker `json:"created"`
	Assignments    int             `json:"assignments"`
	Updated        int             `json:"updated"`
	UpdateFailures []UpdateFailure `json:"updateFailures,omitempty"`
}

// Committer materializes operator-confirmed decisions against the
// external collaborators.
type Committer struct {
	Workers   WorkerStore
	Assigner  Assigner
	Directory ClassDirectory
}

// Commit runs the three phases over a classified batch.
//
// The creation set, in input order, contains every NewWithKnownClass and
// NewWithoutClass candidate unconditionally, plus NewUnrecognizedSymbol
// and Invalid candidates the operator approved. An id that is also an
// approved ExistingUpdate is excluded: one batch cannot both create and
// update the same worker.
func (cm *Committer) Commit(ctx context.Context, items []*Classified, dec Decisions, batchProjects []int) (*CommitResult, error) {
	result := &CommitResult{}

	updating := make(map[string]bool)
	for _, it := range items {
		if it.Result.State == StateExistingUpdate && dec.ApprovedUpdate(it.Candidate.NationalID) {
			updating[it.Candidate.NationalID] = true
		}
	}

	var toCreate []*Classified
	for _, it := range items {
		if !includeInCreation(it, dec) || updating[it.Candidate.NationalID] {
			continue
		}
		toCreate = append(toCreate, it)
	}

	if len(toCreate) > 0 {
		workers := make([]NewWorker, len(toCreate))
		for i, it := range toCreate {
			workers[i] = newWorkerFrom(it.Candidate)
		}

		ids, err := cm.Workers.BulkCreate(ctx, workers)
		if err != nil {
			return nil, fmt.Errorf("bulk create: %w", err)
		}
		if len(ids) != len(toCreate) {
			return nil, fmt.Errorf("bulk create: got %d ids for %d workers", len(ids), len(toCreate))
		}

		byClass := make(map[int64][]Assignment)
		for i, it := range toCreate {
			result.Created = append(result.Created, CreatedWorker{
				WorkerID:   ids[i],
				NationalID: it.Candidate.NationalID,
			})
			for _, a := range assignmentsFor(it.Candidate, ids[i], cm.Directory, batchProjects) {
				byClass[a.classID] = append(byClass[a.classID], a.Assignment)
				result.Assignments++
			}
		}

		if len(byClass) > 0 {
			if err := cm.Assigner.BulkAssign(ctx, byClass); err != nil {
				return nil, fmt.Errorf("bulk assign: %w", err)
			}
		}
	}

	for _, it := range items {
		if it.Result.State != StateExistingUpdate || !dec.ApprovedUpdate(it.Candidate.NationalID) {
			continue
		}
		existing := it.Result.Existing
		payload := it.Result.Changes.UpdatePayload(existing.Version)
		if err := cm.Workers.Update(ctx, existing.ID, payload); err != nil {
			result.UpdateFailures = append(result.UpdateFailures, UpdateFailure{
				NationalID: it.Candidate.NationalID,
				WorkerID:   existing.ID,
				Reason:     err.Error(),
				Err:        err,
			})
			continue
		}
		result.Updated++
	}

	return result, nil
}

// includeInCreation applies the per-state creation rules. Duplicate
// winners already sit in one of these states, so they follow the same
// gates.
func includeInCreation(it *Classified, dec Decisions) bool {
	switch it.Result.State {
	case StateNewWithKnownClass, StateNewWithoutClass:
		return true
	case StateNewUnrecognizedSymbol:
		return dec.ApprovedUnrecognized(it.Candidate.NationalID)
	case StateInvalid:
		return dec.ApprovedInvalid(it.Candidate.NationalID)
	default:
		return false
	}
}

func newWorkerFrom(c *Candidate) NewWorker {
	return NewWorker{
		NationalID: c.NationalID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Phone:      c.Phone,
		Email:      c.Email,
		RoleName:   c.RoleName,
		Status:     c.Status,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		Is101:      c.Is101,
	}
}

type classAssignment struct {
	classID int64
	Assignment
}

// assignmentsFor expands a created worker into one tuple per resolved
// class per batch project code.
func assignmentsFor(c *Candidate, workerID int64, dir ClassDirectory, batchProjects []int) []classAssignment {
	var out []classAssignment
	seen := make(map[int64]bool)
	for _, symbol := range c.Symbols() {
		classID, ok := ResolveSymbol(dir, symbol)
		if !ok || seen[classID] {
			continue
		}
		seen[classID] = true
		for _, project := range batchProjects {
			out = append(out, classAssignment{
				classID: classID,
				Assignment: Assignment{
					WorkerID: workerID,
					RoleName: c.RoleName,
					Project:  project,
				},
			})
		}
	}
	return out
}
