package importer

import (
	"context"
	"fmt"
)

// In-memory collaborators for pipeline tests. They mirror the store
// contracts: FindByNationalID returns (nil, nil) for unknown ids and
// BulkCreate hands back ids aligned with the input order.

type fakeStore struct {
	existing  map[string]*ExistingWorker
	nextID    int64
	created   []NewWorker
	createErr error
	updateErr map[int64]error
	updates   []fakeUpdate
}

type fakeUpdate struct {
	workerID int64
	payload  UpdatePayload
}

func newFakeStore(existing ...*ExistingWorker) *fakeStore {
	s := &fakeStore{
		existing:  make(map[string]*ExistingWorker),
		nextID:    100,
		updateErr: make(map[int64]error),
	}
	for _, w := range existing {
		s.existing[w.NationalID] = w
	}
	return s
}

func (s *fakeStore) FindByNationalID(_ context.Context, nationalID string) (*ExistingWorker, error) {
	return s.existing[nationalID], nil
}

func (s *fakeStore) BulkCreate(_ context.Context, workers []NewWorker) ([]int64, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	ids := make([]int64, len(workers))
	for i := range workers {
		s.nextID++
		ids[i] = s.nextID
	}
	s.created = append(s.created, workers...)
	return ids, nil
}

func (s *fakeStore) Update(_ context.Context, workerID int64, payload UpdatePayload) error {
	if err := s.updateErr[workerID]; err != nil {
		return err
	}
	s.updates = append(s.updates, fakeUpdate{workerID: workerID, payload: payload})
	return nil
}

type fakeDirectory struct {
	classes    map[string]int64
	membership map[int64][]string
}

func newFakeDirectory(classes map[string]int64) *fakeDirectory {
	return &fakeDirectory{
		classes:    classes,
		membership: make(map[int64][]string),
	}
}

func (d *fakeDirectory) Resolve(symbol string) (int64, bool) {
	id, ok := d.classes[symbol]
	return id, ok
}

func (d *fakeDirectory) SymbolsForWorker(workerID int64) []string {
	return d.membership[workerID]
}

type fakeAssigner struct {
	calls   int
	byClass map[int64][]Assignment
	err     error
}

func (a *fakeAssigner) BulkAssign(_ context.Context, byClass map[int64][]Assignment) error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.byClass = byClass
	return nil
}

type fakeLoader struct {
	dir ClassDirectory
	err error
}

func (l *fakeLoader) Load(context.Context) (ClassDirectory, error) {
	return l.dir, l.err
}

type fakeHistory struct {
	entries []HistoryEntry
}

func (h *fakeHistory) RecordCommit(_ context.Context, entry HistoryEntry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func (h *fakeHistory) ListCommits(_ context.Context, limit int) ([]HistoryEntry, error) {
	if limit > len(h.entries) {
		limit = len(h.entries)
	}
	out := make([]HistoryEntry, 0, limit)
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

// sheetRow builds a full-width row from a column->value map.
func sheetRow(values map[int]string) []string {
	row := make([]string, SheetColumns)
	for col, v := range values {
		row[col] = v
	}
	return row
}

// validRow is a convenience for a complete, valid data row.
func validRow(id, first, last string) []string {
	return sheetRow(map[int]string{
		ColNationalID: id,
		ColFirstName:  first,
		ColLastName:   last,
		ColPhone:      "0501234567",
		ColEmail:      fmt.Sprintf("%s@example.org", first),
		ColRoleName:   "Instructor",
		ColStatus:     "active",
	})
}
