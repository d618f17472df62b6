package importer

// pipeline.go orchestrates the stages across the preview/commit HTTP
// round trip. A previewed batch is held in an in-memory registry keyed
// by a generated id until the operator commits it or it expires.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BatchTTL is how long an uncommitted batch stays available after
// preview.
var BatchTTL = 2 * time.Hour

// ErrBatchNotFound is returned for an unknown or expired batch id.
var ErrBatchNotFound = errors.New("import batch not found")

// ErrBatchCommitted is returned when a batch is committed twice.
var ErrBatchCommitted = errors.New("import batch already committed")

// DirectoryLoader produces a fresh read-only class-directory snapshot.
// The snapshot taken at preview time is reused at commit time, so both
// phases see the same directory.
type DirectoryLoader interface {
	Load(ctx context.Context) (ClassDirectory, error)
}

// HistoryEntry records one committed batch for the import history.
type HistoryEntry struct {
	BatchID     string        `json:"batchId"`
	FileName    string        `json:"fileName"`
	TotalRows   int           `json:"totalRows"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration"`
	CommittedAt time.Time     `json:"committedAt"`
}

// HistoryStore persists the import history.
type HistoryStore interface {
	RecordCommit(ctx context.Context, entry HistoryEntry) error
	ListCommits(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// Batch is one previewed import held between preview and commit.
type Batch struct {
	ID           string
	FileName     string
	CreatedAt    time.Time
	ProjectCodes []int

	Rows    [][]string        // original data rows, sheet order
	Skipped map[int]string    // row index -> parse-rejection reason
	Items   []*Classified     // classified candidates, input order
	dir     ClassDirectory    // snapshot taken at preview time

	Committed bool
	Decisions Decisions
	Result    *CommitResult
}

// Service runs the import pipeline and owns the batch registry.
type Service struct {
	workers   WorkerStore
	assigner  Assigner
	dirLoader DirectoryLoader
	history   HistoryStore

	mu      sync.RWMutex
	batches map[string]*Batch
}

// NewService wires the pipeline to its collaborators. history may be nil
// when commits should not be recorded.
func NewService(workers WorkerStore, assigner Assigner, dirLoader DirectoryLoader, history HistoryStore) *Service {
	return &Service{
		workers:   workers,
		assigner:  assigner,
		dirLoader: dirLoader,
		history:   history,
		batches:   make(map[string]*Batch),
	}
}

// Preview runs the pure reconciliation stages over the data rows and
// registers the resulting batch. Rows failing the required-field check
// are excluded from the pipeline but kept for the report.
func (s *Service) Preview(ctx context.Context, fileName string, rows [][]string, projectCodes []int) (*Batch, error) {
	dir, err := s.dirLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load class directory: %w", err)
	}

	candidates := make([]*Candidate, 0, len(rows))
	skipped := make(map[int]string)
	for i, row := range rows {
		c, err := ParseRow(row, i)
		if err != nil {
			var missing *MissingRequiredFieldError
			if errors.As(err, &missing) {
				skipped[i] = fmt.Sprintf("missing required field %q", missing.Field)
				continue
			}
			return nil, err
		}
		candidates = append(candidates, c)
	}

	Deduplicate(candidates)

	items, err := ClassifyAll(ctx, candidates, s.workers, dir, projectCodes)
	if err != nil {
		return nil, fmt.Errorf("classify batch: %w", err)
	}

	batch := &Batch{
		ID:           uuid.New().String(),
		FileName:     fileName,
		CreatedAt:    time.Now(),
		ProjectCodes: projectCodes,
		Rows:         rows,
		Skipped:      skipped,
		Items:        items,
		dir:          dir,
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	s.mu.Unlock()

	slog.Info("batch previewed",
		"batch_id", batch.ID,
		"file", fileName,
		"rows", len(rows),
		"candidates", len(candidates),
		"skipped", len(skipped),
	)

	return batch, nil
}

// Batch returns a registered batch by id.
func (s *Service) Batch(id string) (*Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	return b, ok
}

// Commit materializes the operator's decisions for a previewed batch.
// Once the creation call is issued the commit runs to completion or
// failure; there is no mid-commit cancellation.
func (s *Service) Commit(ctx context.Context, batchID string, dec Decisions) (*CommitResult, error) {
	s.mu.Lock()
	batch, ok := s.batches[batchID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrBatchNotFound
	}
	if batch.Committed {
		s.mu.Unlock()
		return nil, ErrBatchCommitted
	}
	batch.Committed = true
	batch.Decisions = dec
	s.mu.Unlock()

	start := time.Now()
	committer := &Committer{Workers: s.workers, Assigner: s.assigner, Directory: batch.dir}
	result, err := committer.Commit(ctx, batch.Items, dec, batch.ProjectCodes)
	if err != nil {
		// Leave the batch committed: the creation phase may have
		// partially run and must not be retried blind.
		slog.Error("batch commit failed", "batch_id", batchID, "error", err)
		return nil, err
	}
	batch.Result = result

	slog.Info("batch committed",
		"batch_id", batchID,
		"created", len(result.Created),
		"assignments", result.Assignments,
		"updated", result.Updated,
		"update_failures", len(result.UpdateFailures),
	)

	if s.history != nil {
		entry := HistoryEntry{
			BatchID:     batchID,
			FileName:    batch.FileName,
			TotalRows:   len(batch.Rows),
			Created:     len(result.Created),
			Updated:     result.Updated,
			Failed:      len(result.UpdateFailures),
			Duration:    time.Since(start),
			CommittedAt: time.Now(),
		}
		if err := s.history.RecordCommit(ctx, entry); err != nil {
			slog.Warn("record import history", "batch_id", batchID, "error", err)
		}
	}

	return result, nil
}

// Report builds the audit rows for a batch. Before a commit the zero
// decision set applies, so gated rows show as pending.
func (s *Service) Report(batchID string) ([]ReportRow, error) {
	batch, ok := s.Batch(batchID)
	if !ok {
		return nil, ErrBatchNotFound
	}
	return BuildReport(batch.Rows, batch.Items, batch.Skipped, batch.Decisions), nil
}

// History lists recent commits, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListCommits(ctx, limit)
}

// StartJanitor evicts expired uncommitted batches until ctx is done.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Service) evictExpired() {
	cutoff := time.Now().Add(-BatchTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.batches {
		if b.CreatedAt.Before(cutoff) && !b.Committed {
			delete(s.batches, id)
			slog.Debug("batch expired", "batch_id", id)
		}
	}
}
