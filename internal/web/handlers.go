package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talkessler/staffbridge/internal/importer"
	"github.com/talkessler/staffbridge/internal/logging"
	"github.com/talkessler/staffbridge/internal/sheet"
)

// previewItem is one classified candidate in a preview response.
type previewItem struct {
	Row        int                    `json:"row"`
	NationalID string                 `json:"nationalId"`
	FirstName  string                 `json:"firstName"`
	LastName   string                 `json:"lastName"`
	State      string                 `json:"state"`
	Errors     []string               `json:"errors,omitempty"`
	Symbols    []string               `json:"symbols,omitempty"`
	Changes    []importer.FieldChange `json:"changes,omitempty"`
}

// skippedRow is one input row that never became a candidate.
type skippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// previewBuckets groups classified candidates by outcome so the
// operator can review each bucket before committing.
type previewBuckets struct {
	Invalid           []previewItem `json:"invalid"`
	Updates           []previewItem `json:"updates"`
	UpToDate          []previewItem `json:"upToDate"`
	NewWithKnownClass []previewItem `json:"newWithKnownClass"`
	NewUnrecognized   []previewItem `json:"newUnrecognizedSymbol"`
	NewWithoutClass   []previewItem `json:"newWithoutClass"`
	Duplicates        []previewItem `json:"duplicates"`
}

type previewResponse struct {
	BatchID      string         `json:"batchId"`
	FileName     string         `json:"fileName"`
	TotalRows    int            `json:"totalRows"`
	ProjectCodes []int          `json:"projectCodes"`
	Committed    bool           `json:"committed"`
	Skipped      []skippedRow   `json:"skipped,omitempty"`
	Buckets      previewBuckets `json:"buckets"`
}

// commitRequest carries the operator's approvals for the gated buckets.
type commitRequest struct {
	ApproveUnrecognized []string `json:"approveUnrecognized"`
	ApproveInvalid      []string `json:"approveInvalid"`
	ApproveUpdates      []string `json:"approveUpdates"`
}

// handlePreview ingests a workbook plus the batch project codes, runs
// the reconciliation stages and returns the classified buckets.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	projects, err := parseProjects(r.FormValue("projects"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(projects) == 0 {
		writeError(w, r, http.StatusBadRequest, "at least one project code is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	headers, rows, err := sheet.ReadGrid(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(headers) < importer.SheetColumns {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("sheet has %d columns, expected %d", len(headers), importer.SheetColumns))
		return
	}
	if len(rows) > s.cfg.Import.MaxRows {
		writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("sheet has %d data rows, limit is %d", len(rows), s.cfg.Import.MaxRows))
		return
	}

	batch, err := s.service.Preview(r.Context(), header.Filename, rows, projects)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "preview failed")
		return
	}

	writeJSON(w, r, toPreviewResponse(batch))
}

// handleGetBatch returns the preview state of a registered batch.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	batch, ok := s.service.Batch(batchID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "import batch not found")
		return
	}
	writeJSON(w, r, toPreviewResponse(batch))
}

// handleCommit materializes the operator's decisions for a batch.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid commit request body")
		return
	}
	dec := importer.NewDecisions(req.ApproveUnrecognized, req.ApproveInvalid, req.ApproveUpdates)

	// Once issued, the commit runs to completion or failure; a client
	// disconnect must not truncate the update loop.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.Import.CommitTimeout)
	defer cancel()

	result, err := s.service.Commit(ctx, batchID, dec)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrBatchNotFound):
			writeError(w, r, http.StatusNotFound, err.Error())
		case errors.Is(err, importer.ErrBatchCommitted):
			writeError(w, r, http.StatusConflict, err.Error())
		default:
			logging.FromContext(r.Context()).Error("commit failed", "batch_id", batchID, "error", err)
			writeError(w, r, http.StatusInternalServerError, "commit failed")
		}
		return
	}

	writeJSON(w, r, result)
}

// handleReport streams the audit workbook covering every input row.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	report, err := s.service.Report(batchID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "import batch not found")
		return
	}

	rows := make([][]string, len(report))
	for i, line := range report {
		rows[i] = append(append([]string(nil), line.Cells...), line.Status, line.Details)
	}

	buf, err := sheet.WriteGrid("Report", importer.ReportHeaders(), rows)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "report generation failed")
		return
	}

	filename := importer.ReportFileName(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.FromContext(r.Context()).Error("stream report", "batch_id", batchID, "error", err)
	}
}

// handleHistory lists recent commits, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), s.cfg.Import.HistoryLimit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "history unavailable")
		return
	}
	if entries == nil {
		entries = []importer.HistoryEntry{}
	}
	writeJSON(w, r, entries)
}

// handleHealth reports service and backend liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// parseProjects parses the comma-separated project codes form value.
func parseProjects(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]int, 0, len(parts))
	seen := make(map[int]bool)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		code, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid project code %q", p)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// toPreviewResponse shapes a batch into the preview payload.
func toPreviewResponse(batch *importer.Batch) previewResponse {
	resp := previewResponse{
		BatchID:      batch.ID,
		FileName:     batch.FileName,
		TotalRows:    len(batch.Rows),
		ProjectCodes: batch.ProjectCodes,
		Committed:    batch.Committed,
	}

	for row, reason := range batch.Skipped {
		resp.Skipped = append(resp.Skipped, skippedRow{Row: row, Reason: reason})
	}
	sort.Slice(resp.Skipped, func(i, j int) bool { return resp.Skipped[i].Row < resp.Skipped[j].Row })

	for _, it := range batch.Items {
		item := toPreviewItem(it)
		switch it.Result.State {
		case importer.StateInvalid:
			resp.Buckets.Invalid = append(resp.Buckets.Invalid, item)
		case importer.StateExistingUpdate:
			resp.Buckets.Updates = append(resp.Buckets.Updates, item)
		case importer.StateExistingUpToDate:
			resp.Buckets.UpToDate = append(resp.Buckets.UpToDate, item)
		case importer.StateNewWithKnownClass:
			resp.Buckets.NewWithKnownClass = append(resp.Buckets.NewWithKnownClass, item)
		case importer.StateNewUnrecognizedSymbol:
			resp.Buckets.NewUnrecognized = append(resp.Buckets.NewUnrecognized, item)
		case importer.StateNewWithoutClass:
			resp.Buckets.NewWithoutClass = append(resp.Buckets.NewWithoutClass, item)
		case importer.StateDuplicateLoser:
			resp.Buckets.Duplicates = append(resp.Buckets.Duplicates, item)
		}
	}

	return resp
}

func toPreviewItem(it *importer.Classified) previewItem {
	c := it.Candidate
	item := previewItem{
		Row:        c.Row,
		NationalID: c.NationalID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		State:      it.Result.State.String(),
		Errors:     it.Result.Errors,
		Symbols:    c.Symbols(),
	}
	if it.Result.Changes != nil {
		item.Changes = it.Result.Changes.Fields
	}
	return item
}
