package importer

import (
	"context"
	"errors"
	"testing"
)

// endToEndRows builds the canonical mixed batch: a duplicate pair
// sharing one id (the more complete row carrying an unresolvable
// symbol), an invalid id, and a brand-new worker without a symbol.
func endToEndRows() [][]string {
	sparse := sheetRow(map[int]string{
		ColNationalID: "123456782",
		ColFirstName:  "Dana",
		ColLastName:   "Levi",
	})
	full := validRow("123456782", "Dana", "Levi")
	full[ColInstitutionSymbol] = "ZZZ-9"

	badID := validRow("123456789", "Noa", "Cohen")
	fresh := validRow("111111118", "Omri", "Mizrahi")

	return [][]string{sparse, full, badID, fresh}
}

func newTestService() (*Service, *fakeStore, *fakeAssigner, *fakeHistory) {
	store := newFakeStore()
	assigner := &fakeAssigner{}
	history := &fakeHistory{}
	dir := newFakeDirectory(map[string]int64{"ABC": 11})
	svc := NewService(store, assigner, &fakeLoader{dir: dir}, history)
	return svc, store, assigner, history
}

func TestService_EndToEnd_NoApprovals(t *testing.T) {
	svc, store, _, history := newTestService()
	ctx := context.Background()

	batch, err := svc.Preview(ctx, "workers.xlsx", endToEndRows(), []int{100})
	if err != nil {
		t.Fatal(err)
	}

	states := make(map[State]int)
	for _, it := range batch.Items {
		states[it.Result.State]++
	}
	if states[StateDuplicateLoser] != 1 {
		t.Errorf("losers = %d, want 1", states[StateDuplicateLoser])
	}
	if states[StateNewUnrecognizedSymbol] != 1 {
		t.Errorf("unrecognized = %d, want 1 (the duplicate winner)", states[StateNewUnrecognizedSymbol])
	}
	if states[StateInvalid] != 1 {
		t.Errorf("invalid = %d, want 1", states[StateInvalid])
	}
	if states[StateNewWithoutClass] != 1 {
		t.Errorf("new-without-class = %d, want 1", states[StateNewWithoutClass])
	}

	result, err := svc.Commit(ctx, batch.ID, NewDecisions(nil, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("Created = %v, want only the ungated new worker", result.Created)
	}
	if result.Created[0].NationalID != "111111118" {
		t.Errorf("created id = %q", result.Created[0].NationalID)
	}
	if len(store.created) != 1 {
		t.Errorf("store received %d creates", len(store.created))
	}
	if len(history.entries) != 1 || history.entries[0].Created != 1 {
		t.Errorf("history = %+v", history.entries)
	}
}

func TestService_EndToEnd_WithApprovals(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	batch, err := svc.Preview(ctx, "workers.xlsx", endToEndRows(), []int{100})
	if err != nil {
		t.Fatal(err)
	}

	dec := NewDecisions([]string{"123456782"}, []string{"123456789"}, nil)
	result, err := svc.Commit(ctx, batch.ID, dec)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("Created = %v, want winner + approved invalid + fresh", result.Created)
	}
}

func TestService_ReportAccountsForAllRows(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	rows := endToEndRows()
	rows = append(rows, sheetRow(map[int]string{ColFirstName: "NoID"}))

	batch, err := svc.Preview(ctx, "workers.xlsx", rows, nil)
	if err != nil {
		t.Fatal(err)
	}

	report, err := svc.Report(batch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != len(rows) {
		t.Fatalf("report rows = %d, want %d", len(report), len(rows))
	}
	if report[len(report)-1].Status != StatusNotEvaluated {
		t.Errorf("parse-dropped row status = %q", report[len(report)-1].Status)
	}
	// Pre-commit, gated rows read as pending.
	for _, r := range report {
		if r.Status == "" {
			t.Error("every row must carry a status")
		}
	}
}

func TestService_CommitTwiceRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	batch, err := svc.Preview(ctx, "workers.xlsx", endToEndRows(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Commit(ctx, batch.ID, NewDecisions(nil, nil, nil)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Commit(ctx, batch.ID, NewDecisions(nil, nil, nil)); !errors.Is(err, ErrBatchCommitted) {
		t.Errorf("second commit err = %v, want ErrBatchCommitted", err)
	}
}

func TestService_UnknownBatch(t *testing.T) {
	svc, _, _, _ := newTestService()
	if _, err := svc.Commit(context.Background(), "nope", NewDecisions(nil, nil, nil)); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v, want ErrBatchNotFound", err)
	}
	if _, err := svc.Report("nope"); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v, want ErrBatchNotFound", err)
	}
}
