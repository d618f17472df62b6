package importer

import (
	"context"
	"testing"
)

func TestClassify_DuplicateLoser(t *testing.T) {
	c := &Candidate{NationalID: "123456782", IsDuplicate: true}
	result, err := Classify(context.Background(), c, newFakeStore(), newFakeDirectory(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateDuplicateLoser {
		t.Errorf("State = %v, want duplicate-loser", result.State)
	}
}

func TestClassify_InvalidFields(t *testing.T) {
	c, err := ParseRow(validRow("123456789", "Dana", "Levi"), 0) // bad checksum
	if err != nil {
		t.Fatal(err)
	}
	result, err := Classify(context.Background(), c, newFakeStore(), newFakeDirectory(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateInvalid {
		t.Fatalf("State = %v, want invalid", result.State)
	}
	if len(result.Errors) != 1 || result.Errors[0] != msgInvalidID {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestClassify_MissingPhoneIsInvalid(t *testing.T) {
	row := validRow("123456782", "Dana", "Levi")
	row[ColPhone] = ""
	c, err := ParseRow(row, 0)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Classify(context.Background(), c, newFakeStore(), newFakeDirectory(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateInvalid {
		t.Fatalf("State = %v, want invalid", result.State)
	}
	if len(result.Errors) != 1 || result.Errors[0] != msgInvalidPhone {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestClassify_DuplicateWinnerSkipsValidation(t *testing.T) {
	// A group winner with a failing checksum and no phone is still
	// imported as new; duplicate resolution stands in for validation.
	c, err := ParseRow(validRow("123456789", "Dana", "Levi"), 0)
	if err != nil {
		t.Fatal(err)
	}
	c.Phone = ""
	c.IsBestDuplicate = true

	result, err := Classify(context.Background(), c, newFakeStore(), newFakeDirectory(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State == StateInvalid {
		t.Fatal("winner must bypass the invalid bucket")
	}
	if result.State != StateNewWithoutClass {
		t.Errorf("State = %v, want new-without-class", result.State)
	}
}

func TestClassify_ExistingUpdateAndUpToDate(t *testing.T) {
	existing := &ExistingWorker{
		ID: 7, NationalID: "123456782",
		FirstName: "Dana", LastName: "Levi",
		Phone: "0501234567", Email: "dana@example.org",
		RoleName: "Instructor", Status: "active",
		Version: 3,
	}
	store := newFakeStore(existing)
	dir := newFakeDirectory(nil)

	c, err := ParseRow(validRow("123456782", "Dana", "Levi"), 0)
	if err != nil {
		t.Fatal(err)
	}

	result, err := Classify(context.Background(), c, store, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateExistingUpToDate {
		t.Fatalf("State = %v, want up-to-date", result.State)
	}

	c.Email = "new@example.org"
	result, err = Classify(context.Background(), c, store, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateExistingUpdate {
		t.Fatalf("State = %v, want existing-update", result.State)
	}
	if result.Changes.Empty() {
		t.Error("expected a non-empty change set")
	}
	if result.Existing == nil || result.Existing.Version != 3 {
		t.Error("classification must carry the version token")
	}
}

func TestClassify_SymbolResolution(t *testing.T) {
	dir := newFakeDirectory(map[string]int64{"ABC": 11, "XYZ": 22})
	store := newFakeStore()
	ctx := context.Background()

	tests := []struct {
		name    string
		symbol  string
		state   State
		classes []int64
	}{
		{"exact match", "ABC", StateNewWithKnownClass, []int64{11}},
		{"hyphen prefix retry", "ABC-3", StateNewWithKnownClass, []int64{11}},
		{"unrecognized", "ZZZ-9", StateNewUnrecognizedSymbol, nil},
		{"no symbol", "", StateNewWithoutClass, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow("123456782", "Dana", "Levi")
			row[ColInstitutionSymbol] = tt.symbol
			c, err := ParseRow(row, 0)
			if err != nil {
				t.Fatal(err)
			}

			result, err := Classify(ctx, c, store, dir, nil)
			if err != nil {
				t.Fatal(err)
			}
			if result.State != tt.state {
				t.Fatalf("State = %v, want %v", result.State, tt.state)
			}
			if len(result.ClassIDs) != len(tt.classes) {
				t.Fatalf("ClassIDs = %v, want %v", result.ClassIDs, tt.classes)
			}
			for i := range tt.classes {
				if result.ClassIDs[i] != tt.classes[i] {
					t.Errorf("ClassIDs[%d] = %d, want %d", i, result.ClassIDs[i], tt.classes[i])
				}
			}
		})
	}
}

func TestClassify_WinnerUsesSymbolUnion(t *testing.T) {
	dir := newFakeDirectory(map[string]int64{"ABC": 11, "XYZ": 22})
	c, err := ParseRow(validRow("123456782", "Dana", "Levi"), 0)
	if err != nil {
		t.Fatal(err)
	}
	c.IsBestDuplicate = true
	c.WorkingSymbol = "ABC"
	c.AllSymbols = []string{"ABC", "XYZ-1", "NOPE"}

	result, err := Classify(context.Background(), c, newFakeStore(), dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.State != StateNewWithKnownClass {
		t.Fatalf("State = %v", result.State)
	}
	if len(result.ClassIDs) != 2 || result.ClassIDs[0] != 11 || result.ClassIDs[1] != 22 {
		t.Errorf("ClassIDs = %v, want [11 22]", result.ClassIDs)
	}
}

func TestClassifyAll_Exhaustive(t *testing.T) {
	// Every non-loser ends in exactly one terminal state.
	rows := [][]string{
		validRow("123456782", "Dana", "Levi"),
		validRow("123456782", "Dana", "Levi"),
		validRow("123456789", "Noa", "Cohen"),
	}
	var candidates []*Candidate
	for i, row := range rows {
		c, err := ParseRow(row, i)
		if err != nil {
			t.Fatal(err)
		}
		candidates = append(candidates, c)
	}
	Deduplicate(candidates)

	items, err := ClassifyAll(context.Background(), candidates, newFakeStore(), newFakeDirectory(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != len(candidates) {
		t.Fatalf("classified %d of %d", len(items), len(candidates))
	}
	for _, it := range items {
		if it.Result.State == 0 {
			t.Errorf("row %d: no terminal state assigned", it.Candidate.Row)
		}
	}
}
