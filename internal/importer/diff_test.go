package importer

import (
	"testing"
)

func diffFixtures() (*Candidate, *ExistingWorker, *fakeDirectory) {
	c := &Candidate{
		NationalID: "123456782",
		FirstName:  "Dana", LastName: "Levi",
		Phone: "0501234567", Email: "dana@example.org",
		RoleName: "Instructor", Status: "active",
	}
	existing := &ExistingWorker{
		ID: 7, NationalID: "123456782",
		FirstName: "dana", LastName: "LEVI", // case differences only
		Phone: "50-123-4567", // normalizes to the same number
		Email: "dana@example.org",
		RoleName: "Instructor", Status: "active",
		Version: 1,
	}
	return c, existing, newFakeDirectory(nil)
}

func TestDiff_EqualAfterNormalization(t *testing.T) {
	c, existing, dir := diffFixtures()
	cs := Diff(c, existing, dir, nil)
	if !cs.Empty() {
		t.Errorf("expected empty diff, got fields %v", cs.Fields)
	}
}

func TestDiff_ProjectCodeUnion(t *testing.T) {
	c, existing, dir := diffFixtures()
	existing.ProjectCodes = []int{2, 1}

	cs := Diff(c, existing, dir, []int{3, 1})
	want := []int{1, 2, 3}
	if len(cs.After.ProjectCodes) != len(want) {
		t.Fatalf("After.ProjectCodes = %v, want %v", cs.After.ProjectCodes, want)
	}
	for i := range want {
		if cs.After.ProjectCodes[i] != want[i] {
			t.Errorf("After.ProjectCodes[%d] = %d, want %d", i, cs.After.ProjectCodes[i], want[i])
		}
	}
	if cs.Empty() {
		t.Error("adding a project code must make the diff non-empty")
	}
}

func TestDiff_EmailOnlyChange(t *testing.T) {
	c, existing, dir := diffFixtures()
	c.Email = "new@example.org"

	cs := Diff(c, existing, dir, nil)
	if cs.Empty() {
		t.Fatal("email change must be reported")
	}
	if len(cs.Fields) != 1 || cs.Fields[0].Field != "email" {
		t.Fatalf("Fields = %v, want single email change", cs.Fields)
	}

	// The reported delta is wider than what updates persist: the
	// payload carries only project codes, phone and role name, so an
	// email-only diff commits nothing new besides those.
	payload := cs.UpdatePayload(existing.Version)
	if payload.Phone != cs.After.Phone || payload.RoleName != cs.After.RoleName {
		t.Error("payload should project phone and role name from the after snapshot")
	}
	if payload.ExpectedVersion != 1 {
		t.Errorf("ExpectedVersion = %d, want 1", payload.ExpectedVersion)
	}
}

func TestDiff_Is101Change(t *testing.T) {
	c, existing, dir := diffFixtures()
	c.Is101 = true

	cs := Diff(c, existing, dir, nil)
	if len(cs.Fields) != 1 || cs.Fields[0].Field != "is101" {
		t.Fatalf("Fields = %v, want is101 change", cs.Fields)
	}
}

func TestDiff_SymbolMembershipDrift(t *testing.T) {
	c, existing, dir := diffFixtures()
	dir.membership[existing.ID] = []string{"ABC"}
	c.WorkingSymbol = "XYZ"

	cs := Diff(c, existing, dir, nil)
	if cs.Empty() {
		t.Fatal("membership drift must be reported")
	}
	found := false
	for _, f := range cs.Fields {
		if f.Field == "symbols" {
			found = true
		}
	}
	if !found {
		t.Errorf("Fields = %v, want a symbols change", cs.Fields)
	}
}

func TestDiff_CompoundSymbolMatchesParentClass(t *testing.T) {
	// "ABC-3" resolves to class "ABC" via the hyphen-prefix retry; a
	// worker already assigned to that class has not drifted.
	c, existing, dir := diffFixtures()
	dir.classes = map[string]int64{"ABC": 11}
	dir.membership[existing.ID] = []string{"ABC"}
	c.WorkingSymbol = "ABC-3"

	cs := Diff(c, existing, dir, nil)
	if !cs.Empty() {
		t.Errorf("expected empty diff for compound symbol of the same class, got %v", cs.Fields)
	}
}

func TestDiff_CompoundSymbolOfDifferentClassDrifts(t *testing.T) {
	c, existing, dir := diffFixtures()
	dir.classes = map[string]int64{"ABC": 11, "XYZ": 22}
	dir.membership[existing.ID] = []string{"ABC"}
	c.WorkingSymbol = "XYZ-4"

	cs := Diff(c, existing, dir, nil)
	found := false
	for _, f := range cs.Fields {
		if f.Field == "symbols" {
			found = true
		}
	}
	if !found {
		t.Errorf("Fields = %v, want a symbols change across classes", cs.Fields)
	}
}

func TestDiff_SymbolMembershipIgnoresOrderAndCase(t *testing.T) {
	c, existing, dir := diffFixtures()
	dir.membership[existing.ID] = []string{"abc", "XYZ"}
	c.IsBestDuplicate = true
	c.AllSymbols = []string{"XYZ", "ABC"}

	cs := Diff(c, existing, dir, nil)
	if !cs.Empty() {
		t.Errorf("expected no drift, got %v", cs.Fields)
	}
}
