package importer

// diff.go computes the normalized field-by-field change set between a
// candidate and its matched stored worker. The full delta is surfaced
// for operator review; what the commit phase actually persists is the
// narrower UpdatePayload projection.

import (
	"sort"
	"strconv"
	"strings"
)

// Snapshot is one side of a change set, normalized for comparison.
type Snapshot struct {
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	RoleName     string   `json:"roleName"`
	Status       string   `json:"status"`
	Is101        bool     `json:"is101"`
	ProjectCodes []int    `json:"projectCodes"`
	Symbols      []string `json:"symbols"`
}

// FieldChange names one differing field with its before/after values.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ChangeSet is the before/after comparison for an existing worker.
type ChangeSet struct {
	Before Snapshot      `json:"before"`
	After  Snapshot      `json:"after"`
	Fields []FieldChange `json:"fields"`
}

// Empty reports whether nothing differs.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || len(cs.Fields) == 0
}

// UpdatePayload projects the change set onto the fields updates
// actually persist: project codes, phone and role name. Name, email,
// status, form 101 and symbol membership are reported but deliberately
// not written back.
func (cs *ChangeSet) UpdatePayload(expectedVersion int64) UpdatePayload {
	return UpdatePayload{
		ProjectCodes:    cs.After.ProjectCodes,
		Phone:           cs.After.Phone,
		RoleName:        cs.After.RoleName,
		ExpectedVersion: expectedVersion,
	}
}

// Diff builds the change set for a candidate matched against a stored
// worker. The after snapshot's project codes are the union of the
// stored codes and the batch selection; text fields compare
// case-insensitively after trimming.
func Diff(c *Candidate, existing *ExistingWorker, dir ClassDirectory, batchProjects []int) *ChangeSet {
	cs := &ChangeSet{
		Before: Snapshot{
			FirstName:    existing.FirstName,
			LastName:     existing.LastName,
			Phone:        NormalizePhone(existing.Phone),
			Email:        existing.Email,
			RoleName:     existing.RoleName,
			Status:       existing.Status,
			Is101:        existing.Is101,
			ProjectCodes: sortedInts(existing.ProjectCodes),
			Symbols:      resolveFold(dir, dir.SymbolsForWorker(existing.ID)),
		},
		After: Snapshot{
			FirstName:    c.FirstName,
			LastName:     c.LastName,
			Phone:        c.Phone,
			Email:        c.Email,
			RoleName:     c.RoleName,
			Status:       c.Status,
			Is101:        c.Is101,
			ProjectCodes: unionInts(existing.ProjectCodes, batchProjects),
			Symbols:      resolveFold(dir, c.Symbols()),
		},
	}

	for _, f := range []struct{ name, before, after string }{
		{"firstName", cs.Before.FirstName, cs.After.FirstName},
		{"lastName", cs.Before.LastName, cs.After.LastName},
		{"phone", cs.Before.Phone, cs.After.Phone},
		{"email", cs.Before.Email, cs.After.Email},
		{"roleName", cs.Before.RoleName, cs.After.RoleName},
		{"status", cs.Before.Status, cs.After.Status},
	} {
		if !equalFold(f.before, f.after) {
			cs.Fields = append(cs.Fields, FieldChange{Field: f.name, Before: f.before, After: f.after})
		}
	}

	if cs.Before.Is101 != cs.After.Is101 {
		cs.Fields = append(cs.Fields, FieldChange{
			Field:  "is101",
			Before: boolWord(cs.Before.Is101),
			After:  boolWord(cs.After.Is101),
		})
	}
	if !equalIntSets(cs.Before.ProjectCodes, cs.After.ProjectCodes) {
		cs.Fields = append(cs.Fields, FieldChange{
			Field:  "projectCodes",
			Before: joinInts(cs.Before.ProjectCodes),
			After:  joinInts(cs.After.ProjectCodes),
		})
	}
	if !equalStringSlices(cs.Before.Symbols, cs.After.Symbols) {
		cs.Fields = append(cs.Fields, FieldChange{
			Field:  "symbols",
			Before: strings.Join(cs.Before.Symbols, ","),
			After:  strings.Join(cs.After.Symbols, ","),
		})
	}

	return cs
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// resolveFold canonicalizes a symbol set for membership comparison:
// each symbol that resolves through the class directory is replaced by
// the form it resolved under, so a compound symbol like "ABC-3" and its
// parent class "ABC" compare equal. Unresolvable symbols stay as raw
// text.
func resolveFold(dir ClassDirectory, values []string) []string {
	canonical := make([]string, 0, len(values))
	for _, v := range values {
		canonical = append(canonical, canonicalSymbol(dir, v))
	}
	return sortedFold(canonical)
}

// canonicalSymbol mirrors ResolveSymbol's lookup order but returns the
// symbol the directory knows the class under.
func canonicalSymbol(dir ClassDirectory, symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if _, ok := dir.Resolve(symbol); ok {
		return symbol
	}
	if i := strings.IndexByte(symbol, '-'); i > 0 {
		if _, ok := dir.Resolve(symbol[:i]); ok {
			return symbol[:i]
		}
	}
	return symbol
}

// sortedFold lowercases, trims, de-duplicates and sorts a symbol set so
// membership comparison ignores order and case.
func sortedFold(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedInts(values []int) []int {
	out := append([]int(nil), values...)
	sort.Ints(out)
	return out
}

func unionInts(a, b []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func equalIntSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
