package importer

// dedupe.go groups candidates sharing a national ID and keeps exactly
// one winner per group. Duplicate rows are read as additional class
// assignments for the same person, not as conflicting data, so the
// winner inherits the union of the group's symbols.

import "strings"

// notSelected is the placeholder the HR export writes for fields the
// clerk never filled in. It counts as empty for completeness scoring.
const notSelected = "not selected"

// Deduplicate annotates the candidate list in place. Groups of size one
// pass through untouched. In larger groups the candidate with the
// highest completeness score wins (first seen wins ties), gets
// IsBestDuplicate and the symbol union; every other member becomes a
// duplicate loser. Input order is preserved.
func Deduplicate(candidates []*Candidate) {
	groups := make(map[string][]*Candidate)
	for _, c := range candidates {
		groups[c.NationalID] = append(groups[c.NationalID], c)
	}

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		winner := group[0]
		best := completeness(winner)
		for _, c := range group[1:] {
			if score := completeness(c); score > best {
				winner, best = c, score
			}
		}

		symbols := symbolUnion(group)
		for _, c := range group {
			c.IsDuplicate = c != winner
			c.IsBestDuplicate = c == winner
		}
		winner.AllSymbols = symbols
	}
}

// completeness counts the identity-adjacent fields that carry a real
// value.
func completeness(c *Candidate) int {
	score := 0
	for _, v := range []string{
		c.FirstName, c.LastName, c.Phone, c.Email,
		c.WorkingSymbol, c.RoleName, c.Status,
	} {
		if v != "" && !strings.EqualFold(v, notSelected) {
			score++
		}
	}
	return score
}

// symbolUnion returns the de-duplicated non-empty symbols across a
// group, in first-seen order.
func symbolUnion(group []*Candidate) []string {
	seen := make(map[string]bool)
	var union []string
	for _, c := range group {
		if c.WorkingSymbol == "" || seen[c.WorkingSymbol] {
			continue
		}
		seen[c.WorkingSymbol] = true
		union = append(union, c.WorkingSymbol)
	}
	return union
}
