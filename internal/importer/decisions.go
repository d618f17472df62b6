package importer

// Decisions is the operator's explicit approvals for the decision-gated
// buckets, keyed by national ID. It is constructed once from the commit
// request and passed by value; the pipeline never mutates it.
type Decisions struct {
	unrecognizedSymbols map[string]struct{}
	invalidWorkers      map[string]struct{}
	existingWorkers     map[string]struct{}
}

// NewDecisions builds a decision set from the three approval lists.
func NewDecisions(unrecognizedSymbols, invalidWorkers, existingWorkers []string) Decisions {
	return Decisions{
		unrecognizedSymbols: toSet(unrecognizedSymbols),
		invalidWorkers:      toSet(invalidWorkers),
		existingWorkers:     toSet(existingWorkers),
	}
}

// ApprovedUnrecognized reports whether a NewUnrecognizedSymbol candidate
// was approved for import.
func (d Decisions) ApprovedUnrecognized(nationalID string) bool {
	_, ok := d.unrecognizedSymbols[nationalID]
	return ok
}

// ApprovedInvalid reports whether an Invalid candidate was approved for
// import.
func (d Decisions) ApprovedInvalid(nationalID string) bool {
	_, ok := d.invalidWorkers[nationalID]
	return ok
}

// ApprovedUpdate reports whether an ExistingUpdate candidate was
// approved for update.
func (d Decisions) ApprovedUpdate(nationalID string) bool {
	_, ok := d.existingWorkers[nationalID]
	return ok
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
