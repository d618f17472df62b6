package importer

// classify.go assigns every surviving candidate to exactly one terminal
// state. Classification is a pure function over the candidate and the
// batch snapshots of the worker store and class directory; it returns an
// immutable Classification instead of mutating candidate flags.

import (
	"context"
	"strings"
)

// Classify routes one candidate:
//
//  1. Duplicate losers terminate immediately and are never imported.
//  2. Duplicate-group winners skip field validation entirely. This is a
//     deliberate rule carried over from the original importer: winning
//     the completeness contest is treated as sufficient data quality,
//     so a winner with a bad checksum or missing phone is still
//     imported as new rather than surfacing in the invalid bucket.
//  3. Any other candidate with validation errors becomes Invalid.
//  4. A candidate whose id exists in the store becomes ExistingUpdate
//     when the diff is non-empty, ExistingUpToDate otherwise.
//  5. Otherwise symbol resolution decides between NewWithKnownClass,
//     NewUnrecognizedSymbol and NewWithoutClass.
func Classify(ctx context.Context, c *Candidate, store WorkerStore, dir ClassDirectory, batchProjects []int) (Classification, error) {
	if c.IsDuplicate && !c.IsBestDuplicate {
		return Classification{State: StateDuplicateLoser}, nil
	}

	if !c.IsBestDuplicate {
		if errs := fieldErrors(c); len(errs) > 0 {
			return Classification{State: StateInvalid, Errors: errs}, nil
		}
	}

	existing, err := store.FindByNationalID(ctx, c.NationalID)
	if err != nil {
		return Classification{}, err
	}
	if existing != nil {
		changes := Diff(c, existing, dir, batchProjects)
		if changes.Empty() {
			return Classification{State: StateExistingUpToDate, Existing: existing}, nil
		}
		return Classification{State: StateExistingUpdate, Existing: existing, Changes: changes}, nil
	}

	symbols := c.Symbols()
	if len(symbols) == 0 {
		return Classification{State: StateNewWithoutClass}, nil
	}

	var classIDs []int64
	seen := make(map[int64]bool)
	for _, symbol := range symbols {
		if id, ok := ResolveSymbol(dir, symbol); ok && !seen[id] {
			seen[id] = true
			classIDs = append(classIDs, id)
		}
	}
	if len(classIDs) == 0 {
		return Classification{State: StateNewUnrecognizedSymbol}, nil
	}
	return Classification{State: StateNewWithKnownClass, ClassIDs: classIDs}, nil
}

// ResolveSymbol looks a symbol up in the directory, retrying with the
// substring before the first hyphen. Compound symbols like "ABC-3"
// refer to a sub-group of class "ABC".
func ResolveSymbol(dir ClassDirectory, symbol string) (int64, bool) {
	if id, ok := dir.Resolve(symbol); ok {
		return id, true
	}
	if i := strings.IndexByte(symbol, '-'); i > 0 {
		return dir.Resolve(symbol[:i])
	}
	return 0, false
}

// ClassifyAll classifies candidates in input order.
func ClassifyAll(ctx context.Context, candidates []*Candidate, store WorkerStore, dir ClassDirectory, batchProjects []int) ([]*Classified, error) {
	items := make([]*Classified, 0, len(candidates))
	for _, c := range candidates {
		result, err := Classify(ctx, c, store, dir, batchProjects)
		if err != nil {
			return nil, err
		}
		items = append(items, &Classified{Candidate: c, Result: result})
	}
	return items, nil
}
