// Package importer implements the bulk worker-import reconciliation
// pipeline: spreadsheet rows are parsed into candidates, validated,
// deduplicated by national ID, classified against the existing worker
// store and class directory, diffed where a match exists, and finally
// committed as create/update/assignment operations. A row-for-row audit
// report accounts for every input row regardless of its fate.
//
// The reconciliation stages (parse, validate, dedupe, classify, diff)
// are pure and synchronous; only Commit touches external collaborators.
// All collaborators are consumed through interfaces so the pipeline can
// be tested without I/O.
package importer
