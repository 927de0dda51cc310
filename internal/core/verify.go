package core

// verify.go double-checks that a failed import really left the database
// untouched. The transaction's own rollback is trusted but verified: row
// counts of every affected table are re-read and compared against the
// baseline snapshot taken before the unit of work opened.

import (
	"context"
	"sort"
)

// Verifier confirms rollback completeness after a failed import.
type Verifier struct {
	store Storage
}

// NewVerifier creates a verifier backed by the same storage the importer
// wrote through.
func NewVerifier(store Storage) *Verifier {
	return &Verifier{store: store}
}

// Confirm re-reads table row counts and compares them to the baseline. It
// returns nil when every count matches, *InconsistentRollbackError carrying
// every drifted table otherwise, or a PersistenceFailure if the counts
// cannot be read.
func (v *Verifier) Confirm(ctx context.Context, baseline Snapshot) error {
	current, err := v.store.TableCounts(ctx)
	if err != nil {
		return &PersistenceFailure{Op: "re-read row counts", Err: err}
	}

	tables := make([]string, 0, len(baseline))
	for table := range baseline {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var drift []TableDrift
	for _, table := range tables {
		if got := current[table]; got != baseline[table] {
			drift = append(drift, TableDrift{Table: table, Baseline: baseline[table], Actual: got})
		}
	}
	if len(drift) > 0 {
		return &InconsistentRollbackError{Drift: drift}
	}
	return nil
}
