package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "inconsistent rollback",
			err:      &InconsistentRollbackError{Drift: []TableDrift{{Table: "stores", Baseline: 10, Actual: 11}}},
			wantCode: "IMP001",
		},
		{
			name:     "duplicate key",
			err:      errors.New(`ERROR: duplicate key value violates unique constraint "accounts_email_key"`),
			wantCode: "DB001",
		},
		{
			name:     "foreign key",
			err:      errors.New("insert or update violates foreign key constraint"),
			wantCode: "DB003",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "empty file",
			err:      &StructuralRejection{Reasons: []string{"file contains no data rows"}},
			wantCode: "FILE001",
		},
		{
			name:     "unsupported format",
			err:      errors.New("unsupported format: zip: not a valid zip file"),
			wantCode: "FILE002",
		},
		{
			name:     "validation failure",
			err:      &ValidationFailure{RowErrors: []string{"row 2: missing required field ownerEmail"}},
			wantCode: "VAL001",
		},
		{
			name:     "timeout",
			err:      fmt.Errorf("import: %w", errors.New("context deadline exceeded")),
			wantCode: "IMP002",
		},
		{
			name:     "unknown",
			err:      errors.New("something nobody anticipated"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %s, want %s", tt.err, got.Code, tt.wantCode)
			}
			if got.Message == "" || got.Action == "" {
				t.Errorf("MapError(%v) returned incomplete message: %+v", tt.err, got)
			}
		})
	}
}

func TestPersistenceFailureUnwrap(t *testing.T) {
	inner := errors.New("broken pipe")
	err := &PersistenceFailure{Row: 5, Op: "insert store", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("PersistenceFailure should unwrap to its cause")
	}
	if got := err.Error(); got != "row 5: insert store: broken pipe" {
		t.Errorf("Error() = %q", got)
	}
}

func TestInconsistentRollbackSentinel(t *testing.T) {
	err := &InconsistentRollbackError{Drift: []TableDrift{{Table: "stores", Baseline: 1, Actual: 2}}}
	if !errors.Is(err, ErrInconsistentRollback) {
		t.Error("InconsistentRollbackError should match the sentinel")
	}
}
