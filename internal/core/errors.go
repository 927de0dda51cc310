package core

// errors.go defines the pipeline failure taxonomy and the mapping from
// technical errors to user-facing messages.
//
// Taxonomy:
//
//	StructuralRejection   — file-level: unreadable source, zero data rows.
//	ValidationFailure     — row-level hard failures aggregated across the
//	                        whole file; nothing is written.
//	PersistenceFailure    — any failure during the atomic import; triggers
//	                        full rollback followed by the verifier.
//	InconsistentRollback  — the verifier found the rollback did not fully
//	                        apply. Storage defect, never retried.
//
// Duplicate-identity skips are not errors; they are recorded in the audit
// trail and the import continues.

import (
	"errors"
	"fmt"
	"strings"
)

// StructuralRejection is a file-level rejection raised before any row is
// processed. It is not retried automatically.
type StructuralRejection struct {
	Reasons []string
}

func (e *StructuralRejection) Error() string {
	return "import rejected: " + strings.Join(e.Reasons, "; ")
}

// ValidationFailure aggregates every row-level hard failure found in the
// file, so a single submission round-trip can fix multiple issues.
type ValidationFailure struct {
	RowErrors []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("%d validation error(s): %s", len(e.RowErrors), strings.Join(e.RowErrors, "; "))
}

// PersistenceFailure wraps a storage error raised while importing a record.
type PersistenceFailure struct {
	Row int // Source row being imported, 0 when not record-specific
	Op  string
	Err error
}

func (e *PersistenceFailure) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceFailure) Unwrap() error { return e.Err }

// ErrInconsistentRollback is the sentinel for a rollback that did not fully
// apply. It implies the storage layer's transactional guarantee was violated
// and must be surfaced loudly, never silently retried.
var ErrInconsistentRollback = errors.New("rollback left inconsistent state")

// TableDrift records one table whose row count differs from the baseline
// snapshot after a rollback.
type TableDrift struct {
	Table    string
	Baseline int64
	Actual   int64
}

// InconsistentRollbackError carries the per-table drift the verifier found.
type InconsistentRollbackError struct {
	Drift []TableDrift
}

func (e *InconsistentRollbackError) Error() string {
	parts := make([]string, len(e.Drift))
	for i, d := range e.Drift {
		parts[i] = fmt.Sprintf("%s: baseline %d, found %d", d.Table, d.Baseline, d.Actual)
	}
	return fmt.Sprintf("%v: %s", ErrInconsistentRollback, strings.Join(parts, "; "))
}

func (e *InconsistentRollbackError) Unwrap() error { return ErrInconsistentRollback }

// UserMessage provides user-friendly error information with a support code.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference code
}

// errorPattern maps a technical error substring to its user message.
// Matching is case-insensitive; the first match wins, so specific patterns
// come before general ones.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "rollback left inconsistent state",
		msg: UserMessage{
			Message: "The import failed and could not be fully undone",
			Action:  "Contact support immediately; do not retry the import",
			Code:    "IMP001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this identifier already exists",
			Action:  "Review your file for duplicate entries",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Review your file for duplicate entries",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced zone, module, or category does not exist",
			Action:  "Check the zone and module ids in your file",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "The uploaded file has no data rows",
			Action:  "Add at least one store row below the header",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "The file format is not supported",
			Action:  "Upload a CSV or XLSX file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "validation error",
		msg: UserMessage{
			Message: "Some rows failed validation",
			Action:  "Fix the listed rows and upload the file again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The import timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "IMP002",
		},
	},
}

// MapError converts a technical error to a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	s := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(s, p.pattern) {
			return p.msg
		}
	}
	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}
