// Package core implements the multilingual store bulk-import pipeline.
// This package has no transport dependencies and can be driven by web
// handlers, CLI tools, or tests without modification.
package core

import (
	"context"
	"io"
	"time"
)

// FieldType represents the expected data type for a spreadsheet field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldBool
	FieldEmail
	FieldLatitude
	FieldLongitude
	FieldPercent
)

// FieldSpec defines one canonical plain field of a store record.
//
// The spec table is the single source of truth for header aliases, defaults,
// and required-ness: both the Normalizer and the Validator consult it, so the
// two phases cannot disagree on a field's default.
type FieldSpec struct {
	Name     string   // Canonical field name, also the primary header
	Aliases  []string // Alternate headers, tried in declared priority order
	Type     FieldType
	Required bool

	// Identity marks fields with no safe default (owner name, store name,
	// contact email). A missing identity field is a hard failure; any other
	// missing field falls back to its default with a warning at most.
	Identity bool

	DefaultText   string
	DefaultNumber float64
	DefaultFlag   bool
}

// RawRow is one data row as produced by the spreadsheet decoder: the original
// headers plus a mapping from header to cell value. Rows are never mutated.
type RawRow struct {
	Line   int      // 1-based row number in the source file
	Header []string // Original column headers, in sheet order
	Cells  map[string]string
}

// MultiField is one multilingual column captured during normalization.
// Alias-to-canonical resolution is deferred to the Translation Extractor,
// so the original column name is retained.
type MultiField struct {
	Base   string // Translatable base field, e.g. "name"
	Column string // Original column header, e.g. "name_sorani"
	Value  string // Trimmed, non-empty cell text
}

// Record is the normalized form of one RawRow. Every canonical plain field
// has a value (possibly its documented default); numeric and boolean fields
// are coerced or defaulted, never left as raw strings.
type Record struct {
	SourceRow int

	Text   map[string]string
	Number map[string]float64
	Flag   map[string]bool

	// Multilingual holds every column that matched a multilingual naming
	// pattern, in sheet order.
	Multilingual []MultiField
}

// Outcome is the result of validating a single record or a whole file.
// Errors block the import; warnings are logged and do not.
type Outcome struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the outcome carries no blocking errors.
func (o Outcome) Valid() bool { return len(o.Errors) == 0 }

// EntityKind is the closed set of entity kinds a translation can attach to.
type EntityKind int

const (
	KindStore EntityKind = iota
	KindAccount
)

// String returns the wire tag written to the translations table.
func (k EntityKind) String() string {
	switch k {
	case KindStore:
		return "Store"
	case KindAccount:
		return "Account"
	default:
		return "Unknown"
	}
}

// Tuple is one translated text value for an entity.
// Locale is always a canonical language code, never an alias.
type Tuple struct {
	Kind     EntityKind
	EntityID int64
	Locale   string
	Key      string // Translatable field name, e.g. "name"
	Value    string
}

// Account is the owner account a store belongs to.
// Accounts are deduplicated by contact email across imports.
type Account struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Store is the primary business entity created per imported record.
type Store struct {
	ID        int64
	AccountID int64
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	ZoneID    int64
	ModuleID  int64
	Active    bool
}

// StoreConfig holds the auxiliary configuration row created with each store.
type StoreConfig struct {
	StoreID       int64
	Tax           float64
	Commission    float64
	DeliveryTime  string
	ScheduleOrder bool
}

// Snapshot is a per-table row-count baseline taken before a unit of work
// starts, and re-checked by the Rollback Verifier after a failure.
type Snapshot map[string]int64

// Storage is the persistence collaborator consumed by the pipeline.
// Implementations live in internal/database; tests use an in-memory fake.
type Storage interface {
	// Begin opens a unit of work. The unit commits or rolls back as a
	// whole; nested savepoints never enable partial commit.
	Begin(ctx context.Context) (Unit, error)

	// TableCounts returns the current row count of every table the
	// pipeline can write to, keyed by table name.
	TableCounts(ctx context.Context) (Snapshot, error)

	ZoneExists(ctx context.Context, id int64) (bool, error)
	ModuleExists(ctx context.Context, id int64) (bool, error)
}

// Unit is a single unit of work against the datastore.
// No Unit outlives one pipeline invocation.
type Unit interface {
	// FindAccountByEmail returns the account bound to the email, or nil
	// when none exists.
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	InsertAccount(ctx context.Context, a *Account) (int64, error)

	// StoreExistsForEmail reports whether a store already exists for the
	// given contact email. Used for duplicate-identity skips.
	StoreExistsForEmail(ctx context.Context, email string) (bool, error)
	InsertStore(ctx context.Context, s *Store) (int64, error)
	InsertStoreConfig(ctx context.Context, c *StoreConfig) error

	// ReplaceTranslations removes all prior tuples for (kind, entityID)
	// and inserts the new set, guaranteeing idempotent re-import.
	ReplaceTranslations(ctx context.Context, kind EntityKind, entityID int64, tuples []Tuple) error

	Savepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Decoder is the spreadsheet-to-row collaborator. The declared name is used
// only for extension inference; decoding fails if the source is unreadable
// or contains zero data rows.
type Decoder interface {
	Decode(r io.Reader, declaredName string) (headers []string, rows []RawRow, err error)
}

// State is the pipeline state machine position. Each invocation is
// single-pass; no state is ever re-entered.
type State string

const (
	StateReceived   State = "received"
	StateValidated  State = "validated"
	StateNormalized State = "normalized"
	StateImporting  State = "importing"
	StateVerifying  State = "verifying"
	StateCompleted  State = "completed"
	StateRejected   State = "rejected"
	StateRolledBack State = "rolled_back"
)

// RecordStatus is the terminal disposition of one record.
type RecordStatus string

const (
	RecordImported RecordStatus = "imported"
	RecordSkipped  RecordStatus = "skipped"
	RecordInvalid  RecordStatus = "invalid"
	RecordFailed   RecordStatus = "failed"
)

// RecordOutcome reports what happened to a single record.
type RecordOutcome struct {
	Row    int          `json:"row"`
	Status RecordStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// ImportResult is returned to the caller for every pipeline invocation.
type ImportResult struct {
	ImportID string          `json:"importId"`
	State    State           `json:"state"`
	Success  bool            `json:"success"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Records  []RecordOutcome `json:"records,omitempty"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`

	// RollbackInconsistent is set when the Rollback Verifier detected that
	// a rollback did not fully apply. It indicates a storage defect and is
	// never retried.
	RollbackInconsistent bool `json:"rollbackInconsistent,omitempty"`

	Audit    []AuditEntry  `json:"audit,omitempty"`
	Duration time.Duration `json:"-"`
}
