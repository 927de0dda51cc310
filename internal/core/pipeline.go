package core

// pipeline.go is the single entry point callers use. One invocation walks a
// fixed state machine:
//
//	received -> validated -> normalized -> importing -> completed
//	                   \-> rejected            \-> verifying -> rolled_back
//
// Each invocation is single-pass; no state is re-entered. Every transition
// lands in the audit trail attached to the result.

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storefleet/importer/internal/language"
)

// Options tunes a pipeline for the deployment.
type Options struct {
	// DefaultZoneID substitutes for records without a zone assignment.
	// Zero disables the fallback and makes a missing zone a hard failure.
	DefaultZoneID int64

	// ChunkSize is the number of records per importer savepoint chunk.
	ChunkSize int
}

// Pipeline orchestrates decode, validation, normalization, import, and
// rollback verification for one file at a time. A Pipeline is safe for
// concurrent use; all per-invocation state lives in Run.
type Pipeline struct {
	decoder    Decoder
	validator  *Validator
	normalizer *Normalizer
	importer   *Importer
	verifier   *Verifier
	logger     *slog.Logger
}

// New wires a pipeline over the given storage and decoder.
func New(store Storage, decoder Decoder, reg *language.Registry, logger *slog.Logger, opts Options) *Pipeline {
	return &Pipeline{
		decoder:    decoder,
		validator:  NewValidator(reg, opts.DefaultZoneID),
		normalizer: NewNormalizer(reg),
		importer:   NewImporter(store, NewExtractor(reg), opts.DefaultZoneID, opts.ChunkSize),
		verifier:   NewVerifier(store),
		logger:     logger,
	}
}

// Run processes one uploaded file end to end and always returns a result,
// even on failure. The declared filename is used for format inference and
// audit context only.
func (p *Pipeline) Run(ctx context.Context, src io.Reader, filename string) *ImportResult {
	start := time.Now()
	result := &ImportResult{
		ImportID: uuid.NewString(),
		State:    StateReceived,
	}
	trail := newAuditTrail(p.logger.With("import_id", result.ImportID, "file", filename))
	trail.info("file received", "file", filename)

	defer func() {
		result.Audit = trail.entries
		result.Duration = time.Since(start)
	}()

	headers, rows, err := p.decoder.Decode(src, filename)
	if err != nil {
		result.Errors = append(result.Errors, "file could not be decoded: "+err.Error())
		p.reject(result, trail, result.Errors[0])
		return result
	}
	trail.info("file decoded", "columns", len(headers), "rows", len(rows))

	structure := p.validator.CheckStructure(headers, len(rows))
	result.Warnings = append(result.Warnings, structure.Warnings...)
	if !structure.Valid() {
		result.Errors = append(result.Errors, structure.Errors...)
		p.reject(result, trail, (&StructuralRejection{Reasons: structure.Errors}).Error())
		return result
	}
	trail.transition(StateReceived, StateValidated)
	result.State = StateValidated

	batch, rowErrors := p.prepare(rows, result, trail)
	if len(rowErrors) > 0 {
		result.Errors = append(result.Errors, rowErrors...)
		p.reject(result, trail, (&ValidationFailure{RowErrors: rowErrors}).Error())
		return result
	}
	trail.transition(StateValidated, StateNormalized)
	result.State = StateNormalized

	trail.transition(StateNormalized, StateImporting)
	result.State = StateImporting
	run, baseline, err := p.importer.Run(ctx, batch, trail)
	if run != nil {
		result.Imported = run.imported
		result.Skipped = run.skipped
		result.Records = append(result.Records, run.records...)
	}
	if err != nil {
		p.verifyRollback(ctx, result, trail, baseline, err)
		return result
	}

	trail.transition(StateImporting, StateCompleted)
	result.State = StateCompleted
	result.Success = true
	trail.info("import completed", "imported", result.Imported, "skipped", result.Skipped)
	return result
}

// prepare normalizes every row and validates the resulting records. Any row
// error rejects the whole file; records are still reported individually so
// the caller can see exactly which rows were bad.
func (p *Pipeline) prepare(rows []RawRow, result *ImportResult, trail *auditTrail) ([]Record, []string) {
	var batch []Record
	var rowErrors []string

	for _, row := range rows {
		rec := p.normalizer.Normalize(row)
		out := p.validator.CheckRecord(rec, row)

		result.Warnings = append(result.Warnings, out.Warnings...)
		for _, w := range out.Warnings {
			trail.warn(w, "row", row.Line)
		}

		if !out.Valid() {
			rowErrors = append(rowErrors, out.Errors...)
			result.Records = append(result.Records, RecordOutcome{
				Row:    row.Line,
				Status: RecordInvalid,
				Detail: out.Errors[0],
			})
			continue
		}
		batch = append(batch, rec)
	}
	return batch, rowErrors
}

// verifyRollback runs after a failed import: the unit's rollback is trusted
// but verified against the baseline snapshot. Drift marks the result as
// inconsistent; it indicates a storage defect and is never retried.
func (p *Pipeline) verifyRollback(ctx context.Context, result *ImportResult, trail *auditTrail, baseline Snapshot, cause error) {
	result.Errors = append(result.Errors, cause.Error())
	trail.transition(StateImporting, StateVerifying)
	result.State = StateVerifying

	if err := p.verifier.Confirm(ctx, baseline); err != nil {
		result.RollbackInconsistent = true
		result.Errors = append(result.Errors, err.Error())
		trail.error("rollback verification failed", "error", err.Error())
	} else {
		trail.info("rollback verified, no residual rows")
	}

	trail.transition(StateVerifying, StateRolledBack)
	result.State = StateRolledBack
	result.Records = markFailed(result.Records)
}

// reject finalizes a result that never reached the importing state.
func (p *Pipeline) reject(result *ImportResult, trail *auditTrail, reason string) {
	trail.error("import rejected", "reason", reason)
	trail.transition(result.State, StateRejected)
	result.State = StateRejected
}

// markFailed rewrites imported outcomes after a rollback; their rows are no
// longer in the database.
func markFailed(records []RecordOutcome) []RecordOutcome {
	for i := range records {
		if records[i].Status == RecordImported || records[i].Status == RecordSkipped {
			records[i].Status = RecordFailed
			records[i].Detail = "rolled back after import failure"
		}
	}
	return records
}
