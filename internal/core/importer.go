package core

// importer.go wraps the creation of dependent entities — owner account,
// store, configuration row, translation rows — in a single all-or-nothing
// unit of work.
//
// Atomicity is file-wide, not row-wide: any fatal error aborts the entire
// unit. Nested savepoints are taken per chunk so a failure deep into a large
// file can be localized for diagnosis, but they never enable partial commit.
// Duplicate-identity skips are recorded and do not abort the unit.

import (
	"context"
	"fmt"
)

// DefaultChunkSize is the number of records per savepoint chunk.
var DefaultChunkSize = 100

// Importer persists a validated batch atomically.
type Importer struct {
	store     Storage
	extractor *Extractor

	defaultZoneID int64
	chunkSize     int
}

// NewImporter creates an importer. A chunkSize of zero uses DefaultChunkSize.
func NewImporter(store Storage, extractor *Extractor, defaultZoneID int64, chunkSize int) *Importer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Importer{
		store:         store,
		extractor:     extractor,
		defaultZoneID: defaultZoneID,
		chunkSize:     chunkSize,
	}
}

// runResult reports what the importer did with each record.
type runResult struct {
	imported int
	skipped  int
	records  []RecordOutcome
}

// Run imports the batch inside one unit of work. The returned snapshot is
// the baseline taken before any write; on failure the caller hands it to the
// Rollback Verifier. The unit is committed only if every record was
// processed without a fatal error.
func (im *Importer) Run(ctx context.Context, batch []Record, trail *auditTrail) (*runResult, Snapshot, error) {
	snap, err := im.store.TableCounts(ctx)
	if err != nil {
		return nil, nil, &PersistenceFailure{Op: "snapshot baseline row counts", Err: err}
	}

	uow, err := im.store.Begin(ctx)
	if err != nil {
		return nil, snap, &PersistenceFailure{Op: "open unit of work", Err: err}
	}

	res := &runResult{}
	chunk := ""

	for i, rec := range batch {
		if i%im.chunkSize == 0 {
			if chunk != "" {
				if err := uow.ReleaseSavepoint(ctx, chunk); err != nil {
					rollback(ctx, uow)
					return res, snap, &PersistenceFailure{Op: "release checkpoint " + chunk, Err: err}
				}
			}
			chunk = fmt.Sprintf("chunk_%d", i/im.chunkSize)
			if err := uow.Savepoint(ctx, chunk); err != nil {
				rollback(ctx, uow)
				return res, snap, &PersistenceFailure{Op: "create checkpoint " + chunk, Err: err}
			}
		}

		outcome, err := im.importRecord(ctx, uow, rec, trail)
		if err != nil {
			trail.error("import aborted",
				"row", rec.SourceRow,
				"checkpoint", chunk,
				"error", err.Error(),
			)
			rollback(ctx, uow)
			return res, snap, err
		}

		res.records = append(res.records, outcome)
		if outcome.Status == RecordSkipped {
			res.skipped++
		} else {
			res.imported++
		}
	}

	if chunk != "" {
		if err := uow.ReleaseSavepoint(ctx, chunk); err != nil {
			rollback(ctx, uow)
			return res, snap, &PersistenceFailure{Op: "release checkpoint " + chunk, Err: err}
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return res, snap, &PersistenceFailure{Op: "commit unit of work", Err: err}
	}
	return res, snap, nil
}

// importRecord persists one record: resolve-or-create the owner account,
// create the store and its configuration row, then replace the store's
// translations.
func (im *Importer) importRecord(ctx context.Context, uow Unit, rec Record, trail *auditTrail) (RecordOutcome, error) {
	email := rec.Text["ownerEmail"]

	exists, err := uow.StoreExistsForEmail(ctx, email)
	if err != nil {
		return RecordOutcome{}, &PersistenceFailure{Row: rec.SourceRow, Op: "check duplicate identity", Err: err}
	}
	if exists {
		trail.info("duplicate identity, skipping record", "row", rec.SourceRow, "email", email)
		return RecordOutcome{
			Row:    rec.SourceRow,
			Status: RecordSkipped,
			Detail: "a store with this contact email already exists",
		}, nil
	}

	accountID, err := im.resolveAccount(ctx, uow, rec)
	if err != nil {
		return RecordOutcome{}, err
	}

	zoneID, err := im.resolveZone(ctx, rec)
	if err != nil {
		return RecordOutcome{}, err
	}

	moduleID := int64(rec.Number["moduleId"])
	if moduleID != 0 {
		ok, err := im.store.ModuleExists(ctx, moduleID)
		if err != nil {
			return RecordOutcome{}, &PersistenceFailure{Row: rec.SourceRow, Op: "check module", Err: err}
		}
		if !ok {
			return RecordOutcome{}, &PersistenceFailure{
				Row: rec.SourceRow,
				Op:  "check module",
				Err: fmt.Errorf("module %d does not exist", moduleID),
			}
		}
	}

	storeID, err := uow.InsertStore(ctx, &Store{
		AccountID: accountID,
		Name:      rec.Text["storeName"],
		Address:   rec.Text["storeAddress"],
		Latitude:  rec.Number["latitude"],
		Longitude: rec.Number["longitude"],
		ZoneID:    zoneID,
		ModuleID:  moduleID,
		Active:    rec.Flag["active"],
	})
	if err != nil {
		return RecordOutcome{}, &PersistenceFailure{Row: rec.SourceRow, Op: "insert store", Err: err}
	}

	if err := uow.InsertStoreConfig(ctx, &StoreConfig{
		StoreID:       storeID,
		Tax:           rec.Number["tax"],
		Commission:    rec.Number["commission"],
		DeliveryTime:  rec.Text["deliveryTime"],
		ScheduleOrder: rec.Flag["scheduleOrder"],
	}); err != nil {
		return RecordOutcome{}, &PersistenceFailure{Row: rec.SourceRow, Op: "insert store config", Err: err}
	}

	tuples := im.extractor.Extract(rec, KindStore, storeID)
	if err := uow.ReplaceTranslations(ctx, KindStore, storeID, tuples); err != nil {
		return RecordOutcome{}, &PersistenceFailure{Row: rec.SourceRow, Op: "replace translations", Err: err}
	}
	if len(tuples) > 0 {
		trail.info("translations imported", "row", rec.SourceRow, "store_id", storeID, "tuples", len(tuples))
	}

	return RecordOutcome{Row: rec.SourceRow, Status: RecordImported}, nil
}

// resolveAccount reuses an existing owner account deduplicated by contact
// email, or creates one. An email already bound to a different owner name is
// a hard failure — identity data is never silently overwritten.
func (im *Importer) resolveAccount(ctx context.Context, uow Unit, rec Record) (int64, error) {
	email := rec.Text["ownerEmail"]
	first := rec.Text["ownerFirstName"]
	last := rec.Text["ownerLastName"]

	acct, err := uow.FindAccountByEmail(ctx, email)
	if err != nil {
		return 0, &PersistenceFailure{Row: rec.SourceRow, Op: "find owner account", Err: err}
	}
	if acct != nil {
		if acct.FirstName != first || acct.LastName != last {
			return 0, &PersistenceFailure{
				Row: rec.SourceRow,
				Op:  "resolve owner account",
				Err: fmt.Errorf("email %s is already bound to a different account", email),
			}
		}
		return acct.ID, nil
	}

	id, err := uow.InsertAccount(ctx, &Account{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     rec.Text["ownerPhone"],
	})
	if err != nil {
		return 0, &PersistenceFailure{Row: rec.SourceRow, Op: "insert owner account", Err: err}
	}
	return id, nil
}

// resolveZone applies the default-zone fallback and verifies the zone
// exists. Existence is checked just before insert, not during in-memory
// validation, to avoid snapshot-staleness.
func (im *Importer) resolveZone(ctx context.Context, rec Record) (int64, error) {
	zoneID := int64(rec.Number["zoneId"])
	if zoneID == 0 {
		zoneID = im.defaultZoneID
	}
	if zoneID == 0 {
		return 0, &PersistenceFailure{
			Row: rec.SourceRow,
			Op:  "resolve zone",
			Err: fmt.Errorf("no zone assigned and no default zone configured"),
		}
	}
	ok, err := im.store.ZoneExists(ctx, zoneID)
	if err != nil {
		return 0, &PersistenceFailure{Row: rec.SourceRow, Op: "check zone", Err: err}
	}
	if !ok {
		return 0, &PersistenceFailure{
			Row: rec.SourceRow,
			Op:  "check zone",
			Err: fmt.Errorf("zone %d does not exist", zoneID),
		}
	}
	return zoneID, nil
}

// rollback is a best-effort unit rollback; the verifier decides afterwards
// whether it actually applied.
func rollback(ctx context.Context, uow Unit) {
	_ = uow.Rollback(ctx)
}
