// Package database implements the pipeline's storage contract on PostgreSQL
// using pgx. All writes of one import go through a single transaction; chunk
// checkpoints map onto SQL savepoints.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefleet/importer/internal/core"
)

// watchedTables are the tables an import can write to, in the order the
// rollback verifier reports them.
var watchedTables = []string{"accounts", "stores", "store_configs", "translations"}

// Postgres implements core.Storage over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool. The pool's lifecycle belongs to the
// caller.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Begin opens a transaction-backed unit of work.
func (p *Postgres) Begin(ctx context.Context) (core.Unit, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &unit{tx: tx}, nil
}

// TableCounts reads the current row count of every table an import can
// write to. Counts are read outside any import transaction.
func (p *Postgres) TableCounts(ctx context.Context) (core.Snapshot, error) {
	snap := make(core.Snapshot, len(watchedTables))
	for _, table := range watchedTables {
		var n int64
		// Table names come from the fixed watchedTables list, never from input.
		if err := p.pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		snap[table] = n
	}
	return snap, nil
}

func (p *Postgres) ZoneExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM zones WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check zone %d: %w", id, err)
	}
	return exists, nil
}

func (p *Postgres) ModuleExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM modules WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check module %d: %w", id, err)
	}
	return exists, nil
}

// unit implements core.Unit on a pgx transaction.
type unit struct {
	tx pgx.Tx
}

func (u *unit) FindAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	var a core.Account
	err := u.tx.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, phone
		 FROM accounts WHERE lower(email) = lower($1)`, email,
	).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &a, nil
}

func (u *unit) InsertAccount(ctx context.Context, a *core.Account) (int64, error) {
	err := u.tx.QueryRow(ctx,
		`INSERT INTO accounts (first_name, last_name, email, phone)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		a.FirstName, a.LastName, a.Email, a.Phone,
	).Scan(&a.ID)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return a.ID, nil
}

func (u *unit) StoreExistsForEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := u.tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM stores s
		   JOIN accounts a ON a.id = s.account_id
		   WHERE lower(a.email) = lower($1)
		 )`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check store for email: %w", err)
	}
	return exists, nil
}

func (u *unit) InsertStore(ctx context.Context, s *core.Store) (int64, error) {
	err := u.tx.QueryRow(ctx,
		`INSERT INTO stores (account_id, name, address, latitude, longitude, zone_id, module_id, active)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8) RETURNING id`,
		s.AccountID, s.Name, s.Address, s.Latitude, s.Longitude, s.ZoneID, s.ModuleID, s.Active,
	).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	return s.ID, nil
}

func (u *unit) InsertStoreConfig(ctx context.Context, c *core.StoreConfig) error {
	_, err := u.tx.Exec(ctx,
		`INSERT INTO store_configs (store_id, tax, commission, delivery_time, schedule_order)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.StoreID, c.Tax, c.Commission, c.DeliveryTime, c.ScheduleOrder,
	)
	if err != nil {
		return fmt.Errorf("insert store config: %w", err)
	}
	return nil
}

// ReplaceTranslations deletes every tuple for the entity and inserts the new
// set in one batch, which is what keeps re-imports idempotent.
func (u *unit) ReplaceTranslations(ctx context.Context, kind core.EntityKind, entityID int64, tuples []core.Tuple) error {
	_, err := u.tx.Exec(ctx,
		"DELETE FROM translations WHERE entity_type = $1 AND entity_id = $2",
		kind.String(), entityID,
	)
	if err != nil {
		return fmt.Errorf("clear translations: %w", err)
	}
	if len(tuples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tuples {
		batch.Queue(
			`INSERT INTO translations (entity_type, entity_id, locale, key, value)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.Kind.String(), t.EntityID, t.Locale, t.Key, t.Value,
		)
	}
	results := u.tx.SendBatch(ctx, batch)
	defer results.Close()
	for range tuples {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert translation: %w", err)
		}
	}
	return results.Close()
}

// Savepoint names are generated internally (chunk_N) and never derived from
// user input, so plain string concatenation is safe here.
func (u *unit) Savepoint(ctx context.Context, name string) error {
	_, err := u.tx.Exec(ctx, "SAVEPOINT "+name)
	if err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	return nil
}

func (u *unit) ReleaseSavepoint(ctx context.Context, name string) error {
	_, err := u.tx.Exec(ctx, "RELEASE SAVEPOINT "+name)
	if err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

func (u *unit) RollbackToSavepoint(ctx context.Context, name string) error {
	_, err := u.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name)
	if err != nil {
		return fmt.Errorf("rollback to savepoint %s: %w", name, err)
	}
	return nil
}

func (u *unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
