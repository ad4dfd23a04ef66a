// Package journal keeps a local SQLite copy of every cashier operation the
// terminal records. Operations are recorded before the database write and
// marked synced once the database holds them; whatever is left unsynced is
// replayed by cmd/syncjournal.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"beautypos/internal/model"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var schema = []string{`CREATE TABLE IF NOT EXISTS cashier_operations (
    id          TEXT PRIMARY KEY,
    cashier_id  TEXT NOT NULL,
    kind        TEXT NOT NULL,
    payload     TEXT NOT NULL,
    recorded_at INTEGER NOT NULL,
    synced_at   INTEGER
)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_unsynced ON cashier_operations (synced_at, recorded_at)`,
}

// Entry is one journaled operation. Payload is the operation as JSON.
type Entry struct {
	ID         string        `db:"id"`
	CashierID  string        `db:"cashier_id"`
	Kind       string        `db:"kind"`
	Payload    string        `db:"payload"`
	RecordedAt int64         `db:"recorded_at"` // unix milliseconds
	SyncedAt   sql.NullInt64 `db:"synced_at"`
}

// Decode returns the stored operation.
func (e Entry) Decode() (model.CashierOperation, error) {
	var op model.CashierOperation
	if err := json.Unmarshal([]byte(e.Payload), &op); err != nil {
		return op, fmt.Errorf("journal: decode %s: %w", e.ID, err)
	}
	return op, nil
}

type Journal struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open creates or opens the journal file at path.
func Open(path string) (*Journal, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: migrate: %w", err)
		}
	}
	return &Journal{db: db, now: time.Now}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// Record stores op. Recording the same operation twice keeps the first copy.
func (j *Journal) Record(ctx context.Context, op model.CashierOperation) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("journal: encode: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO cashier_operations (id, cashier_id, kind, payload, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
		op.ID.String(), op.CashierID.String(), string(op.OperationType), string(payload), j.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", op.ID, err)
	}
	return nil
}

// Unsynced returns up to limit entries not yet pushed, oldest first.
func (j *Journal) Unsynced(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.SelectContext(ctx, &entries,
		`SELECT id, cashier_id, kind, payload, recorded_at, synced_at FROM cashier_operations
         WHERE synced_at IS NULL ORDER BY recorded_at ASC LIMIT $1`, limit)
	return entries, err
}

func (j *Journal) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE cashier_operations SET synced_at = ? WHERE id IN (?)`, j.now().UnixMilli(), ids)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, j.db.Rebind(query), args...)
	return err
}

// Importer is satisfied by repository.CashierRepository.
type Importer interface {
	ImportOperation(ctx context.Context, op *model.CashierOperation) error
}

// Sync pushes unsynced entries to dst in batches and returns how many were
// pushed. It stops at the first failing entry so that order is preserved.
func (j *Journal) Sync(ctx context.Context, dst Importer, batch int) (int, error) {
	if batch <= 0 {
		batch = 100
	}
	pushed := 0
	for {
		entries, err := j.Unsynced(ctx, batch)
		if err != nil {
			return pushed, err
		}
		if len(entries) == 0 {
			return pushed, nil
		}
		done := make([]string, 0, len(entries))
		var failure error
		for _, e := range entries {
			op, err := e.Decode()
			if err == nil {
				err = dst.ImportOperation(ctx, &op)
			}
			if err != nil {
				failure = fmt.Errorf("journal: sync %s: %w", e.ID, err)
				break
			}
			done = append(done, e.ID)
		}
		if err := j.MarkSynced(ctx, done); err != nil {
			return pushed, err
		}
		pushed += len(done)
		if failure != nil {
			return pushed, failure
		}
	}
}
