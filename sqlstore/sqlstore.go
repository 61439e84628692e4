// Package sqlstore persists a ledger in a SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// schemaVersion is stored in PRAGMA user_version once the schema is applied.
const schemaVersion = 1

// savedKey marks, in ledger_meta, a database that has been saved at least once.
const savedKey = "saved_at"

// Repository is a ledger.Repository backed by a SQLite database.
type Repository struct {
	db   *sql.DB
	path string
}

var _ ledger.Repository = (*Repository)(nil)

// Open opens, creating it if needed, the database at path and migrates its
// schema. Use ":memory:" for a transient database.
func Open(ctx context.Context, path string) (*Repository, error) {
	if path != ":memory:" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve database path %q: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create database directory: %w", err)
		}
		path = abs
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", path, err)
	}
	// a single connection: ":memory:" databases are per connection, and the
	// ledger has one writer anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot reach database %q: %w", path, err)
	}
	r := &Repository{db: db, path: path}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	var version int
	if err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("cannot read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database %q has schema version %d, newer than %d", r.path, version, schemaVersion)
	}
	if version == schemaVersion {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("cannot apply schema: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("cannot write schema version: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *Repository) Close() error { return r.db.Close() }

// Load reads the ledger. A database that was never saved is reported as
// missing, with an error wrapping fs.ErrNotExist.
func (r *Repository) Load(ctx context.Context) (ledger.Catalog, []ledger.Transaction, error) {
	var saved string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM ledger_meta WHERE key = ?", savedKey).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("ledger database %q is empty: %w", r.path, fs.ErrNotExist)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read ledger database %q: %w", r.path, err)
	}

	instruments, err := r.loadInstruments(ctx)
	if err != nil {
		return nil, nil, err
	}
	transactions, err := r.loadTransactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return instruments, transactions, nil
}

func (r *Repository) loadInstruments(ctx context.Context) (ledger.Catalog, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, kind, symbol, expiry, strike, call_put, multiplier FROM instruments")
	if err != nil {
		return nil, fmt.Errorf("cannot query instruments: %w", err)
	}
	defer rows.Close()

	instruments := ledger.NewCatalog()
	for rows.Next() {
		var id, kind, symbol string
		var expiry, strike, callPut sql.NullString
		var multiplier sql.NullInt64
		if err := rows.Scan(&id, &kind, &symbol, &expiry, &strike, &callPut, &multiplier); err != nil {
			return nil, fmt.Errorf("cannot scan instrument: %w", err)
		}
		inst, err := instrument(id, kind, symbol, expiry.String, strike.String, callPut.String, int(multiplier.Int64))
		if err != nil {
			return nil, fmt.Errorf("invalid instrument %s: %w", id, err)
		}
		instruments.Add(inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read instruments: %w", err)
	}
	return instruments, nil
}

func instrument(sid, skind, symbol, sexpiry, sstrike, scallPut string, multiplier int) (ledger.Instrument, error) {
	id, err := ledger.ParseID(sid)
	if err != nil {
		return nil, err
	}
	kind, err := ledger.ParseKind(skind)
	if err != nil {
		return nil, err
	}
	if kind == ledger.KindEquity {
		return ledger.NewEquity(id, symbol), nil
	}
	expiry, err := date.Parse(sexpiry)
	if err != nil {
		return nil, err
	}
	strike, err := ledger.ParseMoney(sstrike)
	if err != nil {
		return nil, err
	}
	callPut, err := ledger.ParseCallPut(scallPut)
	if err != nil {
		return nil, err
	}
	return ledger.NewOption(id, symbol, expiry, strike, callPut, multiplier), nil
}

func (r *Repository) loadTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, instrument_id, timestamp, action, quantity, price, fees,
		notes, tags, link_group_id, consumed_by_assignment FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("cannot query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var row transactionRow
		if err := rows.Scan(&row.id, &row.instrumentID, &row.timestamp, &row.action, &row.quantity, &row.price, &row.fees,
			&row.notes, &row.tags, &row.linkGroupID, &row.consumedByAssignment); err != nil {
			return nil, fmt.Errorf("cannot scan transaction: %w", err)
		}
		tx, err := row.transaction()
		if err != nil {
			return nil, fmt.Errorf("invalid transaction %s: %w", row.id, err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read transactions: %w", err)
	}
	return transactions, nil
}

type transactionRow struct {
	id, instrumentID, timestamp, action string
	quantity, price, fees               string
	notes, tags                         string
	linkGroupID                         sql.NullString
	consumedByAssignment                bool
}

func (row transactionRow) transaction() (tx ledger.Transaction, err error) {
	if tx.ID, err = ledger.ParseID(row.id); err != nil {
		return tx, err
	}
	if tx.InstrumentID, err = ledger.ParseID(row.instrumentID); err != nil {
		return tx, err
	}
	if tx.Timestamp, err = time.Parse(time.RFC3339Nano, row.timestamp); err != nil {
		return tx, err
	}
	if tx.Action, err = ledger.ParseAction(row.action); err != nil {
		return tx, err
	}
	if tx.Quantity, err = ledger.ParseQuantity(row.quantity); err != nil {
		return tx, err
	}
	if tx.Price, err = ledger.ParseMoney(row.price); err != nil {
		return tx, err
	}
	if tx.Fees, err = ledger.ParseMoney(row.fees); err != nil {
		return tx, err
	}
	tx.Notes = row.notes
	if err = json.Unmarshal([]byte(row.tags), &tx.Tags); err != nil {
		return tx, fmt.Errorf("invalid tags: %w", err)
	}
	if row.linkGroupID.Valid {
		if tx.LinkGroupID, err = ledger.ParseID(row.linkGroupID.String); err != nil {
			return tx, err
		}
	}
	tx.ConsumedByAssignment = row.consumedByAssignment
	return tx, nil
}

// Save replaces the content of the database in a single SQL transaction.
func (r *Repository) Save(ctx context.Context, instruments ledger.Catalog, transactions []ledger.Transaction) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{"DELETE FROM transactions", "DELETE FROM instruments"} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("cannot clear ledger: %w", err)
			}
		}
		if err := saveInstruments(ctx, tx, instruments); err != nil {
			return err
		}
		if err := saveTransactions(ctx, tx, transactions); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO ledger_meta (key, value) VALUES (?, ?)",
			savedKey, time.Now().UTC().Format(time.RFC3339))
		return err
	})
}

func saveInstruments(ctx context.Context, tx *sql.Tx, instruments ledger.Catalog) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO instruments (id, kind, symbol, expiry, strike, call_put, multiplier)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for inst := range instruments.All() {
		var expiry, strike, callPut sql.NullString
		var multiplier sql.NullInt64
		if o, ok := inst.(ledger.Option); ok {
			expiry = sql.NullString{String: o.Expiry().String(), Valid: true}
			strike = sql.NullString{String: o.Strike().String(), Valid: true}
			callPut = sql.NullString{String: string(o.CallPut()), Valid: true}
			multiplier = sql.NullInt64{Int64: int64(o.Multiplier()), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, inst.ID().String(), string(inst.Kind()), inst.Underlying(), expiry, strike, callPut, multiplier); err != nil {
			return fmt.Errorf("cannot save instrument %s: %w", inst, err)
		}
	}
	return nil
}

func saveTransactions(ctx context.Context, tx *sql.Tx, transactions []ledger.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (id, instrument_id, timestamp, action, quantity, price, fees,
		notes, tags, link_group_id, consumed_by_assignment) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range transactions {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		jtags, err := json.Marshal(tags)
		if err != nil {
			return err
		}
		var link sql.NullString
		if t.IsLinked() {
			link = sql.NullString{String: t.LinkGroupID.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.ID.String(), t.InstrumentID.String(), t.Timestamp.UTC().Format(time.RFC3339Nano),
			t.Action.String(), t.Quantity.String(), t.Price.String(), t.Fees.String(),
			t.Notes, string(jtags), link, t.ConsumedByAssignment); err != nil {
			return fmt.Errorf("cannot save transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committed if fn succeeds and rolled
// back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit transaction: %w", err)
	}
	return nil
}
