package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one row per save slot in a SQLite database
type SQLiteStore struct {
	conn *sqlx.DB
}

type slotRow struct {
	Slot     string `db:"slot"`
	Blob     string `db:"blob"`
	Checksum string `db:"checksum"`
	Session  string `db:"session"`
	Tick     int64  `db:"tick"`
	SavedAt  int64  `db:"saved_at"` // unix milliseconds
}

// OpenSQLite opens or creates a save database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// saves are serialized through one connection
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS save_slots (
		slot TEXT PRIMARY KEY,
		blob TEXT NOT NULL,
		checksum TEXT NOT NULL,
		session TEXT NOT NULL,
		tick INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Save writes a record, replacing whatever the slot held
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	row := slotRow{
		Slot:     rec.Slot,
		Blob:     string(rec.Blob),
		Checksum: rec.Checksum,
		Session:  rec.Session,
		Tick:     int64(rec.Tick),
		SavedAt:  rec.SavedAt.UnixMilli(),
	}
	_, err := s.conn.NamedExecContext(ctx,
		`INSERT OR REPLACE INTO save_slots (slot, blob, checksum, session, tick, saved_at)
		 VALUES (:slot, :blob, :checksum, :session, :tick, :saved_at)`,
		row,
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", rec.Slot, err)
	}
	return nil
}

// Load reads a slot, returning ErrNoSave when it is empty
func (s *SQLiteStore) Load(ctx context.Context, slot string) (Record, error) {
	var row slotRow
	err := s.conn.GetContext(ctx, &row,
		"SELECT slot, blob, checksum, session, tick, saved_at FROM save_slots WHERE slot = ?", slot)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoSave
	}
	if err != nil {
		return Record{}, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return Record{
		Slot:     row.Slot,
		Blob:     []byte(row.Blob),
		Checksum: row.Checksum,
		Session:  row.Session,
		Tick:     uint64(row.Tick),
		SavedAt:  time.UnixMilli(row.SavedAt).UTC(),
	}, nil
}

// Delete removes a slot
func (s *SQLiteStore) Delete(ctx context.Context, slot string) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM save_slots WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoSave
	}
	return nil
}

// Slots lists the slots that hold a save
func (s *SQLiteStore) Slots(ctx context.Context) ([]string, error) {
	var slots []string
	if err := s.conn.SelectContext(ctx, &slots, "SELECT slot FROM save_slots ORDER BY slot"); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
