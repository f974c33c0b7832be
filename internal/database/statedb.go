package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/comet/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "comet.db"

// StateDB provides SQLite-based storage for the proxy flag and toggle history.
type StateDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures StateDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so `comet status` can read while
	// `comet serve` writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a StateDB in the given directory.
func Open(dataDir string, opts Options) (*StateDB, error) {
	dbPath := filepath.Join(dataDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StateDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *StateDB) Close() error {
	return sdb.db.Close()
}

// Path returns the path of the database file.
func (sdb *StateDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *StateDB) createTables() error {
	schema := `
	-- Key-value settings; proxyEnabled lives here
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Toggle history
	CREATE TABLE IF NOT EXISTS toggle_events (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		action TEXT NOT NULL,
		proxy_enabled INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON toggle_events(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ProxyEnabled returns the persisted flag. A missing row means false.
func (sdb *StateDB) ProxyEnabled(ctx context.Context) (bool, error) {
	var value string
	err := sdb.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, model.ProxyStateKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", model.ProxyStateKey, err)
	}

	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrCorruptValue, model.ProxyStateKey, value)
	}
	return enabled, nil
}

// SetProxyEnabled persists the flag in a single statement.
func (sdb *StateDB) SetProxyEnabled(ctx context.Context, enabled bool) error {
	query := `
	INSERT INTO settings (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	_, err := sdb.db.ExecContext(ctx, query,
		model.ProxyStateKey,
		strconv.FormatBool(enabled),
		formatTimestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", model.ProxyStateKey, err)
	}
	return nil
}

// RecordEvent appends a toggle event to the history.
func (sdb *StateDB) RecordEvent(ctx context.Context, event model.ToggleEvent) error {
	query := `
	INSERT INTO toggle_events (id, source, action, proxy_enabled, error, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := sdb.db.ExecContext(ctx, query,
		event.ID,
		string(event.Source),
		string(event.Action),
		boolToInt(event.ProxyEnabled),
		event.Error,
		formatTimestamp(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert toggle event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent events, newest first.
// A limit of zero or less returns every event.
func (sdb *StateDB) ListEvents(ctx context.Context, limit int) ([]model.ToggleEvent, error) {
	query := `
	SELECT id, source, action, proxy_enabled, error, timestamp
	FROM toggle_events
	ORDER BY timestamp DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query toggle events: %w", err)
	}
	defer rows.Close()

	var events []model.ToggleEvent
	for rows.Next() {
		var (
			e         model.ToggleEvent
			source    string
			action    string
			enabled   int
			timestamp string
		)
		if err := rows.Scan(&e.ID, &source, &action, &enabled, &e.Error, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan toggle event: %w", err)
		}
		e.Source = model.EventSource(source)
		e.Action = model.Action(action)
		e.ProxyEnabled = enabled != 0
		e.Timestamp = parseTimestamp(timestamp)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate toggle events: %w", err)
	}
	return events, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatTimestamp stores times in UTC so lexical order matches time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampLayout is fixed width so that string comparison in ORDER BY works.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats lists the formats accepted when reading timestamps back.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
