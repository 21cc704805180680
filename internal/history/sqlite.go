package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	idPrefix = "cfg-"

	// timeLayout is fixed-width so loaded_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

const selectColumns = `
	SELECT id, node_name, cluster_name, config_version, source_path, checksum,
		log_facility, log_priority, loaded_at
	FROM config_history`

// SQLiteRepository implements Repository over the config_history table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record inserts entry.
func (r *SQLiteRepository) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = idPrefix + uuid.NewString()
	}
	if entry.LoadedAt.IsZero() {
		entry.LoadedAt = r.now()
	}
	entry.LoadedAt = entry.LoadedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config_history (
			id, node_name, cluster_name, config_version, source_path, checksum,
			log_facility, log_priority, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.NodeName,
		entry.ClusterName,
		entry.ConfigVersion,
		entry.SourcePath,
		entry.Checksum,
		nullableString(entry.LogFacility),
		nullableString(entry.LogPriority),
		entry.LoadedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting config history: %w", err)
	}
	return nil
}

// GetByID retrieves one entry.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying config history: %w", err)
	}
	return entry, nil
}

// Latest returns the newest entry.
func (r *SQLiteRepository) Latest(ctx context.Context) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` ORDER BY loaded_at DESC, rowid DESC LIMIT 1`)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest config history: %w", err)
	}
	return entry, nil
}

// List returns entries newest first. limit is clamped to [1, 500] with
// non-positive values meaning the default of 50.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY loaded_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying config history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning config history: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating config history: %w", err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*Entry, error) {
	var (
		e                  Entry
		facility, priority sql.NullString
		loadedAt           string
	)
	if err := s.Scan(
		&e.ID, &e.NodeName, &e.ClusterName, &e.ConfigVersion, &e.SourcePath, &e.Checksum,
		&facility, &priority, &loadedAt,
	); err != nil {
		return nil, err
	}

	e.LogFacility = facility.String
	e.LogPriority = priority.String

	t, err := time.Parse(timeLayout, loadedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing loaded_at %q: %w", loadedAt, err)
	}
	e.LoadedAt = t
	return &e, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
