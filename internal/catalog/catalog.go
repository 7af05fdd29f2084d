// Package catalog is the durable record of produced artifacts. Entries are
// keyed by file path; registration is an idempotent upsert.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"airwave/internal/database"
)

// ErrNotFound is returned when no entry exists for a path.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one cataloged artifact.
type Entry struct {
	ID            int64
	FilePath      string // relative to the recorder output dir; unique key
	FileName      string
	ProgramID     *int64 // optional program-listing cross-reference
	ProgramTitle  string
	StationID     string
	StationName   string
	BroadcastDate string
	StartTime     string
	EndTime       string
	FileSize      int64
	FileModified  time.Time
	FolderID      *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store handles database operations for the catalog.
type Store struct {
	db *database.DB
}

// NewStore creates a new catalog store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts an entry or, if its path already exists, updates every
// provided field in place. A single statement, atomic with respect to
// concurrent registrations for the same path.
func (s *Store) Upsert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO recorded_files
			(file_path, file_name, program_id, program_title, station_id, station_name,
			 broadcast_date, start_time, end_time, file_size, file_modified, folder_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(file_path) DO UPDATE SET
			file_name = excluded.file_name,
			program_id = excluded.program_id,
			program_title = excluded.program_title,
			station_id = excluded.station_id,
			station_name = excluded.station_name,
			broadcast_date = excluded.broadcast_date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			file_size = excluded.file_size,
			file_modified = excluded.file_modified,
			folder_id = excluded.folder_id,
			updated_at = datetime('now')
	`

	var programID, folderID any
	if entry.ProgramID != nil {
		programID = *entry.ProgramID
	}
	if entry.FolderID != nil {
		folderID = *entry.FolderID
	}

	var modified any
	if !entry.FileModified.IsZero() {
		modified = entry.FileModified.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.FilePath,
		entry.FileName,
		programID,
		entry.ProgramTitle,
		entry.StationID,
		entry.StationName,
		entry.BroadcastDate,
		entry.StartTime,
		entry.EndTime,
		entry.FileSize,
		modified,
		folderID,
	)
	if err != nil {
		return fmt.Errorf("upserting catalog entry: %w", err)
	}

	return nil
}

// Delete removes the entry for path, whether or not the underlying file
// still exists.
func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recorded_files WHERE file_path = ?`, path); err != nil {
		return fmt.Errorf("deleting catalog entry: %w", err)
	}
	return nil
}

// Get retrieves the entry for path.
func (s *Store) Get(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+` WHERE file_path = ?`, path)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting catalog entry: %w", err)
	}
	return entry, nil
}

// List retrieves entries newest-first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx,
		selectEntry+` ORDER BY file_modified DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}

	return entries, nil
}

// Paths returns every cataloged file path. Used by the reconciliation sweep.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM recorded_files`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning catalog path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ResolveListing looks up a program-listing id by station and start time.
// Finding nothing is not an error; the result is simply nil.
func (s *Store) ResolveListing(ctx context.Context, stationID, startTime string) (*int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM programs
		WHERE station_id = ? AND start_time = ?
		LIMIT 1
	`, stationID, startTime)

	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving program listing: %w", err)
	}
	return &id, nil
}

const selectEntry = `
	SELECT id, file_path, file_name, program_id, program_title, station_id, station_name,
	       broadcast_date, start_time, end_time, file_size, file_modified, folder_id,
	       created_at, updated_at
	FROM recorded_files`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var programID, folderID sql.NullInt64
	var programTitle, stationID, stationName, broadcastDate, startTime, endTime sql.NullString
	var fileSize sql.NullInt64
	var fileModified sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&entry.ID,
		&entry.FilePath,
		&entry.FileName,
		&programID,
		&programTitle,
		&stationID,
		&stationName,
		&broadcastDate,
		&startTime,
		&endTime,
		&fileSize,
		&fileModified,
		&folderID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if programID.Valid {
		entry.ProgramID = &programID.Int64
	}
	if folderID.Valid {
		entry.FolderID = &folderID.Int64
	}
	entry.ProgramTitle = programTitle.String
	entry.StationID = stationID.String
	entry.StationName = stationName.String
	entry.BroadcastDate = broadcastDate.String
	entry.StartTime = startTime.String
	entry.EndTime = endTime.String
	entry.FileSize = fileSize.Int64

	if fileModified.Valid {
		if t, err := time.Parse(time.RFC3339, fileModified.String); err == nil {
			entry.FileModified = t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entry.CreatedAt = t
	} else if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		entry.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		entry.UpdatedAt = t
	} else if t, err := time.Parse("2006-01-02 15:04:05", updatedAt); err == nil {
		entry.UpdatedAt = t
	}

	return &entry, nil
}
