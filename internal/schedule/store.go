package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"airwave/internal/database"
)

// ErrNotFound is returned when a schedule does not exist.
var ErrNotFound = errors.New("schedule not found")

// Store handles database operations for schedule definitions.
type Store struct {
	db *database.DB
}

// NewStore creates a new schedule store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// CreateRecurring inserts a new recurring schedule and assigns its id.
func (s *Store) CreateRecurring(ctx context.Context, sched *RecurringSchedule) error {
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO recurring_schedules
			(minute, hour, day_of_month, month, day_of_week,
			 title, feed, station_id, station_name, start_time, end_time, folder_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		sched.Recurrence.Minute,
		sched.Recurrence.Hour,
		sched.Recurrence.DayOfMonth,
		sched.Recurrence.Month,
		sched.Recurrence.DayOfWeek,
		sched.Command.Title,
		sched.Command.Feed,
		sched.Command.StationID,
		sched.Command.StationName,
		sched.Command.Start,
		sched.Command.End,
		folderArg(sched.Command.FolderID),
		sched.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting recurring schedule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading recurring schedule id: %w", err)
	}
	sched.ID = id

	return nil
}

// DeleteRecurring removes a recurring schedule by id.
func (s *Store) DeleteRecurring(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM recurring_schedules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting recurring schedule: %w", err)
	}
	return nil
}

// GetRecurring retrieves a recurring schedule by id.
func (s *Store) GetRecurring(ctx context.Context, id int64) (*RecurringSchedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, minute, hour, day_of_month, month, day_of_week,
		       title, feed, station_id, station_name, start_time, end_time, folder_id, created_at
		FROM recurring_schedules
		WHERE id = ?
	`, id)

	sched, err := scanRecurring(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting recurring schedule: %w", err)
	}
	return sched, nil
}

// ListRecurring retrieves all recurring schedules.
func (s *Store) ListRecurring(ctx context.Context) ([]*RecurringSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, minute, hour, day_of_month, month, day_of_week,
		       title, feed, station_id, station_name, start_time, end_time, folder_id, created_at
		FROM recurring_schedules
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying recurring schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*RecurringSchedule
	for rows.Next() {
		sched, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring schedule row: %w", err)
		}
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recurring schedule rows: %w", err)
	}

	return schedules, nil
}

// CreateOneTime inserts a new one-time schedule and assigns its id.
func (s *Store) CreateOneTime(ctx context.Context, sched *OneTimeSchedule) error {
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO onetime_schedules
			(fire_at, title, feed, station_id, station_name, start_time, end_time, folder_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		sched.FireAt.UTC().Format(time.RFC3339),
		sched.Command.Title,
		sched.Command.Feed,
		sched.Command.StationID,
		sched.Command.StationName,
		sched.Command.Start,
		sched.Command.End,
		folderArg(sched.Command.FolderID),
		sched.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting one-time schedule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading one-time schedule id: %w", err)
	}
	sched.ID = id

	return nil
}

// DeleteOneTime removes a one-time schedule by id.
func (s *Store) DeleteOneTime(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM onetime_schedules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting one-time schedule: %w", err)
	}
	return nil
}

// GetOneTime retrieves a one-time schedule by id.
func (s *Store) GetOneTime(ctx context.Context, id int64) (*OneTimeSchedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fire_at, title, feed, station_id, station_name, start_time, end_time, folder_id, created_at
		FROM onetime_schedules
		WHERE id = ?
	`, id)

	sched, err := scanOneTime(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting one-time schedule: %w", err)
	}
	return sched, nil
}

// ListOneTime retrieves all one-time schedules ordered by fire time.
func (s *Store) ListOneTime(ctx context.Context) ([]*OneTimeSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fire_at, title, feed, station_id, station_name, start_time, end_time, folder_id, created_at
		FROM onetime_schedules
		ORDER BY fire_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying one-time schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*OneTimeSchedule
	for rows.Next() {
		sched, err := scanOneTime(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning one-time schedule row: %w", err)
		}
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating one-time schedule rows: %w", err)
	}

	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurring(row rowScanner) (*RecurringSchedule, error) {
	var sched RecurringSchedule
	var stationName sql.NullString
	var folderID sql.NullInt64
	var createdAt string

	err := row.Scan(
		&sched.ID,
		&sched.Recurrence.Minute,
		&sched.Recurrence.Hour,
		&sched.Recurrence.DayOfMonth,
		&sched.Recurrence.Month,
		&sched.Recurrence.DayOfWeek,
		&sched.Command.Title,
		&sched.Command.Feed,
		&sched.Command.StationID,
		&stationName,
		&sched.Command.Start,
		&sched.Command.End,
		&folderID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	sched.Command.StationName = stationName.String
	if folderID.Valid {
		sched.Command.FolderID = &folderID.Int64
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	sched.CreatedAt = t

	return &sched, nil
}

func scanOneTime(row rowScanner) (*OneTimeSchedule, error) {
	var sched OneTimeSchedule
	var stationName sql.NullString
	var folderID sql.NullInt64
	var fireAt, createdAt string

	err := row.Scan(
		&sched.ID,
		&fireAt,
		&sched.Command.Title,
		&sched.Command.Feed,
		&sched.Command.StationID,
		&stationName,
		&sched.Command.Start,
		&sched.Command.End,
		&folderID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	sched.Command.StationName = stationName.String
	if folderID.Valid {
		sched.Command.FolderID = &folderID.Int64
	}

	t, err := time.Parse(time.RFC3339, fireAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fire_at: %w", err)
	}
	sched.FireAt = t

	t, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	sched.CreatedAt = t

	return &sched, nil
}

func folderArg(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
