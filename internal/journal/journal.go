// Package journal records one row per recorder execution, from launch to
// settlement. A row still marked running after a restart is the trace of a
// monitor the previous process never finished; recovery surfaces it instead
// of losing the run silently.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"airwave/internal/database"
	"airwave/internal/schedule"
)

// Status is the lifecycle state of one recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	// StatusAbandoned marks a run whose monitor did not survive a restart.
	StatusAbandoned Status = "abandoned"
)

// Run is one journal row.
type Run struct {
	ID           string
	ScheduleKind schedule.Kind
	ScheduleID   int64
	Title        string
	StationID    string
	Status       Status
	ExitCode     int
	OutputTail   string
	ArtifactPath string
	StartedAt    time.Time
	SettledAt    *time.Time
}

// tailLimit caps how much recorder output is kept per run.
const tailLimit = 4096

// Tail returns the last tailLimit bytes of output.
func Tail(output string) string {
	if len(output) <= tailLimit {
		return output
	}
	return output[len(output)-tailLimit:]
}

// Store handles database operations for the run journal.
type Store struct {
	db *database.DB
}

// NewStore creates a new journal store.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Begin writes a running row for a freshly launched execution and assigns
// the run id.
func (s *Store) Begin(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recording_runs
			(id, schedule_kind, schedule_id, title, station_id, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		string(run.ScheduleKind),
		run.ScheduleID,
		run.Title,
		run.StationID,
		string(run.Status),
		run.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting journal run: %w", err)
	}

	return nil
}

// Settle records the terminal state of a run.
func (s *Store) Settle(ctx context.Context, id string, status Status, exitCode int, outputTail, artifactPath string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE recording_runs
		SET status = ?, exit_code = ?, output_tail = ?, artifact_path = ?, settled_at = ?
		WHERE id = ?
	`,
		string(status),
		exitCode,
		Tail(outputTail),
		artifactPath,
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("settling journal run: %w", err)
	}
	return nil
}

// AbandonRunning marks every still-running row as abandoned and returns
// them. Called once during startup recovery; any row it touches belonged to
// a previous process.
func (s *Store) AbandonRunning(ctx context.Context) ([]*Run, error) {
	runs, err := s.listByStatus(ctx, StatusRunning)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, run := range runs {
		if _, err := s.db.ExecContext(ctx, `
			UPDATE recording_runs SET status = ?, settled_at = ? WHERE id = ?
		`, string(StatusAbandoned), now, run.ID); err != nil {
			return nil, fmt.Errorf("abandoning journal run %s: %w", run.ID, err)
		}
		run.Status = StatusAbandoned
	}

	return runs, nil
}

// Get retrieves one run by id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)
	return scanRun(row)
}

// List retrieves runs newest-first.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *Store) listByStatus(ctx context.Context, status Status) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRun+` WHERE status = ? ORDER BY started_at ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying journal runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

const selectRun = `
	SELECT id, schedule_kind, schedule_id, title, station_id, status,
	       exit_code, output_tail, artifact_path, started_at, settled_at
	FROM recording_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var kind, status string
	var exitCode sql.NullInt64
	var outputTail, artifactPath sql.NullString
	var startedAt string
	var settledAt sql.NullString

	err := row.Scan(
		&run.ID,
		&kind,
		&run.ScheduleID,
		&run.Title,
		&run.StationID,
		&status,
		&exitCode,
		&outputTail,
		&artifactPath,
		&startedAt,
		&settledAt,
	)
	if err != nil {
		return nil, err
	}

	run.ScheduleKind = schedule.Kind(kind)
	run.Status = Status(status)
	run.ExitCode = int(exitCode.Int64)
	run.OutputTail = outputTail.String
	run.ArtifactPath = artifactPath.String

	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	run.StartedAt = t

	if settledAt.Valid {
		t, err := time.Parse(time.RFC3339, settledAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing settled_at: %w", err)
		}
		run.SettledAt = &t
	}

	return &run, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal rows: %w", err)
	}
	return runs, nil
}
