package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := Run(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	for _, table := range []string{"recurring_schedules", "onetime_schedules", "programs", "recorded_files", "recording_runs"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := Run(ctx, db); err != nil {
		t.Fatalf("Failed first run: %v", err)
	}
	if err := Run(ctx, db); err != nil {
		t.Fatalf("Failed second run: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _airwave_versions`).Scan(&count); err != nil {
		t.Fatalf("Failed to count versions: %v", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("Expected %d applied migrations, got %d", len(migrations), count)
	}
}

func TestLoadMigrations_Ordered(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("Failed to load migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("Expected embedded migrations")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].id <= migrations[i-1].id {
			t.Errorf("Expected ascending order, got %s before %s",
				migrations[i-1].id, migrations[i].id)
		}
	}
}
