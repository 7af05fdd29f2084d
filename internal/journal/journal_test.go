package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"airwave/internal/config"
	"airwave/internal/database"
	"airwave/internal/schedule"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := &config.DatabaseConfig{
		Path:         dbPath,
		WALMode:      true,
		ForeignKeys:  true,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestStore_BeginAndGet(t *testing.T) {
	store := NewStore(testDB(t))
	ctx := context.Background()

	run := &Run{
		ScheduleKind: schedule.KindRecurring,
		ScheduleID:   3,
		Title:        "Morning Show",
		StationID:    "TBS",
	}
	if err := store.Begin(ctx, run); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected assigned run id")
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Status != StatusRunning {
		t.Errorf("Expected running, got %s", got.Status)
	}
	if got.ScheduleKind != schedule.KindRecurring || got.ScheduleID != 3 {
		t.Errorf("Expected schedule reference preserved, got %s:%d", got.ScheduleKind, got.ScheduleID)
	}
	if got.SettledAt != nil {
		t.Error("Expected unsettled run")
	}
}

func TestStore_Settle(t *testing.T) {
	store := NewStore(testDB(t))
	ctx := context.Background()

	run := &Run{ScheduleKind: schedule.KindOneTime, ScheduleID: 1, Title: "t", StationID: "s"}
	if err := store.Begin(ctx, run); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}

	err := store.Settle(ctx, run.ID, StatusCompleted, 0, "all good\n", "feed/t(2026.09.01).mp3")
	if err != nil {
		t.Fatalf("Failed to settle run: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("Expected completed, got %s", got.Status)
	}
	if got.ArtifactPath != "feed/t(2026.09.01).mp3" {
		t.Errorf("Expected artifact path recorded, got %q", got.ArtifactPath)
	}
	if got.OutputTail != "all good\n" {
		t.Errorf("Expected output tail recorded, got %q", got.OutputTail)
	}
	if got.SettledAt == nil {
		t.Error("Expected settled_at to be set")
	}
}

func TestStore_Settle_TruncatesOutput(t *testing.T) {
	store := NewStore(testDB(t))
	ctx := context.Background()

	run := &Run{ScheduleKind: schedule.KindRecurring, ScheduleID: 1, Title: "t", StationID: "s"}
	if err := store.Begin(ctx, run); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}

	long := strings.Repeat("x", tailLimit+500) + "END"
	if err := store.Settle(ctx, run.ID, StatusFailed, 1, long, ""); err != nil {
		t.Fatalf("Failed to settle run: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if len(got.OutputTail) != tailLimit {
		t.Errorf("Expected tail of %d bytes, got %d", tailLimit, len(got.OutputTail))
	}
	if !strings.HasSuffix(got.OutputTail, "END") {
		t.Error("Expected the end of the output to be kept")
	}
}

func TestStore_AbandonRunning(t *testing.T) {
	store := NewStore(testDB(t))
	ctx := context.Background()

	running := &Run{ScheduleKind: schedule.KindRecurring, ScheduleID: 1, Title: "a", StationID: "s"}
	if err := store.Begin(ctx, running); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}

	settled := &Run{ScheduleKind: schedule.KindRecurring, ScheduleID: 2, Title: "b", StationID: "s"}
	if err := store.Begin(ctx, settled); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}
	if err := store.Settle(ctx, settled.ID, StatusCompleted, 0, "", ""); err != nil {
		t.Fatalf("Failed to settle run: %v", err)
	}

	abandoned, err := store.AbandonRunning(ctx)
	if err != nil {
		t.Fatalf("Failed to abandon running: %v", err)
	}
	if len(abandoned) != 1 {
		t.Fatalf("Expected 1 abandoned run, got %d", len(abandoned))
	}
	if abandoned[0].ID != running.ID {
		t.Errorf("Expected run %s abandoned, got %s", running.ID, abandoned[0].ID)
	}

	got, err := store.Get(ctx, running.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Status != StatusAbandoned {
		t.Errorf("Expected abandoned, got %s", got.Status)
	}

	// Idempotent: nothing left to abandon.
	again, err := store.AbandonRunning(ctx)
	if err != nil {
		t.Fatalf("Failed second abandon: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Expected no runs on second abandon, got %d", len(again))
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	store := NewStore(testDB(t))
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 3; i++ {
		run := &Run{
			ScheduleKind: schedule.KindRecurring,
			ScheduleID:   int64(i),
			Title:        "t",
			StationID:    "s",
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Begin(ctx, run); err != nil {
			t.Fatalf("Failed to begin run: %v", err)
		}
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Error("Expected newest-first ordering")
		}
	}
}

func TestTail(t *testing.T) {
	if got := Tail("short"); got != "short" {
		t.Errorf("Expected short output unchanged, got %q", got)
	}
	long := strings.Repeat("a", tailLimit*2)
	if got := Tail(long); len(got) != tailLimit {
		t.Errorf("Expected %d bytes, got %d", tailLimit, len(got))
	}
}
