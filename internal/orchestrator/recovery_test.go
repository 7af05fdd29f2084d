package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"airwave/internal/journal"
	"airwave/internal/schedule"
)

func TestRecover_RearmsStoredSchedules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, _ := schedule.ParseRecurrence("0", "13", "*", "*", "1")
	recurring := &schedule.RecurringSchedule{Recurrence: rec, Command: testCommand()}
	if err := env.schedules.CreateRecurring(ctx, recurring); err != nil {
		t.Fatalf("Failed to create recurring schedule: %v", err)
	}

	future := &schedule.OneTimeSchedule{
		FireAt:  time.Now().UTC().Add(time.Hour),
		Command: testCommand(),
	}
	if err := env.schedules.CreateOneTime(ctx, future); err != nil {
		t.Fatalf("Failed to create one-time schedule: %v", err)
	}

	if err := env.svc.Recover(ctx); err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	jobs := env.svc.ArmedJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 armed triggers, got %v", jobs)
	}
	wantIDs := map[string]bool{recurring.JobID(): true, future.JobID(): true}
	for _, id := range jobs {
		if !wantIDs[id] {
			t.Errorf("Unexpected armed trigger %q", id)
		}
	}
}

func TestRecover_DiscardsPastDueOneTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	past := &schedule.OneTimeSchedule{
		FireAt:  time.Now().UTC().Add(-time.Hour),
		Command: testCommand(),
	}
	if err := env.schedules.CreateOneTime(ctx, past); err != nil {
		t.Fatalf("Failed to create one-time schedule: %v", err)
	}

	if err := env.svc.Recover(ctx); err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	if jobs := env.svc.ArmedJobs(); len(jobs) != 0 {
		t.Errorf("Expected past-due schedule not armed, got %v", jobs)
	}
	if _, err := env.schedules.GetOneTime(ctx, past.ID); !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("Expected past-due schedule deleted, got %v", err)
	}
	// The past-due schedule never fired.
	if calls := env.exec.callArgs(); len(calls) != 0 {
		t.Errorf("Expected no recorder invocation, got %d", len(calls))
	}
}

func TestRecover_AbandonsStaleRuns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale := &journal.Run{
		ScheduleKind: schedule.KindRecurring,
		ScheduleID:   1,
		Title:        "Morning Show",
		StationID:    "TBS",
	}
	if err := env.journal.Begin(ctx, stale); err != nil {
		t.Fatalf("Failed to begin run: %v", err)
	}

	if err := env.svc.Recover(ctx); err != nil {
		t.Fatalf("Recover failed: %v", err)
	}

	got, err := env.journal.Get(ctx, stale.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Status != journal.StatusAbandoned {
		t.Errorf("Expected stale run abandoned, got %s", got.Status)
	}
}

func TestRecover_Rerunnable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, _ := schedule.ParseRecurrence("0", "13", "*", "*", "*")
	recurring := &schedule.RecurringSchedule{Recurrence: rec, Command: testCommand()}
	if err := env.schedules.CreateRecurring(ctx, recurring); err != nil {
		t.Fatalf("Failed to create recurring schedule: %v", err)
	}

	if err := env.svc.Recover(ctx); err != nil {
		t.Fatalf("First recover failed: %v", err)
	}
	if err := env.svc.Recover(ctx); err != nil {
		t.Fatalf("Second recover failed: %v", err)
	}

	// Registration replaces; re-running recovery must not double-arm.
	if jobs := env.svc.ArmedJobs(); len(jobs) != 1 {
		t.Errorf("Expected single armed trigger after re-recovery, got %v", jobs)
	}
}
