// Package orchestrator ties the schedule store, trigger scheduler, execution
// runner and catalog together: it owns schedule lifecycle, fires recordings,
// and supervises the completion monitors that outlive any caller.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"airwave/internal/catalog"
	"airwave/internal/journal"
	"airwave/internal/metrics"
	"airwave/internal/runner"
	"airwave/internal/schedule"
	"airwave/internal/trigger"
)

// ErrPastFireTime is returned when a one-time schedule is created with a
// fire time that has already passed.
var ErrPastFireTime = errors.New("fire time is in the past")

// Service is the scheduled-recording orchestrator.
type Service struct {
	schedules *schedule.Store
	catalog   *catalog.Store
	journal   *journal.Store
	triggers  *trigger.Scheduler
	runner    *runner.Runner
	outputDir string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // in-flight completion monitors
}

// New creates the orchestrator. The trigger scheduler is injected with an
// explicit lifecycle; nothing here is package-global state.
func New(schedules *schedule.Store, cat *catalog.Store, jrnl *journal.Store, triggers *trigger.Scheduler, run *runner.Runner, outputDir string) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		schedules: schedules,
		catalog:   cat,
		journal:   jrnl,
		triggers:  triggers,
		runner:    run,
		outputDir: outputDir,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins trigger dispatch.
func (s *Service) Start() {
	s.triggers.Start()
	log.Info().Msg("Orchestrator started")
}

// Stop disarms all triggers, cancels in-flight executions and waits for
// their monitors to settle.
func (s *Service) Stop() {
	s.triggers.Stop()
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Orchestrator stopped")
}

// CreateRecurring validates, persists and arms a recurring schedule.
// Conversion failures reject the schedule before anything is persisted.
func (s *Service) CreateRecurring(ctx context.Context, rec schedule.Recurrence, cmd schedule.Command) (*schedule.RecurringSchedule, error) {
	// Re-run field validation so a hand-built Recurrence cannot bypass it.
	validated, err := schedule.ParseRecurrence(rec.Minute, rec.Hour, rec.DayOfMonth, rec.Month, rec.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence: %w", err)
	}

	sched := &schedule.RecurringSchedule{
		Recurrence: validated,
		Command:    cmd,
	}

	if err := s.schedules.CreateRecurring(ctx, sched); err != nil {
		return nil, err
	}

	if err := s.armRecurring(sched); err != nil {
		if delErr := s.schedules.DeleteRecurring(ctx, sched.ID); delErr != nil {
			log.Error().Err(delErr).Int64("id", sched.ID).Msg("Failed to roll back unarmable schedule")
		}
		return nil, err
	}

	log.Info().
		Int64("id", sched.ID).
		Str("title", cmd.Title).
		Str("recurrence", validated.String()).
		Msg("Recurring schedule created")

	s.updateArmedGauge()
	return sched, nil
}

// CreateOneTime validates, persists and arms a one-time schedule.
func (s *Service) CreateOneTime(ctx context.Context, fireAt time.Time, cmd schedule.Command) (*schedule.OneTimeSchedule, error) {
	if fireAt.Before(time.Now()) {
		return nil, ErrPastFireTime
	}

	sched := &schedule.OneTimeSchedule{
		FireAt:  fireAt,
		Command: cmd,
	}

	if err := s.schedules.CreateOneTime(ctx, sched); err != nil {
		return nil, err
	}

	s.armOneTime(sched)

	log.Info().
		Int64("id", sched.ID).
		Str("title", cmd.Title).
		Time("fire_at", fireAt).
		Msg("One-time schedule created")

	s.updateArmedGauge()
	return sched, nil
}

// DeleteRecurring removes a recurring schedule and disarms its trigger.
// Deregistration is best-effort; only the store delete can fail the call.
func (s *Service) DeleteRecurring(ctx context.Context, id int64) error {
	sched, err := s.schedules.GetRecurring(ctx, id)
	if err != nil {
		return err
	}

	if err := s.schedules.DeleteRecurring(ctx, id); err != nil {
		return err
	}

	s.triggers.Deregister(sched.JobID())
	s.updateArmedGauge()

	log.Info().Int64("id", id).Msg("Recurring schedule deleted")
	return nil
}

// DeleteOneTime removes a one-time schedule and disarms its trigger.
func (s *Service) DeleteOneTime(ctx context.Context, id int64) error {
	sched, err := s.schedules.GetOneTime(ctx, id)
	if err != nil {
		return err
	}

	if err := s.schedules.DeleteOneTime(ctx, id); err != nil {
		return err
	}

	s.triggers.Deregister(sched.JobID())
	s.updateArmedGauge()

	log.Info().Int64("id", id).Msg("One-time schedule deleted")
	return nil
}

// ArmedJobs returns the ids of all armed triggers. Diagnostics only.
func (s *Service) ArmedJobs() []string {
	return s.triggers.List()
}

// armRecurring registers the trigger for a recurring schedule. The persisted
// command is captured here so the trigger fires with it unmodified.
func (s *Service) armRecurring(sched *schedule.RecurringSchedule) error {
	cmd := sched.Command
	id := sched.ID
	return s.triggers.Register(sched.JobID(), sched.Recurrence.CronSpec(), func() {
		s.launch(schedule.KindRecurring, id, cmd)
	})
}

// armOneTime registers the one-shot trigger for a one-time schedule.
func (s *Service) armOneTime(sched *schedule.OneTimeSchedule) {
	cmd := sched.Command
	id := sched.ID
	s.triggers.RegisterAt(sched.JobID(), sched.FireAt, func() {
		s.launch(schedule.KindOneTime, id, cmd)
	})
}

func (s *Service) updateArmedGauge() {
	metrics.SetTriggersArmed(len(s.triggers.List()))
}
