package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Recover rebuilds the in-memory trigger state from the schedule store.
// Called once at startup, before Start; safe to run again (registration
// replaces, deleting an already-deleted row is a no-op), so a crash during
// recovery just restarts this same pass.
func (s *Service) Recover(ctx context.Context) error {
	if runs, err := s.journal.AbandonRunning(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to reconcile journal")
	} else {
		for _, run := range runs {
			log.Warn().
				Str("run_id", run.ID).
				Str("title", run.Title).
				Time("started_at", run.StartedAt).
				Msg("Run from previous process never settled; marked abandoned")
		}
	}

	if err := s.recoverRecurring(ctx); err != nil {
		return err
	}
	if err := s.recoverOneTime(ctx); err != nil {
		return err
	}

	s.updateArmedGauge()
	return nil
}

func (s *Service) recoverRecurring(ctx context.Context) error {
	schedules, err := s.schedules.ListRecurring(ctx)
	if err != nil {
		return fmt.Errorf("loading recurring schedules: %w", err)
	}

	armed := 0
	for _, sched := range schedules {
		// One bad row must not abort recovery of the others.
		if err := s.armRecurring(sched); err != nil {
			log.Error().
				Err(err).
				Int64("id", sched.ID).
				Str("title", sched.Command.Title).
				Msg("Failed to re-arm recurring schedule")
			continue
		}
		armed++
	}

	log.Info().
		Int("total", len(schedules)).
		Int("armed", armed).
		Msg("Recurring schedules recovered")

	return nil
}

func (s *Service) recoverOneTime(ctx context.Context) error {
	schedules, err := s.schedules.ListOneTime(ctx)
	if err != nil {
		return fmt.Errorf("loading one-time schedules: %w", err)
	}

	now := time.Now()
	armed, discarded := 0, 0
	for _, sched := range schedules {
		if sched.FireAt.Before(now) {
			// Its moment has passed; the broadcast cannot be recorded anymore.
			log.Warn().
				Int64("id", sched.ID).
				Str("title", sched.Command.Title).
				Time("fire_at", sched.FireAt).
				Msg("Discarding past-due one-time schedule")
			if err := s.schedules.DeleteOneTime(ctx, sched.ID); err != nil {
				log.Error().Err(err).Int64("id", sched.ID).Msg("Failed to delete past-due schedule")
				continue
			}
			discarded++
			continue
		}

		s.armOneTime(sched)
		armed++
	}

	log.Info().
		Int("total", len(schedules)).
		Int("armed", armed).
		Int("discarded", discarded).
		Msg("One-time schedules recovered")

	return nil
}
