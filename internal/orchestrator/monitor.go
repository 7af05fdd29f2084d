package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"airwave/internal/catalog"
	"airwave/internal/journal"
	"airwave/internal/metrics"
	"airwave/internal/runner"
	"airwave/internal/schedule"
)

// launch starts one recorder execution and hands it to a detached completion
// monitor. Called on the trigger scheduler's dispatch goroutine; it must
// return immediately.
func (s *Service) launch(kind schedule.Kind, id int64, cmd schedule.Command) {
	metrics.RecordingStarted()

	run := &journal.Run{
		ScheduleKind: kind,
		ScheduleID:   id,
		Title:        cmd.Title,
		StationID:    cmd.StationID,
	}
	if err := s.journal.Begin(s.ctx, run); err != nil {
		// The run proceeds regardless; the journal is a marker, not a gate.
		log.Error().Err(err).Str("title", cmd.Title).Msg("Failed to journal run start")
	}

	log.Info().
		Str("kind", string(kind)).
		Int64("schedule_id", id).
		Str("title", cmd.Title).
		Str("station", cmd.StationID).
		Msg("Recording started")

	s.wg.Add(1)
	go s.monitor(run, kind, id, cmd)
}

// monitor owns one execution from launch to catalog registration. It runs on
// its own goroutine with its own error boundary: a panic here is logged,
// never propagated to the scheduler. Every error inside is terminal for this
// run only.
func (s *Service) monitor(run *journal.Run, kind schedule.Kind, id int64, cmd schedule.Command) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("title", cmd.Title).
				Msg("Completion monitor panicked")
		}
	}()

	outcome := s.runner.Run(s.ctx, cmd)

	metrics.RecordingSettled(string(outcome.State), outcome.Duration.Seconds())

	relPath, pathErr := catalog.ArtifactRelPath(cmd.Title, cmd.Feed, cmd.Start)
	if pathErr != nil {
		log.Error().Err(pathErr).Str("title", cmd.Title).Msg("Cannot derive artifact path")
	}

	s.settleJournal(run, outcome, relPath)

	switch outcome.State {
	case runner.OutcomeSucceeded:
		log.Info().
			Str("title", cmd.Title).
			Dur("duration", outcome.Duration).
			Msg("Recording finished")
	case runner.OutcomeTimedOut:
		log.Error().
			Str("title", cmd.Title).
			Dur("duration", outcome.Duration).
			Msg("Recording killed at execution ceiling")
	default:
		log.Error().
			Str("title", cmd.Title).
			Int("exit_code", outcome.ExitCode).
			Str("output", journal.Tail(outcome.Output)).
			Msg("Recording failed")
	}

	if pathErr == nil {
		s.registerArtifact(relPath, cmd, outcome)
	}

	// One-time schedules are consumed by their run, successful or not.
	if kind == schedule.KindOneTime {
		if err := s.schedules.DeleteOneTime(s.ctx, id); err != nil {
			log.Error().Err(err).Int64("id", id).Msg("Failed to delete consumed one-time schedule")
		}
		// Best-effort: the one-shot trigger has normally already self-removed.
		s.triggers.Deregister(schedule.JobID(kind, id))
		s.updateArmedGauge()
	}
}

// registerArtifact catalogs the produced file if it exists. Partial
// artifacts from failed or timed-out runs are cataloged too; a successful
// run without an artifact is logged and deliberately not cataloged.
func (s *Service) registerArtifact(relPath string, cmd schedule.Command, outcome runner.Outcome) {
	absPath := filepath.Join(s.outputDir, relPath)

	info, err := os.Stat(absPath)
	if err != nil {
		if outcome.Succeeded() {
			log.Warn().
				Str("path", relPath).
				Str("title", cmd.Title).
				Msg("Recorder reported success but artifact is missing")
		}
		return
	}

	programID := s.resolveListing(cmd)

	entry := &catalog.Entry{
		FilePath:      relPath,
		FileName:      filepath.Base(relPath),
		ProgramID:     programID,
		ProgramTitle:  cmd.Title,
		StationID:     cmd.StationID,
		StationName:   cmd.StationName,
		BroadcastDate: catalog.BroadcastDate(cmd.Start),
		StartTime:     cmd.Start,
		EndTime:       cmd.End,
		FileSize:      info.Size(),
		FileModified:  info.ModTime().UTC(),
		FolderID:      cmd.FolderID,
	}

	if err := s.catalog.Upsert(s.ctx, entry); err != nil {
		log.Error().Err(err).Str("path", relPath).Msg("Catalog registration failed")
		return
	}

	metrics.CatalogUpserted()
	log.Info().
		Str("path", relPath).
		Int64("size", info.Size()).
		Msg("Artifact cataloged")
}

// resolveListing looks up the program-listing cross-reference. Best-effort:
// no match and lookup errors both yield nil.
func (s *Service) resolveListing(cmd schedule.Command) *int64 {
	start := catalog.ListingTime(cmd.Start)
	if start == "" {
		return nil
	}

	programID, err := s.catalog.ResolveListing(s.ctx, cmd.StationID, start)
	if err != nil {
		log.Warn().Err(err).Str("station", cmd.StationID).Msg("Program listing lookup failed")
		return nil
	}
	return programID
}

func (s *Service) settleJournal(run *journal.Run, outcome runner.Outcome, relPath string) {
	var status journal.Status
	switch outcome.State {
	case runner.OutcomeSucceeded:
		status = journal.StatusCompleted
	case runner.OutcomeTimedOut:
		status = journal.StatusTimedOut
	default:
		status = journal.StatusFailed
	}

	if err := s.journal.Settle(s.ctx, run.ID, status, outcome.ExitCode, outcome.Output, relPath); err != nil {
		log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to settle journal run")
	}
}
