// Package trigger provides the in-process trigger scheduler: armed jobs
// keyed by a stable id, fired by cron entries or one-shot timers.
package trigger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler maps job ids to armed triggers. Registrations and removals for
// the same id are serialized under one mutex; replace-or-remove is atomic
// per id. Callbacks run on the cron or timer goroutine and must only hand
// work off, never block.
type Scheduler struct {
	mu      sync.Mutex
	parser  cron.Parser
	cron    *cron.Cron
	entries map[string]cron.EntryID
	timers  map[string]*time.Timer
	stopped bool
}

// New creates a scheduler evaluating cron specs in the given location.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &Scheduler{
		parser:  parser,
		cron:    cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		entries: make(map[string]cron.EntryID),
		timers:  make(map[string]*time.Timer),
	}
}

// Start begins dispatching cron triggers. Timer triggers arm as soon as they
// are registered, independent of Start.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("Trigger scheduler started")
}

// Stop halts dispatch and disarms all triggers. Callbacks already running
// are not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Info().Msg("Trigger scheduler stopped")
}

// Register arms a recurring trigger under id. Registering an id that is
// already armed replaces the previous trigger; it is never an error.
func (s *Scheduler) Register(id, spec string, fn func()) error {
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("parsing trigger spec %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("adding trigger %s: %w", id, err)
	}
	s.entries[id] = entryID

	log.Debug().Str("job_id", id).Str("spec", spec).Msg("Trigger armed")
	return nil
}

// RegisterAt arms a one-shot trigger under id that fires once at t and then
// removes itself. A past t fires immediately. Replaces any existing
// registration with the same id.
func (s *Scheduler) RegisterAt(id string, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	if s.stopped {
		return
	}

	d := time.Until(at)
	if d < 0 {
		d = 0
	}

	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})

	log.Debug().Str("job_id", id).Time("fire_at", at).Msg("One-shot trigger armed")
}

// Deregister disarms the trigger for id. Unknown ids are a logged no-op:
// one-shot triggers remove themselves after firing, so the job may already
// be gone.
func (s *Scheduler) Deregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(id) {
		log.Warn().Str("job_id", id).Msg("Deregister of unknown trigger")
		return
	}

	log.Debug().Str("job_id", id).Msg("Trigger disarmed")
}

// List returns the ids of all currently armed triggers, sorted. Diagnostics
// only.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries)+len(s.timers))
	for id := range s.entries {
		ids = append(ids, id)
	}
	for id := range s.timers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) removeLocked(id string) bool {
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
		return true
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
		return true
	}
	return false
}
