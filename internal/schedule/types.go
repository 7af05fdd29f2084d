// Package schedule defines the durable schedule definitions and their store.
package schedule

import (
	"fmt"
	"strconv"
	"time"
)

// Kind distinguishes recurring from one-time schedules.
type Kind string

const (
	// KindRecurring is a cron-style schedule that fires repeatedly.
	KindRecurring Kind = "recurring"
	// KindOneTime is a schedule with a single absolute fire time.
	KindOneTime Kind = "onetime"
)

// Command is the fully resolved argument set needed to invoke the recorder.
// It doubles as the denormalized display data for listings.
type Command struct {
	Title       string // program title
	Feed        string // source feed identifier, also the artifact subdirectory
	StationID   string // station identifier
	StationName string // station display name (not passed to the recorder)
	Start       string // start timestamp, YYYYMMDDHHMM
	End         string // end timestamp, YYYYMMDDHHMM
	FolderID    *int64 // optional destination-folder reference, opaque
}

// Args returns the recorder argv, excluding the binary itself.
// The trailing skip/dir/mail slots mirror the recorder's calling convention;
// dir carries the destination-folder id when one is set.
func (c Command) Args() []string {
	dir := ""
	if c.FolderID != nil {
		dir = strconv.FormatInt(*c.FolderID, 10)
	}
	return []string{c.Title, c.Feed, c.StationID, c.Start, c.End, "", dir, ""}
}

// RecurringSchedule is a stored cron-style recording schedule.
type RecurringSchedule struct {
	ID         int64
	Recurrence Recurrence
	Command    Command
	CreatedAt  time.Time
}

// JobID returns the stable trigger scheduler handle for kind and id.
func JobID(kind Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// JobID returns the stable trigger scheduler handle for this schedule.
func (s *RecurringSchedule) JobID() string {
	return JobID(KindRecurring, s.ID)
}

// OneTimeSchedule is a stored single-shot recording schedule.
type OneTimeSchedule struct {
	ID        int64
	FireAt    time.Time
	Command   Command
	CreatedAt time.Time
}

// JobID returns the stable trigger scheduler handle for this schedule.
func (s *OneTimeSchedule) JobID() string {
	return JobID(KindOneTime, s.ID)
}
