package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"airwave/internal/database"
	"airwave/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recording schedules",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recurring schedule",
	Long: `Add stores a cron-style recurring schedule. The five recurrence flags
accept a numeric value, a comma list, or *. A running daemon picks the new
schedule up on its next start.`,
	RunE: runScheduleAdd,
}

var scheduleAddOnceCmd = &cobra.Command{
	Use:   "add-once",
	Short: "Add a one-time schedule",
	RunE:  runScheduleAddOnce,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schedules",
	RunE:  runScheduleList,
}

var scheduleRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Remove a schedule by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRm,
}

var (
	schedTitle    string
	schedFeed     string
	schedStation  string
	schedStationN string
	schedStart    string
	schedEnd      string
	schedFolder   int64

	schedMinute string
	schedHour   string
	schedDOM    string
	schedMonth  string
	schedDOW    string

	schedFireAt string
	schedOnce   bool
)

func init() {
	for _, c := range []*cobra.Command{scheduleAddCmd, scheduleAddOnceCmd} {
		c.Flags().StringVar(&schedTitle, "title", "", "program title (required)")
		c.Flags().StringVar(&schedFeed, "feed", "", "source feed identifier (required)")
		c.Flags().StringVar(&schedStation, "station", "", "station identifier (required)")
		c.Flags().StringVar(&schedStationN, "station-name", "", "station display name")
		c.Flags().StringVar(&schedStart, "start", "", "start timestamp, YYYYMMDDHHMM (required)")
		c.Flags().StringVar(&schedEnd, "end", "", "end timestamp, YYYYMMDDHHMM (required)")
		c.Flags().Int64Var(&schedFolder, "folder", 0, "destination folder id")
		c.MarkFlagRequired("title")
		c.MarkFlagRequired("feed")
		c.MarkFlagRequired("station")
		c.MarkFlagRequired("start")
		c.MarkFlagRequired("end")
	}

	scheduleAddCmd.Flags().StringVar(&schedMinute, "minute", "*", "recurrence minute field")
	scheduleAddCmd.Flags().StringVar(&schedHour, "hour", "*", "recurrence hour field")
	scheduleAddCmd.Flags().StringVar(&schedDOM, "day-of-month", "*", "recurrence day-of-month field")
	scheduleAddCmd.Flags().StringVar(&schedMonth, "month", "*", "recurrence month field")
	scheduleAddCmd.Flags().StringVar(&schedDOW, "day-of-week", "*", "recurrence day-of-week field")

	scheduleAddOnceCmd.Flags().StringVar(&schedFireAt, "at", "", "fire time, RFC 3339 (required)")
	scheduleAddOnceCmd.MarkFlagRequired("at")

	scheduleListCmd.Flags().BoolVar(&schedOnce, "once", false, "list only one-time schedules")
	scheduleRmCmd.Flags().BoolVar(&schedOnce, "once", false, "remove a one-time schedule instead of a recurring one")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleAddOnceCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRmCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func withScheduleStore(fn func(ctx context.Context, store *schedule.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(context.Background(), schedule.NewStore(db))
}

func commandFromFlags(cmd *cobra.Command) schedule.Command {
	c := schedule.Command{
		Title:       schedTitle,
		Feed:        schedFeed,
		StationID:   schedStation,
		StationName: schedStationN,
		Start:       schedStart,
		End:         schedEnd,
	}
	if cmd.Flags().Changed("folder") {
		folder := schedFolder
		c.FolderID = &folder
	}
	return c
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	rec, err := schedule.ParseRecurrence(schedMinute, schedHour, schedDOM, schedMonth, schedDOW)
	if err != nil {
		return err
	}

	return withScheduleStore(func(ctx context.Context, store *schedule.Store) error {
		sched := &schedule.RecurringSchedule{
			Recurrence: rec,
			Command:    commandFromFlags(cmd),
		}
		if err := store.CreateRecurring(ctx, sched); err != nil {
			return err
		}
		fmt.Printf("Created recurring schedule %d (%s)\n", sched.ID, rec.String())
		return nil
	})
}

func runScheduleAddOnce(cmd *cobra.Command, args []string) error {
	fireAt, err := time.Parse(time.RFC3339, schedFireAt)
	if err != nil {
		return fmt.Errorf("parsing fire time: %w", err)
	}
	if fireAt.Before(time.Now()) {
		return fmt.Errorf("fire time %s is in the past", schedFireAt)
	}

	return withScheduleStore(func(ctx context.Context, store *schedule.Store) error {
		sched := &schedule.OneTimeSchedule{
			FireAt:  fireAt,
			Command: commandFromFlags(cmd),
		}
		if err := store.CreateOneTime(ctx, sched); err != nil {
			return err
		}
		fmt.Printf("Created one-time schedule %d (fires %s)\n", sched.ID, fireAt.Format(time.RFC3339))
		return nil
	})
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	return withScheduleStore(func(ctx context.Context, store *schedule.Store) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()

		if !schedOnce {
			recurring, err := store.ListRecurring(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tRECURRENCE\tTITLE\tSTATION\tSTART\tEND")
			for _, s := range recurring {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Recurrence.String(), s.Command.Title,
					s.Command.StationID, s.Command.Start, s.Command.End)
			}
			fmt.Fprintln(w)
		}

		oneTime, err := store.ListOneTime(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tFIRES\tTITLE\tSTATION\tSTART\tEND")
		for _, s := range oneTime {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.FireAt.Format(time.RFC3339), s.Command.Title,
				s.Command.StationID, s.Command.Start, s.Command.End)
		}
		return nil
	})
}

func runScheduleRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid schedule id %q", args[0])
	}

	return withScheduleStore(func(ctx context.Context, store *schedule.Store) error {
		if schedOnce {
			return store.DeleteOneTime(ctx, id)
		}
		return store.DeleteRecurring(ctx, id)
	})
}
