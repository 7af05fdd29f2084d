package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"airwave/internal/catalog"
	"airwave/internal/database"
	"airwave/internal/journal"
	"airwave/internal/metrics"
	"airwave/internal/orchestrator"
	"airwave/internal/runner"
	"airwave/internal/schedule"
	"airwave/internal/trigger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recording daemon",
	Long: `Serve recovers all stored schedules, arms their triggers and keeps
recording until stopped. One-time schedules whose fire time already passed
are discarded with a warning.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLogging(&cfg.Logging)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return err
	}

	svc := orchestrator.New(
		schedule.NewStore(db),
		catalog.NewStore(db),
		journal.NewStore(db),
		trigger.New(loc),
		runner.New(cfg.Recorder.Binary, cfg.Recorder.Timeout),
		cfg.Recorder.OutputDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Recover(ctx); err != nil {
		return err
	}
	svc.Start()
	defer svc.Stop()

	if cfg.Catalog.Watch {
		watcher, err := catalog.NewWatcher(catalog.NewStore(db), cfg.Recorder.OutputDir, cfg.Catalog.WatchDebounce)
		if err != nil {
			log.Warn().Err(err).Msg("Catalog watcher unavailable")
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	log.Info().
		Str("db", cfg.Database.Path).
		Str("recorder", cfg.Recorder.Binary).
		Str("output", cfg.Recorder.OutputDir).
		Str("timezone", cfg.Scheduler.Timezone).
		Msg("airwave ready")

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	log.Info().Str("addr", addr).Msg("Metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics listener failed")
	}
}
