// Package cli implements the airwave command line interface.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"airwave/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "airwave",
	Short: "Unattended broadcast recording scheduler",
	Long: `Airwave schedules unattended recordings of time-boxed broadcast
segments. Schedules survive restarts: they live in SQLite, are re-armed at
startup, and every produced artifact is registered in a content catalog.

Run the daemon:
  airwave serve

Add a weekly recording:
  airwave schedule add --minute 0 --hour 3 --day-of-week 0 \
    --title "Morning Show" --feed morning --station TBS \
    --start 202601040300 --end 202601040400`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./airwave.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{ConfigFile: cfgFile})
}

// setupLogging configures zerolog before any command runs; serve refines the
// level and format from the loaded config.
func setupLogging() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// applyLogging reconfigures logging from config once it is available.
func applyLogging(cfg *config.LoggingConfig) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if level, err := zerolog.ParseLevel(cfg.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if cfg.Format == "json" {
		logger := zerolog.New(os.Stderr)
		if cfg.Timestamp {
			logger = logger.With().Timestamp().Logger()
		}
		if cfg.Caller {
			logger = logger.With().Caller().Logger()
		}
		log.Logger = logger
	}
}
