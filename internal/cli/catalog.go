package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"airwave/internal/catalog"
	"airwave/internal/database"
	"airwave/internal/journal"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and reconcile the recorded-file catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged recordings",
	RunE:  runCatalogList,
}

var catalogRescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Reconcile the catalog against the output directory",
	Long: `Rescan walks the recorder output directory, registers files missing
from the catalog and drops rows whose file no longer exists on disk.`,
	RunE: runCatalogRescan,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent recorder executions",
	RunE:  runRuns,
}

var (
	catalogLimit int
	runsLimit    int
)

func init() {
	catalogListCmd.Flags().IntVar(&catalogLimit, "limit", 50, "maximum rows to show")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to show")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRescanCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(runsCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := catalog.NewStore(db).List(context.Background(), catalogLimit, 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PATH\tTITLE\tSTATION\tDATE\tSIZE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			e.FilePath, e.ProgramTitle, e.StationID, e.BroadcastDate, e.FileSize)
	}
	return nil
}

func runCatalogRescan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := catalog.NewStore(db).Rescan(context.Background(), cfg.Recorder.OutputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Rescan complete: %d registered, %d removed\n", result.Registered, result.Removed)
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := journal.NewStore(db).List(context.Background(), runsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "STARTED\tSTATUS\tTITLE\tSTATION\tEXIT\tARTIFACT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Status, r.Title,
			r.StationID, r.ExitCode, r.ArtifactPath)
	}
	return nil
}
