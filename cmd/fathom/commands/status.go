package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fathomdive/fathom/internal/analysis"
	"github.com/fathomdive/fathom/internal/syncd"
)

var statusReport bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync daemon status and logbook insights",
	Example: `  fathom status
  fathom status --report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statusReport {
			return runLogbookReport()
		}
		return runDaemonStatus()
	},
}

// runDaemonStatus queries the daemon's JSON metrics endpoint.
func runDaemonStatus() error {
	url := fmt.Sprintf("http://%s/api/metrics", cfg.Sync.MetricsAddr)

	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("⚠ Sync daemon is not running.")
		fmt.Println("  Start it with: fathom-syncd")
		fmt.Printf("  (tried: %s)\n", url)
		return nil
	}
	defer resp.Body.Close()

	var metrics syncd.SyncMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return fmt.Errorf("decoding metrics: %w", err)
	}

	fmt.Println("✅ Sync daemon is running.")
	fmt.Println()
	fmt.Printf("  Dives ingested:      %d\n", metrics.DivesIngested)
	fmt.Printf("  Feedback ingested:   %d\n", metrics.FeedbackIngested)
	fmt.Printf("  Batches committed:   %d\n", metrics.BatchesCommitted)
	fmt.Printf("  Errors:              %d\n", metrics.ErrorCount)
	fmt.Printf("  Uptime:              %ds\n", metrics.Uptime)
	return nil
}

// runLogbookReport prints the full markdown analysis of the logbook.
func runLogbookReport() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer := analysis.NewAnalyzer(store)
	report, err := analyzer.FullAnalysis(cfg.Diver)
	if err != nil {
		return fmt.Errorf("analyzing logbook: %w", err)
	}

	fmt.Print(analyzer.FormatReport(report))
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusReport, "report", false, "print a markdown logbook analysis report")
	rootCmd.AddCommand(statusCmd)
}
