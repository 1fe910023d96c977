package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/internal/gasmix"
	"github.com/fathomdive/fathom/internal/syncd"
	"github.com/fathomdive/fathom/pkg/timeutil"
)

var (
	logDepth    float64
	logDuration int
	logSiteID   int64
	logO2Pct    float64
	logHePct    float64
	logTemp     float64
	logRating   int
	logNotes    string
	logSync     bool
	logList     bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a dive in the logbook",
	Example: `  fathom log --depth 28.5 --duration 44 --o2 32
  fathom log --depth 52 --duration 38 --o2 23 --he 24 --rating 5 --sync
  fathom log --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if logList {
			diver := cfg.Diver
			dives, err := store.QueryDives(database.DiveFilter{Diver: &diver, Limit: 50})
			if err != nil {
				return fmt.Errorf("querying logbook: %w", err)
			}
			if len(dives) == 0 {
				fmt.Println("No dives logged yet.")
				return nil
			}
			for _, d := range dives {
				sync := " "
				if d.Synced {
					sync = "↑"
				}
				fmt.Printf("%s  %5.1fm  %s  %-9s %s\n",
					timeutil.FormatDiveDate(d.DiveTime), d.MaxDepth,
					timeutil.FormatBottomTime(d.DurationMin), d.MixLabel, sync)
			}
			return nil
		}

		if logDuration <= 0 {
			return fmt.Errorf("--duration is required")
		}

		mix := gasmix.Mix{FO2: logO2Pct / 100, FHe: logHePct / 100}
		mix.FN2 = 1 - mix.FO2 - mix.FHe
		if mix.FN2 < 0 {
			return fmt.Errorf("o2 and he fractions exceed 100%%")
		}

		dive := &database.Dive{
			DiveID:      uuid.NewString(),
			Diver:       cfg.Diver,
			DiveTime:    timeutil.NowNano(),
			MaxDepth:    logDepth,
			DurationMin: logDuration,
			FO2:         mix.FO2,
			FHe:         mix.FHe,
			MixLabel:    mix.Label(),
			Rating:      logRating,
		}
		if logSiteID > 0 {
			dive.SiteID = &logSiteID
		}
		if logTemp != 0 {
			dive.WaterTemp = &logTemp
		}
		if logNotes != "" {
			dive.Notes = &logNotes
		}

		if logSync {
			client, err := syncd.Dial(cfg.Sync.ListenAddr, cfg.API.Timeout)
			if err != nil {
				return fmt.Errorf("connecting to sync daemon: %w", err)
			}
			defer client.Close()
			dive.Synced = true
			if err := client.SendDive(dive); err != nil {
				return fmt.Errorf("syncing dive: %w", err)
			}
			logger.Info("dive synced", zap.String("dive_id", dive.DiveID))
			fmt.Printf("Synced dive %s (%s, %.1fm).\n", dive.DiveID[:8], dive.MixLabel, dive.MaxDepth)
			return nil
		}

		if err := store.InsertDive(dive); err != nil {
			return fmt.Errorf("saving dive: %w", err)
		}
		fmt.Printf("Logged dive %s (%s, %.1fm, %s).\n",
			dive.DiveID[:8], dive.MixLabel, dive.MaxDepth,
			timeutil.FormatBottomTime(dive.DurationMin))
		return nil
	},
}

func init() {
	logCmd.Flags().Float64Var(&logDepth, "depth", 0, "max depth in meters")
	logCmd.Flags().IntVar(&logDuration, "duration", 0, "bottom time in minutes")
	logCmd.Flags().Int64Var(&logSiteID, "site", 0, "dive site ID")
	logCmd.Flags().Float64Var(&logO2Pct, "o2", 21, "oxygen percentage")
	logCmd.Flags().Float64Var(&logHePct, "he", 0, "helium percentage")
	logCmd.Flags().Float64Var(&logTemp, "temp", 0, "water temperature in °C")
	logCmd.Flags().IntVar(&logRating, "rating", 3, "dive rating 1-5")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "free-form notes")
	logCmd.Flags().BoolVar(&logSync, "sync", false, "push to the sync daemon instead of writing locally")
	logCmd.Flags().BoolVar(&logList, "list", false, "list recent dives instead of recording")
	rootCmd.AddCommand(logCmd)
}
