package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/database"
)

var (
	sitesSearch   string
	sitesKind     string
	sitesLevel    string
	sitesMaxDepth float64
	sitesLimit    int
	sitesJSON     bool
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Browse the dive site catalog",
	Example: `  fathom sites
  fathom sites --search "red sea wreck"
  fathom sites --kind reef --max-depth 25`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var sites []*database.Site
		if sitesSearch != "" {
			sites, err = store.SearchSites(sitesSearch, sitesLimit)
		} else {
			filter := database.SiteFilter{Limit: sitesLimit}
			if sitesKind != "" {
				filter.Kind = &sitesKind
			}
			if sitesLevel != "" {
				filter.Level = &sitesLevel
			}
			if sitesMaxDepth > 0 {
				filter.MaxDepth = &sitesMaxDepth
			}
			sites, err = store.QuerySites(filter)
		}
		if err != nil {
			return fmt.Errorf("querying sites: %w", err)
		}

		if sitesJSON {
			b, _ := json.MarshalIndent(sites, "", "  ")
			fmt.Println(string(b))
			return nil
		}

		if len(sites) == 0 {
			fmt.Println("No sites found.")
			return nil
		}
		for _, s := range sites {
			fmt.Printf("%-30s  %-12s %5.0fm  %.1f★  %s, %s\n",
				s.Name, s.Kind, s.MaxDepth, s.Rating, s.Region, s.Country)
		}
		return nil
	},
}

var sitesImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import dive sites from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		var sites []*database.Site
		if err := json.Unmarshal(data, &sites); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, s := range sites {
			if err := store.UpsertSite(s); err != nil {
				return fmt.Errorf("importing site %q: %w", s.Name, err)
			}
			logger.Debug("imported site", zap.String("name", s.Name))
		}

		fmt.Printf("Imported %d sites.\n", len(sites))
		return nil
	},
}

func init() {
	sitesCmd.Flags().StringVar(&sitesSearch, "search", "", "full-text search query")
	sitesCmd.Flags().StringVar(&sitesKind, "kind", "", "filter by kind (reef, wreck, cave, wall, drift)")
	sitesCmd.Flags().StringVar(&sitesLevel, "level", "", "filter by level (beginner..technical)")
	sitesCmd.Flags().Float64Var(&sitesMaxDepth, "max-depth", 0, "only sites no deeper than this")
	sitesCmd.Flags().IntVar(&sitesLimit, "limit", 50, "maximum results")
	sitesCmd.Flags().BoolVar(&sitesJSON, "json", false, "output as JSON")
	sitesCmd.AddCommand(sitesImportCmd)
	rootCmd.AddCommand(sitesCmd)
}
