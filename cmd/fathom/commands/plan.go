package commands

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/fathomdive/fathom/internal/gasmix"
)

var (
	planDepth  float64
	planPO2    float64
	planTrimix bool
	planEAD    float64
	planJSON   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the best gas mix for a planned dive",
	Example: `  fathom plan --depth 30
  fathom plan --depth 50 --trimix --ead 30
  fathom plan --depth 40 --po2 1.3 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := gasmix.Request{
			Depth:      planDepth,
			PO2Ceiling: planPO2,
			Trimix:     planTrimix,
			TargetEAD:  planEAD,
		}
		mix, err := gasmix.Solve(req)
		if err != nil {
			return err
		}

		mod := gasmix.MaxOperatingDepth(mix, planPO2)
		ead := gasmix.EquivalentAirDepth(mix, planDepth)
		end := gasmix.EquivalentNarcoticDepth(mix, planDepth)

		if planJSON {
			out := map[string]interface{}{
				"label": mix.Label(),
				"fo2":   mix.FO2,
				"fhe":   mix.FHe,
				"fn2":   mix.FN2,
				"ead_m": ead,
				"end_m": end,
			}
			if !math.IsInf(mod, 1) {
				out["mod_m"] = mod
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
			return nil
		}

		fmt.Printf("Best mix for %.0fm at pO₂ %.2f: %s\n\n", planDepth, planPO2, mix.Label())
		fmt.Printf("  O₂  %5.1f%%\n", mix.FO2*100)
		if mix.FHe > 0.001 {
			fmt.Printf("  He  %5.1f%%\n", mix.FHe*100)
		}
		fmt.Printf("  N₂  %5.1f%%\n\n", mix.FN2*100)
		if math.IsInf(mod, 1) {
			fmt.Println("  MOD  unlimited")
		} else {
			fmt.Printf("  MOD  %.1f m\n", mod)
		}
		fmt.Printf("  EAD  %.1f m\n", ead)
		fmt.Printf("  END  %.1f m\n", end)

		if mod < planDepth {
			fmt.Printf("\n⚠ planned depth exceeds MOD for this mix\n")
		}
		return nil
	},
}

func init() {
	planCmd.Flags().Float64Var(&planDepth, "depth", 30, "planned depth in meters")
	planCmd.Flags().Float64Var(&planPO2, "po2", 1.4, "oxygen partial pressure ceiling in bar")
	planCmd.Flags().BoolVar(&planTrimix, "trimix", false, "allow helium in the mix")
	planCmd.Flags().Float64Var(&planEAD, "ead", 30, "target equivalent air depth in meters (trimix)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(planCmd)
}
