// Package analysis provides lightweight, deterministic insights over
// a diver's logbook. All analysis uses mathematical and statistical
// methods — nothing leaves the local database.
//
// Key capabilities:
//   - Depth outlier detection via Z-score analysis
//   - Depth progression trends via linear regression
//   - Gas fill cost attribution across logged dives
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/pkg/timeutil"
)

// Analyzer computes logbook statistics backed by the given store.
type Analyzer struct {
	store database.Store
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ============================================================
// Depth Outlier Detection
// ============================================================

// DepthOutlier identifies a dive abnormally deep for this diver's log.
type DepthOutlier struct {
	DiveID   string  `json:"dive_id"`
	Date     string  `json:"date"`
	MaxDepth float64 `json:"max_depth"`
	MixLabel string  `json:"mix_label"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"` // "low", "medium", "high"
}

// DetectDepthOutliers calculates the Z-score of max depth across the
// diver's log, identifying dives far outside their usual profile.
//
// A Z-score > 2.0 is flagged ("medium" severity).
// A Z-score > 3.0 is a significant excursion ("high" severity).
//
// This answers: "Which dives pushed well past my normal range?"
func (a *Analyzer) DetectDepthOutliers(diver string) ([]DepthOutlier, error) {
	dives, err := a.store.QueryDives(database.DiveFilter{Diver: &diver})
	if err != nil {
		return nil, fmt.Errorf("querying dives for outlier analysis: %w", err)
	}

	if len(dives) < 2 {
		// Not enough data for meaningful Z-score analysis
		return nil, nil
	}

	depths := make([]float64, len(dives))
	var sum, sumSq float64
	for i, d := range dives {
		depths[i] = d.MaxDepth
		sum += d.MaxDepth
		sumSq += d.MaxDepth * d.MaxDepth
	}

	n := float64(len(dives))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	stddev := math.Sqrt(variance)

	if stddev == 0 {
		// Every dive to the same depth — no outliers
		return nil, nil
	}

	var outliers []DepthOutlier
	for i, d := range dives {
		zScore := (depths[i] - mean) / stddev

		if zScore > 1.5 {
			severity := "low"
			if zScore > 3.0 {
				severity = "high"
			} else if zScore > 2.0 {
				severity = "medium"
			}

			outliers = append(outliers, DepthOutlier{
				DiveID:   d.DiveID,
				Date:     timeutil.FormatDiveDate(d.DiveTime),
				MaxDepth: d.MaxDepth,
				MixLabel: d.MixLabel,
				ZScore:   math.Round(zScore*100) / 100,
				Severity: severity,
			})
		}
	}

	// Sort by Z-score descending
	sort.Slice(outliers, func(i, j int) bool {
		return outliers[i].ZScore > outliers[j].ZScore
	})

	return outliers, nil
}

// ============================================================
// Depth Progression Analysis
// ============================================================

// ProgressionReport contains the results of depth trend analysis.
type ProgressionReport struct {
	Diver           string  `json:"diver"`
	TotalDives      int     `json:"total_dives"`
	Slope           float64 `json:"slope"`             // Meters per day
	Intercept       float64 `json:"intercept"`         // Regression intercept
	RSquared        float64 `json:"r_squared"`         // Goodness of fit
	Prediction90Day float64 `json:"prediction_90_day"` // Predicted max depth in 90 days
	IsRapid         bool    `json:"is_rapid"`          // True when depth is increasing fast
}

// dataPoint represents a single time-series observation for regression analysis.
type dataPoint struct {
	day   float64 // Days since first logged dive
	depth float64
}

// AnalyzeProgression performs linear regression on max depth over time
// to characterize how quickly the diver is extending their range.
//
// This answers: "Am I going deeper faster than my training supports?"
func (a *Analyzer) AnalyzeProgression(diver string) (*ProgressionReport, error) {
	dives, err := a.store.QueryDives(database.DiveFilter{Diver: &diver})
	if err != nil {
		return nil, fmt.Errorf("querying dives for progression analysis: %w", err)
	}

	report := &ProgressionReport{Diver: diver, TotalDives: len(dives)}
	if len(dives) < 2 {
		return report, nil
	}

	// Oldest first
	sort.Slice(dives, func(i, j int) bool {
		return dives[i].DiveTime < dives[j].DiveTime
	})

	baseTime := dives[0].DiveTime
	points := make([]dataPoint, len(dives))
	for i, d := range dives {
		days := float64(d.DiveTime-baseTime) / float64(24*time.Hour.Nanoseconds())
		points[i] = dataPoint{day: days, depth: d.MaxDepth}
	}

	slope, intercept, rSquared := linearRegression(points)

	lastDay := points[len(points)-1].day
	prediction := slope*(lastDay+90) + intercept

	// More than 2m of added depth per week, with a solid fit, reads
	// as a rapid progression worth a closer look.
	isRapid := slope > 2.0/7.0 && rSquared > 0.7

	report.Slope = math.Round(slope*1000) / 1000
	report.Intercept = math.Round(intercept*100) / 100
	report.RSquared = math.Round(rSquared*1000) / 1000
	report.Prediction90Day = math.Max(0, math.Round(prediction*10)/10)
	report.IsRapid = isRapid

	return report, nil
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.day
		sumY += p.depth
		sumXY += p.day * p.depth
		sumX2 += p.day * p.day
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	// R-squared
	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.day + intercept
		ssRes += (p.depth - predicted) * (p.depth - predicted)
		ssTot += (p.depth - meanY) * (p.depth - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Gas Fill Cost Attribution
// ============================================================

// FillCostEntry attributes estimated fill cost to a single dive.
type FillCostEntry struct {
	DiveID        string  `json:"dive_id"`
	Date          string  `json:"date"`
	MixLabel      string  `json:"mix_label"`
	EstimatedCost float64 `json:"estimated_cost_usd"`
	Percentage    float64 `json:"percentage"`
}

// FillCostReport summarizes estimated gas fill costs across the log.
type FillCostReport struct {
	Diver              string          `json:"diver"`
	TotalEstimatedCost float64         `json:"total_estimated_cost_usd"`
	Entries            []FillCostEntry `json:"entries"`
}

// Fill pricing (approximate, USD): flat fill charge plus a per-point
// oxygen premium above air, and a steep per-point helium surcharge.
const (
	airFillCost     = 8.0
	o2PremiumPerPct = 0.50
	hePremiumPerPct = 3.00
)

// AttributeFillCosts estimates the fill cost of each logged dive from
// its gas fractions.
func (a *Analyzer) AttributeFillCosts(diver string) (*FillCostReport, error) {
	dives, err := a.store.QueryDives(database.DiveFilter{Diver: &diver})
	if err != nil {
		return nil, fmt.Errorf("querying dives for cost analysis: %w", err)
	}

	report := &FillCostReport{Diver: diver}

	for _, d := range dives {
		cost := airFillCost
		if o2Extra := (d.FO2 - 0.21) * 100; o2Extra > 0 {
			cost += o2Extra * o2PremiumPerPct
		}
		cost += d.FHe * 100 * hePremiumPerPct

		report.TotalEstimatedCost += cost
		report.Entries = append(report.Entries, FillCostEntry{
			DiveID:        d.DiveID,
			Date:          timeutil.FormatDiveDate(d.DiveTime),
			MixLabel:      d.MixLabel,
			EstimatedCost: math.Round(cost*100) / 100,
		})
	}

	// Calculate percentages
	for i := range report.Entries {
		if report.TotalEstimatedCost > 0 {
			report.Entries[i].Percentage = math.Round(
				report.Entries[i].EstimatedCost/report.TotalEstimatedCost*10000) / 100
		}
	}

	return report, nil
}

// ============================================================
// Full Logbook Report
// ============================================================

// LogbookReport is the complete output of `fathom status --report`.
type LogbookReport struct {
	Diver         string             `json:"diver"`
	GeneratedAt   string             `json:"generated_at"`
	Stats         *database.LogStats `json:"stats"`
	DepthOutliers []DepthOutlier     `json:"depth_outliers"`
	Progression   *ProgressionReport `json:"progression"`
	FillCosts     *FillCostReport    `json:"fill_costs"`
	Warnings      []string           `json:"warnings"`
}

// FullAnalysis runs all analysis passes and generates a comprehensive report.
func (a *Analyzer) FullAnalysis(diver string) (*LogbookReport, error) {
	report := &LogbookReport{
		Diver:       diver,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}

	stats, err := a.store.GetLogStats(diver)
	if err != nil {
		return nil, fmt.Errorf("gathering logbook stats: %w", err)
	}
	report.Stats = stats

	outliers, err := a.DetectDepthOutliers(diver)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Depth outlier analysis failed: %v", err))
	} else {
		report.DepthOutliers = outliers
	}

	progression, err := a.AnalyzeProgression(diver)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Progression analysis failed: %v", err))
	} else {
		report.Progression = progression
	}

	costReport, err := a.AttributeFillCosts(diver)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Fill cost attribution failed: %v", err))
	} else {
		report.FillCosts = costReport
	}

	if progression != nil && progression.IsRapid {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("⚠ RAPID DEPTH PROGRESSION detected (%.3f m/day, R²=%.3f). "+
				"Consider consolidating at current depths.", progression.Slope, progression.RSquared))
	}

	for _, o := range outliers {
		if o.Severity == "high" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("⚠ DEPTH OUTLIER: dive %s reached %.1fm (Z-score: %.2f), "+
					"far beyond your usual profile.", o.DiveID, o.MaxDepth, o.ZScore))
		}
	}

	return report, nil
}

// FormatReport generates a human-readable markdown report.
func (a *Analyzer) FormatReport(report *LogbookReport) string {
	var b strings.Builder

	b.WriteString("# Fathom Logbook Report\n\n")
	b.WriteString(fmt.Sprintf("**Diver:** `%s`\n", report.Diver))
	b.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt))

	// Stats
	if report.Stats != nil {
		b.WriteString("## Logbook Summary\n\n")
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		b.WriteString(fmt.Sprintf("| Total Dives | %d |\n", report.Stats.TotalDives))
		b.WriteString(fmt.Sprintf("| Bottom Time | %s |\n", timeutil.FormatBottomTime(report.Stats.TotalBottomMin)))
		b.WriteString(fmt.Sprintf("| Deepest Dive | %.1f m |\n", report.Stats.DeepestMeters))
		b.WriteString(fmt.Sprintf("| Distinct Sites | %d |\n", report.Stats.DistinctSites))
		b.WriteString(fmt.Sprintf("| Trimix Dives | %d |\n\n", report.Stats.TrimixDives))
	}

	// Depth Outliers
	if len(report.DepthOutliers) > 0 {
		b.WriteString("## Depth Outliers\n\n")
		b.WriteString("| Date | Depth | Mix | Z-Score | Severity |\n")
		b.WriteString("|------|-------|-----|---------|----------|\n")
		for _, o := range report.DepthOutliers {
			b.WriteString(fmt.Sprintf("| %s | %.1f m | %s | %.2f | %s |\n",
				o.Date, o.MaxDepth, o.MixLabel, o.ZScore, o.Severity))
		}
		b.WriteString("\n")
	}

	// Progression
	if report.Progression != nil && report.Progression.TotalDives >= 2 {
		p := report.Progression
		b.WriteString("## Depth Progression\n\n")
		b.WriteString(fmt.Sprintf("- **Trend:** %.3f m/day\n", p.Slope))
		b.WriteString(fmt.Sprintf("- **R² Fit:** %.3f\n", p.RSquared))
		b.WriteString(fmt.Sprintf("- **90-day Projection:** %.1f m\n", p.Prediction90Day))
		if p.IsRapid {
			b.WriteString("- **⚠ WARNING:** Rapid progression detected!\n")
		}
		b.WriteString("\n")
	}

	// Fill Costs
	if report.FillCosts != nil {
		fc := report.FillCosts
		b.WriteString("## Gas Fill Costs\n\n")
		b.WriteString(fmt.Sprintf("**Total Estimated Cost:** $%.2f\n\n", fc.TotalEstimatedCost))
		if len(fc.Entries) > 0 {
			b.WriteString("| Date | Mix | Cost | % |\n")
			b.WriteString("|------|-----|------|---|\n")
			for _, e := range fc.Entries {
				b.WriteString(fmt.Sprintf("| %s | %s | $%.2f | %.1f%% |\n",
					e.Date, e.MixLabel, e.EstimatedCost, e.Percentage))
			}
		}
		b.WriteString("\n")
	}

	// Warnings
	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return b.String()
}
