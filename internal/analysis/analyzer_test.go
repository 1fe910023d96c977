package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fathomdive/fathom/internal/database"
)

func TestLinearRegression(t *testing.T) {
	// Perfect linear: y = 2x + 1
	points := []dataPoint{
		{0, 1}, {1, 3}, {2, 5}, {3, 7}, {4, 9},
	}

	slope, intercept, rSquared := linearRegression(points)

	if math.Abs(slope-2.0) > 0.001 {
		t.Errorf("expected slope=2.0, got %.3f", slope)
	}
	if math.Abs(intercept-1.0) > 0.001 {
		t.Errorf("expected intercept=1.0, got %.3f", intercept)
	}
	if math.Abs(rSquared-1.0) > 0.001 {
		t.Errorf("expected R²=1.0, got %.3f", rSquared)
	}
}

func TestLinearRegressionNoisy(t *testing.T) {
	// Noisy linear data
	points := []dataPoint{
		{0, 1.1}, {1, 2.9}, {2, 5.2}, {3, 6.8}, {4, 9.1},
	}

	slope, _, rSquared := linearRegression(points)

	// Should be approximately slope=2.0 with high R²
	if slope < 1.5 || slope > 2.5 {
		t.Errorf("expected slope ≈ 2.0, got %.3f", slope)
	}
	if rSquared < 0.95 {
		t.Errorf("expected R² > 0.95, got %.3f", rSquared)
	}
}

func TestLinearRegressionConstant(t *testing.T) {
	// All same y values — flat line
	points := []dataPoint{
		{0, 5}, {1, 5}, {2, 5}, {3, 5},
	}

	slope, intercept, rSquared := linearRegression(points)

	if math.Abs(slope) > 0.001 {
		t.Errorf("expected slope=0, got %.3f", slope)
	}
	if math.Abs(intercept-5.0) > 0.001 {
		t.Errorf("expected intercept=5.0, got %.3f", intercept)
	}
	// R² should be 1.0 for a perfect fit (even if slope=0)
	if rSquared < 0.99 {
		t.Errorf("expected R²=1.0, got %.3f", rSquared)
	}
}

func TestLinearRegressionSinglePoint(t *testing.T) {
	points := []dataPoint{{0, 5}}
	slope, _, _ := linearRegression(points)

	if slope != 0 {
		t.Errorf("expected slope=0 for single point, got %.3f", slope)
	}
}

// ── Store-backed analysis ──

func seedDives(t *testing.T, store database.Store, depths []float64) {
	t.Helper()

	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for i, depth := range depths {
		fo2 := 0.32
		label := "EAN32"
		if depth > 40 {
			fo2 = 0.23
			label = "Tx 23/24"
		}
		dive := &database.Dive{
			DiveID:      posID(i),
			Diver:       "marin",
			DiveTime:    base.AddDate(0, 0, i*7).UnixNano(),
			MaxDepth:    depth,
			DurationMin: 45,
			FO2:         fo2,
			MixLabel:    label,
			Rating:      4,
		}
		if depth > 40 {
			dive.FHe = 0.24
		}
		if err := store.InsertDive(dive); err != nil {
			t.Fatalf("seeding dive: %v", err)
		}
	}
}

func posID(i int) string {
	return fmt.Sprintf("dive-%03d", i)
}

func newAnalyzer(t *testing.T) (*Analyzer, database.Store) {
	t.Helper()
	store, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAnalyzer(store), store
}

func TestDetectDepthOutliers(t *testing.T) {
	a, store := newAnalyzer(t)

	// Nine routine dives and one big excursion.
	seedDives(t, store, []float64{18, 20, 19, 21, 20, 18, 22, 19, 20, 55})

	outliers, err := a.DetectDepthOutliers("marin")
	if err != nil {
		t.Fatalf("DetectDepthOutliers: %v", err)
	}
	if len(outliers) != 1 {
		t.Fatalf("expected 1 outlier, got %d", len(outliers))
	}
	if outliers[0].MaxDepth != 55 {
		t.Errorf("expected the 55m dive, got %.1f", outliers[0].MaxDepth)
	}
	if outliers[0].Severity != "medium" && outliers[0].Severity != "high" {
		t.Errorf("expected a flagged severity, got %q", outliers[0].Severity)
	}
}

func TestDetectDepthOutliersUniformLog(t *testing.T) {
	a, store := newAnalyzer(t)
	seedDives(t, store, []float64{20, 20, 20, 20})

	outliers, err := a.DetectDepthOutliers("marin")
	if err != nil {
		t.Fatalf("DetectDepthOutliers: %v", err)
	}
	if len(outliers) != 0 {
		t.Errorf("expected no outliers for uniform log, got %d", len(outliers))
	}
}

func TestAnalyzeProgression(t *testing.T) {
	a, store := newAnalyzer(t)

	// Steadily deeper: +5m per weekly dive.
	seedDives(t, store, []float64{10, 15, 20, 25, 30, 35})

	report, err := a.AnalyzeProgression("marin")
	if err != nil {
		t.Fatalf("AnalyzeProgression: %v", err)
	}
	if report.TotalDives != 6 {
		t.Errorf("expected 6 dives, got %d", report.TotalDives)
	}
	// 5m per 7 days
	if math.Abs(report.Slope-5.0/7.0) > 0.01 {
		t.Errorf("expected slope ≈ 0.714 m/day, got %.3f", report.Slope)
	}
	if report.RSquared < 0.99 {
		t.Errorf("expected near-perfect fit, got R²=%.3f", report.RSquared)
	}
	if !report.IsRapid {
		t.Error("expected rapid progression flag")
	}
}

func TestAttributeFillCosts(t *testing.T) {
	a, store := newAnalyzer(t)
	seedDives(t, store, []float64{20, 50})

	report, err := a.AttributeFillCosts("marin")
	if err != nil {
		t.Fatalf("AttributeFillCosts: %v", err)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}

	var nitrox, trimix FillCostEntry
	for _, e := range report.Entries {
		if e.MixLabel == "EAN32" {
			nitrox = e
		} else {
			trimix = e
		}
	}

	// EAN32: 8.00 + 11 points of O2 premium at 0.50.
	if math.Abs(nitrox.EstimatedCost-13.50) > 0.01 {
		t.Errorf("expected EAN32 fill at $13.50, got $%.2f", nitrox.EstimatedCost)
	}
	// Trimix carries the helium surcharge and costs far more.
	if trimix.EstimatedCost < 2*nitrox.EstimatedCost {
		t.Errorf("expected trimix fill to dominate, got $%.2f vs $%.2f",
			trimix.EstimatedCost, nitrox.EstimatedCost)
	}
	if math.Abs(report.TotalEstimatedCost-(nitrox.EstimatedCost+trimix.EstimatedCost)) > 0.01 {
		t.Errorf("total %.2f does not match entries", report.TotalEstimatedCost)
	}
}

// TestAttributeFillCostsLargeLogbook verifies that analyses span the
// whole logbook rather than the most recent page of dives.
func TestAttributeFillCostsLargeLogbook(t *testing.T) {
	a, store := newAnalyzer(t)

	depths := make([]float64, 150)
	for i := range depths {
		depths[i] = 18 + float64(i%5)
	}
	seedDives(t, store, depths)

	report, err := a.AttributeFillCosts("marin")
	if err != nil {
		t.Fatalf("AttributeFillCosts: %v", err)
	}
	if len(report.Entries) != 150 {
		t.Fatalf("expected 150 cost entries, got %d", len(report.Entries))
	}
}

func TestFormatReport(t *testing.T) {
	a, store := newAnalyzer(t)
	seedDives(t, store, []float64{18, 20, 19, 21, 20, 18, 22, 19, 20, 55})

	report, err := a.FullAnalysis("marin")
	if err != nil {
		t.Fatalf("FullAnalysis: %v", err)
	}

	md := a.FormatReport(report)
	for _, want := range []string{
		"# Fathom Logbook Report",
		"## Logbook Summary",
		"| Total Dives | 10 |",
		"## Depth Outliers",
		"## Gas Fill Costs",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
