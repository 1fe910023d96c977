package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/gasmix"
)

// Stepper increments for the planner inputs.
const (
	depthStep     = 1.0  // meters
	depthStepBig  = 5.0  // meters, with shift
	pO2Step       = 0.05 // bar
	eadStep       = 1.0  // meters
	depthStepMax  = 200.0
	pO2CeilingMax = 1.6
)

// PlannerState holds the best-mix planner inputs and the last
// computed result. Every input change recomputes synchronously;
// the solver is pure arithmetic, so there is no Cmd round-trip.
type PlannerState struct {
	Depth      float64
	PO2Ceiling float64
	Trimix     bool
	TargetEAD  float64
	Duration   int // planned bottom time, minutes

	Mix gasmix.Mix
	Err error
}

// NewPlannerState seeds the planner from configured defaults
// and computes the initial mix.
func NewPlannerState(cfg config.PlannerConfig) PlannerState {
	s := PlannerState{
		Depth:      30,
		PO2Ceiling: cfg.PO2Ceiling,
		Trimix:     cfg.Trimix,
		TargetEAD:  cfg.TargetEAD,
		Duration:   45,
	}
	s.recompute()
	return s
}

// SetDepth jumps the planner to a specific depth (e.g. a site's max).
func (s *PlannerState) SetDepth(depth float64) {
	s.Depth = clampF(depth, 0, depthStepMax)
	s.recompute()
}

// HandleKey adjusts one input and recomputes. Unmapped keys are ignored.
func (s *PlannerState) HandleKey(key string) {
	switch key {
	case "right", "l":
		s.Depth = clampF(s.Depth+depthStep, 0, depthStepMax)
	case "left", "h":
		s.Depth = clampF(s.Depth-depthStep, 0, depthStepMax)
	case "shift+right", "L":
		s.Depth = clampF(s.Depth+depthStepBig, 0, depthStepMax)
	case "shift+left", "H":
		s.Depth = clampF(s.Depth-depthStepBig, 0, depthStepMax)
	case "up", "k":
		s.PO2Ceiling = clampF(s.PO2Ceiling+pO2Step, pO2Step, pO2CeilingMax)
	case "down", "j":
		s.PO2Ceiling = clampF(s.PO2Ceiling-pO2Step, pO2Step, pO2CeilingMax)
	case "]":
		s.TargetEAD = clampF(s.TargetEAD+eadStep, 0, depthStepMax)
	case "[":
		s.TargetEAD = clampF(s.TargetEAD-eadStep, 0, depthStepMax)
	case "t":
		s.Trimix = !s.Trimix
	case ".":
		s.Duration = clamp(s.Duration+5, 5, 300)
	case ",":
		s.Duration = clamp(s.Duration-5, 5, 300)
	default:
		return
	}
	s.recompute()
}

func (s *PlannerState) recompute() {
	s.Mix, s.Err = gasmix.Solve(gasmix.Request{
		Depth:      s.Depth,
		PO2Ceiling: s.PO2Ceiling,
		Trimix:     s.Trimix,
		TargetEAD:  s.TargetEAD,
	})
}

// ────────────────────────────────────────────────────────────
// Rendering
// ────────────────────────────────────────────────────────────

// renderPlanner renders the best-mix planner screen.
func renderPlanner(m *Model, width, height int) string {
	s := &m.planner
	title := panelTitleStyle.Render("Best Mix Planner")

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	// ── Inputs ──

	lines = append(lines, plannerRow("Depth",
		fmt.Sprintf("%.0f m", s.Depth),
		"←/→ ±1m  shift ±5m"))
	lines = append(lines, plannerRow("pO₂ ceiling",
		fmt.Sprintf("%.2f bar", s.PO2Ceiling),
		"↑/↓ ±0.05"))

	trimixVal := "off"
	if s.Trimix {
		trimixVal = "on"
	}
	lines = append(lines, plannerRow("Trimix", trimixVal, "t toggle"))
	lines = append(lines, plannerRow("Duration",
		fmt.Sprintf("%d min", s.Duration),
		",/. ±5min"))

	if s.Trimix {
		lines = append(lines, plannerRow("Target EAD",
			fmt.Sprintf("%.0f m", s.TargetEAD),
			"[/] ±1m"))
	}

	lines = append(lines, "")
	lines = append(lines, plannerSectionStyle.Render(strings.Repeat("─", minInt(width, 48))))
	lines = append(lines, "")

	// ── Result ──

	if s.Err != nil {
		lines = append(lines, plannerErrStyle.Render(fmt.Sprintf("✗ %v", s.Err)))
		return strings.Join(lines, "\n")
	}

	mix := s.Mix
	lines = append(lines, plannerMixStyle.Render("  "+mix.Label()))
	lines = append(lines, "")

	// Fraction bar: O2 | He | N2 across a fixed width.
	barWidth := width - 6
	if barWidth > 48 {
		barWidth = 48
	}
	if barWidth > 4 {
		lines = append(lines, renderGasBar(mix, barWidth))
		lines = append(lines, gasBarLegend(mix))
		lines = append(lines, "")
	}

	// ── Dive metrics at this mix ──

	mod := gasmix.MaxOperatingDepth(mix, s.PO2Ceiling)
	modStr := "unlimited"
	if !math.IsInf(mod, 1) {
		modStr = fmt.Sprintf("%.1f m", mod)
	}
	lines = append(lines, plannerRow("MOD", modStr, ""))
	lines = append(lines, plannerRow("EAD",
		fmt.Sprintf("%.1f m", gasmix.EquivalentAirDepth(mix, s.Depth)), ""))
	lines = append(lines, plannerRow("END",
		fmt.Sprintf("%.1f m", gasmix.EquivalentNarcoticDepth(mix, s.Depth)), ""))
	lines = append(lines, plannerRow("Ambient",
		fmt.Sprintf("%.2f ata", gasmix.AmbientPressure(s.Depth)), ""))

	if mod < s.Depth {
		lines = append(lines, "")
		lines = append(lines, plannerErrStyle.Render(
			"⚠ planned depth exceeds MOD for this mix"))
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderPlannerPanel wraps the planner in a styled panel.
func renderPlannerPanel(m *Model, width, height int) string {
	content := renderPlanner(m, width-4, height-2)
	return panelActiveStyle.Width(width).Height(height).Render(content)
}

// ── helpers ──

func plannerRow(label, value, hint string) string {
	row := fmt.Sprintf("%s  %s",
		plannerLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		plannerValueStyle.Render(fmt.Sprintf("%-12s", value)))
	if hint != "" {
		row += plannerStepHintStyle.Render(hint)
	}
	return row
}

// renderGasBar draws the O2/He/N2 composition as a proportional bar.
func renderGasBar(mix gasmix.Mix, barWidth int) string {
	o2W := int(math.Round(mix.FO2 * float64(barWidth)))
	heW := int(math.Round(mix.FHe * float64(barWidth)))
	o2W = clamp(o2W, 0, barWidth)
	heW = clamp(heW, 0, barWidth-o2W)
	n2W := barWidth - o2W - heW

	return gasO2Style.Render(strings.Repeat("█", o2W)) +
		gasHeStyle.Render(strings.Repeat("█", heW)) +
		gasN2Style.Render(strings.Repeat("░", n2W))
}

func gasBarLegend(mix gasmix.Mix) string {
	legend := fmt.Sprintf("O₂ %.1f%%", mix.FO2*100)
	if mix.FHe > 0.001 {
		legend += fmt.Sprintf("  He %.1f%%", mix.FHe*100)
	}
	legend += fmt.Sprintf("  N₂ %.1f%%", mix.FN2*100)
	return siteRegionStyle.Render(legend)
}
