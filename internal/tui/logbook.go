package tui

import (
	"fmt"
	"strings"

	"github.com/fathomdive/fathom/pkg/timeutil"
)

// renderLogbook renders the dive log with aggregate statistics.
func renderLogbook(m *Model, width, height int) string {
	title := panelTitleStyle.Render("Logbook")
	title += siteRegionStyle.Render("  " + m.cfg.Diver)

	if len(m.dives) == 0 {
		return title + "\n\n" +
			emptyStateStyle.Render("No dives logged yet.\n\nRecord one with `fathom log`.")
	}

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	// ── Statistics strip ──

	if m.stats != nil {
		st := m.stats
		lines = append(lines, strings.Join([]string{
			statsRow("Dives", fmt.Sprintf("%d", st.TotalDives)),
			statsRow("Bottom", fmt.Sprintf("%d min", st.TotalBottomMin)),
			statsRow("Deepest", fmt.Sprintf("%.0f m", st.DeepestMeters)),
			statsRow("Sites", fmt.Sprintf("%d", st.DistinctSites)),
			statsRow("Trimix", fmt.Sprintf("%d", st.TrimixDives)),
		}, "   "))
		lines = append(lines, "")
	}

	// ── Dive rows, most recent first ──

	contentHeight := height - len(lines) - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	startIdx := 0
	if m.selectedDive >= contentHeight {
		startIdx = m.selectedDive - contentHeight + 1
	}
	endIdx := startIdx + contentHeight
	if endIdx > len(m.dives) {
		endIdx = len(m.dives)
	}

	for i := startIdx; i < endIdx; i++ {
		d := m.dives[i]

		ts := diveTimestampStyle.Render(timeutil.FormatDiveDate(d.DiveTime))
		depth := diveDepthStyle.Render(fmt.Sprintf("%5.1fm", d.MaxDepth))
		dur := siteRegionStyle.Render(fmt.Sprintf("%3d'", d.DurationMin))
		mix := diveMixStyle.Render(fmt.Sprintf("%-9s", d.MixLabel))
		stars := siteRatingStyle.Render(ratingStars(float64(d.Rating)))

		sync := " "
		if d.Synced {
			sync = feedbackResolvedStyle.Render("↑")
		}

		content := fmt.Sprintf("%s  %s %s  %s %s %s", ts, depth, dur, mix, stars, sync)
		if d.Notes != nil && *d.Notes != "" {
			content += "  " + siteRegionStyle.Render(truncate(*d.Notes, width-58))
		}

		if i == m.selectedDive {
			lines = append(lines, diveSelectedStyle.Width(width-4).Render(content))
		} else {
			lines = append(lines, diveItemStyle.Render(content))
		}
	}

	if len(m.dives) > contentHeight {
		lines = append(lines, siteRegionStyle.Render(
			fmt.Sprintf(" %d/%d", m.selectedDive+1, len(m.dives))))
	}

	return strings.Join(lines, "\n")
}

// renderLogbookPanel wraps the logbook in a styled panel.
func renderLogbookPanel(m *Model, width, height int) string {
	content := renderLogbook(m, width-4, height-2)
	return panelActiveStyle.Width(width).Height(height).Render(content)
}

func statsRow(label, value string) string {
	return statsLabelStyle.Render(label) + " " + statsValueStyle.Render(value)
}
