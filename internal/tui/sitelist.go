package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderSiteList renders the dive-site catalog browser.
func renderSiteList(m *Model, width, height int) string {
	if len(m.sites) == 0 {
		empty := emptyStateStyle.Render(
			"No dive sites found.\n\n" +
				"Seed the catalog with `fathom sites import`\n" +
				"or clear the active search with esc.")
		return lipgloss.Place(
			width,
			height,
			lipgloss.Center,
			lipgloss.Center,
			empty,
		)
	}

	title := panelTitleStyle.Render("Dive Sites")
	count := siteRegionStyle.Render(fmt.Sprintf("  %d shown", len(m.sites)))
	heading := title + count
	if m.searchMode {
		heading += "  " + m.searchInput.View()
	} else if q := m.searchInput.Value(); q != "" {
		heading += siteRegionStyle.Render(fmt.Sprintf("  filter: %q", q))
	}
	if m.kindFilter != "" {
		heading += siteRegionStyle.Render("  kind:" + m.kindFilter)
	}
	if m.levelFilter != "" {
		heading += siteRegionStyle.Render("  level:" + m.levelFilter)
	}
	if m.minRating > 0 {
		heading += siteRegionStyle.Render(fmt.Sprintf("  ≥%.1f★", m.minRating))
	}

	var lines []string
	lines = append(lines, heading)
	lines = append(lines, "")

	// Visible range for scrolling
	maxVisible := height - 4
	if maxVisible < 5 {
		maxVisible = 5
	}

	startIdx := 0
	if m.selectedSite >= maxVisible {
		startIdx = m.selectedSite - maxVisible + 1
	}
	endIdx := startIdx + maxVisible
	if endIdx > len(m.sites) {
		endIdx = len(m.sites)
	}

	for i := startIdx; i < endIdx; i++ {
		s := m.sites[i]

		level := levelTag(s.Level)
		name := truncate(s.Name, 28)
		region := siteRegionStyle.Render(truncate(
			fmt.Sprintf("%s, %s", s.Region, s.Country), 30))
		depth := diveDepthStyle.Render(fmt.Sprintf("%4.0fm", s.MaxDepth))
		stars := siteRatingStyle.Render(ratingStars(s.Rating))

		content := fmt.Sprintf("%s  %-28s %s  %s  %s", level, name, depth, stars, region)

		if i == m.selectedSite {
			lines = append(lines, siteSelectedStyle.Width(width-4).Render(content))
		} else {
			lines = append(lines, siteItemStyle.Width(width-4).Render(content))
		}
	}

	// Scroll indicator
	if len(m.sites) > maxVisible {
		indicator := siteRegionStyle.Render(
			fmt.Sprintf(" %d/%d", m.selectedSite+1, len(m.sites)))
		lines = append(lines, indicator)
	}

	return strings.Join(lines, "\n")
}

// renderSitePanel wraps the site browser in a styled panel.
func renderSitePanel(m *Model, width, height int) string {
	content := renderSiteList(m, width-4, height-2)
	return panelActiveStyle.Width(width).Height(height).Render(content)
}

// levelTag returns a short colored label for a site difficulty level.
func levelTag(level string) string {
	switch level {
	case "beginner":
		return siteLevelBeginner.Render("begin")
	case "intermediate":
		return siteLevelInter.Render("inter")
	case "advanced":
		return siteLevelAdvanced.Render("advan")
	case "technical":
		return siteLevelTech.Render("tech ")
	default:
		return siteRegionStyle.Render("     ")
	}
}
