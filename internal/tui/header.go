package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// viewNames maps each screen to its header label.
var viewNames = map[View]string{
	ViewSites:    "Sites",
	ViewPlanner:  "Planner",
	ViewLogbook:  "Logbook",
	ViewFeedback: "Feedback",
}

// renderHeader produces the top bar:
//
//	FATHOM  |  Planner  |  marin  |  admin
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("FATHOM")
	sep := headerSepStyle.Render(" │ ")

	var parts []string
	parts = append(parts, brand)
	parts = append(parts, sep)
	parts = append(parts, headerMetaStyle.Render(viewNames[m.activeView]))

	if m.cfg.Diver != "" {
		parts = append(parts, sep)
		parts = append(parts, headerMetaStyle.Render(m.cfg.Diver))
	}

	if m.canModerate() {
		parts = append(parts, sep)
		parts = append(parts, headerAdminStyle.Render("admin"))
	}

	if m.stats != nil {
		parts = append(parts, sep)
		parts = append(parts, headerMetaStyle.Render(
			pluralize(m.stats.TotalDives, "dive")))
	}

	content := strings.Join(parts, "")

	return headerBarStyle.Width(m.width).Render(content)
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	if m.statusMsg != "" {
		left = statusStyle.Render(m.statusMsg)
	}

	switch {
	case m.searchMode:
		right = renderHints([]hint{
			{"enter", "search"},
			{"esc", "cancel"},
		})

	case m.activeView == ViewSites:
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"enter", "plan"},
			{"/", "search"},
			{"f/g/m", "filter"},
			{"c", "clear"},
			{"tab", "view"},
			{"q", "quit"},
		})

	case m.activeView == ViewPlanner:
		right = renderHints([]hint{
			{"←→", "depth"},
			{"↑↓", "pO₂"},
			{"t", "trimix"},
			{"[]", "ead"},
			{"enter", "log"},
			{"tab", "view"},
			{"q", "quit"},
		})

	case m.activeView == ViewLogbook:
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"r", "reload"},
			{"tab", "view"},
			{"q", "quit"},
		})

	case m.activeView == ViewFeedback:
		hints := []hint{
			{"↑↓", "navigate"},
		}
		if m.canModerate() {
			hints = append(hints,
				hint{"a", "resolve"},
				hint{"x", "dismiss"})
		}
		hints = append(hints, hint{"tab", "view"}, hint{"q", "quit"})
		right = renderHints(hints)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
