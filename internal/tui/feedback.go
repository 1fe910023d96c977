package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/pkg/timeutil"
)

// feedbackColumns sizes the review table for the given width.
// The ID column stays first so key handlers can read it back
// from SelectedRow.
func feedbackColumns(width int) []table.Column {
	qWidth := width - 52
	if qWidth < 16 {
		qWidth = 16
	}
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "User", Width: 10},
		{Title: "Question", Width: qWidth},
		{Title: "Vote", Width: 5},
		{Title: "Status", Width: 10},
		{Title: "When", Width: 12},
	}
}

func feedbackTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(colorCyan).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorDivider).
		BorderBottom(true)
	s.Selected = s.Selected.
		Background(colorHighlight).
		Foreground(colorText).
		Bold(true)
	return s
}

// feedbackRows converts feedback records into table rows.
func feedbackRows(records []*database.Feedback) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, fb := range records {
		vote := "✗"
		if fb.Helpful {
			vote = "✓"
		}
		rows = append(rows, table.Row{
			shortID(fb.FeedbackID, 10),
			truncate(fb.User, 10),
			strings.ReplaceAll(fb.Question, "\n", " "),
			vote,
			fb.Status,
			timeutil.RelativeTime(fb.CreatedAt),
		})
	}
	return rows
}

// renderFeedback renders the chatbot feedback review screen.
func renderFeedback(m *Model, width, height int) string {
	title := panelTitleStyle.Render("Feedback Review")
	if m.canModerate() {
		title += headerAdminStyle.Render("  admin")
	} else {
		title += siteRegionStyle.Render("  read-only")
	}

	if len(m.feedback) == 0 {
		return title + "\n\n" +
			emptyStateStyle.Render("No feedback yet.")
	}

	var pending int
	for _, fb := range m.feedback {
		if fb.Status == "pending" {
			pending++
		}
	}
	title += feedbackPendingStyle.Render(
		"  " + pluralize(pending, "pending"))

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")
	lines = append(lines, m.fbTable.View())

	// Detail strip for the highlighted record.
	if fb := m.highlightedFeedback(); fb != nil {
		lines = append(lines, "")
		lines = append(lines, plannerSectionStyle.Render(strings.Repeat("─", minInt(width, 60))))
		lines = append(lines, statsLabelStyle.Render("Q ")+
			statsValueStyle.Render(truncate(fb.Question, (width-4)*2)))
		lines = append(lines, statsLabelStyle.Render("A ")+
			siteRegionStyle.Render(truncate(fb.Answer, (width-4)*2)))
		if fb.Comment != nil && *fb.Comment != "" {
			lines = append(lines, statsLabelStyle.Render("C ")+
				feedbackUnhelpfulStyle.Render(truncate(*fb.Comment, width-4)))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// highlightedFeedback maps the table cursor back to the full record.
func (m *Model) highlightedFeedback() *database.Feedback {
	id := m.selectedFeedbackID()
	if id == "" {
		return nil
	}
	for _, fb := range m.feedback {
		if shortID(fb.FeedbackID, 10) == id {
			return fb
		}
	}
	return nil
}

// renderFeedbackPanel wraps the review screen in a styled panel.
func renderFeedbackPanel(m *Model, width, height int) string {
	content := renderFeedback(m, width-4, height-2)
	return panelActiveStyle.Width(width).Height(height).Render(content)
}
